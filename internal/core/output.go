/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"os"

	"github.com/sirupsen/logrus"
)

// removePartialOutput deletes a partially written output file after a
// failed operation. Removal is best-effort: a failure is logged, never
// surfaced to the caller.
func removePartialOutput(logger logrus.FieldLogger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).WithField("path", path).Warn("failed to remove partial output file")
	}
}
