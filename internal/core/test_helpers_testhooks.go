//go:build testhooks
// +build testhooks

/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

// SetEncryptorAllocHook installs a callback invoked with the size of every
// chunk buffer the Encryptor allocates. Test-only helper compiled with the
// 'testhooks' build tag; used to establish the one-chunk memory bound.
func SetEncryptorAllocHook(e *Encryptor, hook func(size int)) {
	if e == nil {
		return
	}
	e.allocHook = hook
}
