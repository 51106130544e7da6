/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Command filecrypt encrypts, decrypts, and inspects local files.
package main

import (
	"fmt"
	"os"

	"github.com/filevault/go-filecrypt/internal/commands"
	"github.com/filevault/go-filecrypt/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg := &config.Config{}

	root := commands.NewRootCommand(cfg, version)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
