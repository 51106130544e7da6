/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package commands wires the filecrypt CLI.
package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/filevault/go-filecrypt/internal/config"
)

// NewRootCommand creates the root command with the flags shared by all
// subcommands.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "filecrypt [flags] command [flags] files...",
		Short:   "File encryption utility",
		Long:    "Encrypts and decrypts local files with AES-256-CBC or ChaCha20-Poly1305,\nwhole-file for small inputs or chunked streaming for large ones.",
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfg.Algorithm, "algorithm", "a", "aes", "Algorithm: aes or chacha20poly1305")
	root.PersistentFlags().StringVarP(&cfg.Key.String, "key", "k", "", "Encryption key (32 bytes, hex-encoded)")
	root.PersistentFlags().StringVarP(&cfg.Key.File, "key-file", "f", "", "Path to a file holding the hex-encoded key")
	root.PersistentFlags().IntVarP(&cfg.Parallel, "parallel", "j", runtime.NumCPU(), "Number of files processed concurrently")
	root.PersistentFlags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "Suppress non-error output")

	root.AddCommand(
		NewEncryptCommand(cfg),
		NewDecryptCommand(cfg),
		NewMD5Command(),
		NewSizeCommand(),
		NewInfoCommand(),
	)

	return root
}
