/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/filevault/go-filecrypt"
	"github.com/filevault/go-filecrypt/internal/config"
)

// NewDecryptCommand creates the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	var suffix string

	cmd := &cobra.Command{
		Use:     "decrypt [flags] files...",
		Aliases: []string{"dec"},
		Short:   "Decrypt files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Files = args

			key, err := cfg.KeyBytes()
			if err != nil {
				return err
			}
			defer filecrypt.ZeroKey(key)

			return forEachFile(cfg, func(ctx context.Context, path string) error {
				outPath := stripSuffix(path, suffix)

				if cfg.Chunked {
					res, err := filecrypt.ChunkDecryptFile(ctx, cfg.Algorithm, key, path, outPath)
					if err != nil {
						return err
					}
					report(cfg, "Decrypted %q -> %q (%d chunks, %d KiB)\n", path, outPath, res.TotalChunks, res.OriginalSize)
					return nil
				}

				res, err := filecrypt.DecryptFile(ctx, cfg.Algorithm, key, path, outPath)
				if err != nil {
					return err
				}
				report(cfg, "Decrypted %q -> %q (%d KiB)\n", path, outPath, res.FileSize)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&cfg.Chunked, "chunked", "c", false, "Input uses the chunked streaming container format")
	cmd.Flags().StringVar(&suffix, "suffix", ".enc", "Suffix stripped from encrypted files to name the output")

	return cmd
}
