/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/filevault/go-filecrypt"
	"github.com/filevault/go-filecrypt/internal/config"
)

// NewEncryptCommand creates the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	var suffix string

	cmd := &cobra.Command{
		Use:     "encrypt [flags] files...",
		Aliases: []string{"enc"},
		Short:   "Encrypt files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Files = args

			key, err := cfg.KeyBytes()
			if err != nil {
				return err
			}
			defer filecrypt.ZeroKey(key)

			return forEachFile(cfg, func(ctx context.Context, path string) error {
				outPath := path + suffix

				if cfg.Chunked {
					chunkMiB, err := cfg.ChunkSizeMiB()
					if err != nil {
						return err
					}
					res, err := filecrypt.ChunkEncryptFile(ctx, cfg.Algorithm, key, path, outPath, chunkMiB)
					if err != nil {
						return err
					}
					report(cfg, "Encrypted %q -> %q (%d chunks, %d KiB)\n", path, outPath, res.TotalChunks, res.FileSize)
					return nil
				}

				res, err := filecrypt.EncryptFile(ctx, cfg.Algorithm, key, path, outPath)
				if err != nil {
					return err
				}
				report(cfg, "Encrypted %q -> %q (%d KiB)\n", path, outPath, res.FileSize)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&cfg.Chunked, "chunked", "c", false, "Use the chunked streaming container format")
	cmd.Flags().StringVar(&cfg.ChunkSize, "chunk-size", "1MiB", "Chunk size for the chunked format (whole MiB)")
	cmd.Flags().StringVar(&suffix, "suffix", ".enc", "Suffix to append to encrypted files")

	return cmd
}

// forEachFile processes the configured files concurrently, bounded by the
// --parallel flag. Paths are assumed distinct; the engine itself stays
// single-threaded per call.
func forEachFile(cfg *config.Config, fn func(ctx context.Context, path string) error) error {
	ctx := context.Background()

	group := errgroup.Group{}
	group.SetLimit(cfg.Parallel)

	for _, file := range cfg.Files {
		group.Go(func() error {
			if err := fn(ctx, file); err != nil {
				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", file, err)
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("processing files: %w", err)
	}
	return nil
}

func report(cfg *config.Config, format string, args ...any) {
	if !cfg.Quiet {
		fmt.Printf(format, args...)
	}
}

// stripSuffix removes suffix from path when present; decrypt output paths
// fall back to a ".dec" suffix otherwise.
func stripSuffix(path, suffix string) string {
	if suffix != "" && strings.HasSuffix(path, suffix) {
		return strings.TrimSuffix(path, suffix)
	}
	return path + ".dec"
}
