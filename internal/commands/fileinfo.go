/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/filevault/go-filecrypt"
)

// NewMD5Command creates the md5 subcommand.
func NewMD5Command() *cobra.Command {
	return &cobra.Command{
		Use:   "md5 files...",
		Short: "Print the MD5 digest of files (integrity checksum, streamed)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				sum, err := filecrypt.ComputeFileMD5(path)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s\n", sum, path)
			}
			return nil
		},
	}
}

// NewSizeCommand creates the size subcommand.
func NewSizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "size files...",
		Short: "Print file sizes in bytes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				size, err := filecrypt.FileSize(path)
				if err != nil {
					return err
				}
				fmt.Printf("%d  %s (%s)\n", size, path, humanize.IBytes(uint64(size))) // #nosec G115 -- file sizes are non-negative
			}
			return nil
		},
	}
}

// NewInfoCommand creates the info subcommand for chunked containers.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info files...",
		Short: "Inspect chunked containers without a key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				info, err := filecrypt.ReadContainerInfo(path)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s v%d, %d chunks of %d KiB, %d KiB total\n",
					path, info.Algorithm, info.Version, info.TotalChunks, info.ChunkSize, info.EncryptedSize)
			}
			return nil
		},
	}
}
