/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package config holds the runtime configuration of the filecrypt CLI.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

// Config contains the options shared by all filecrypt subcommands.
type Config struct {
	// Algorithm is the public identifier, "aes" or "chacha20poly1305".
	Algorithm string

	// Key is the 32-byte key, hex-encoded, given inline or via a file.
	Key struct {
		String string
		File   string
	}

	// Chunked selects the streaming container format.
	Chunked bool

	// ChunkSize is the chunk size for the chunked format, as a
	// human-readable size such as "4MiB".
	ChunkSize string

	// Parallel bounds how many files are processed concurrently.
	Parallel int

	// Quiet suppresses non-error output.
	Quiet bool

	// Files are the input paths, set from positional arguments.
	Files []string
}

// KeyBytes decodes the configured key. Exactly one of the inline value and
// the key file must be set.
func (c *Config) KeyBytes() ([]byte, error) {
	encoded := c.Key.String

	switch {
	case encoded != "" && c.Key.File != "":
		return nil, errors.New("only one of --key and --key-file may be set")
	case encoded == "" && c.Key.File == "":
		return nil, errors.New("one of --key and --key-file is required")
	case c.Key.File != "":
		raw, err := os.ReadFile(c.Key.File)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}
		encoded = string(raw)
	}

	key, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decoding key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes (64 hex characters), got %d bytes", len(key))
	}
	return key, nil
}

// ChunkSizeMiB parses the configured chunk size into whole mebibytes.
func (c *Config) ChunkSizeMiB() (int, error) {
	size, err := humanize.ParseBytes(c.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("parsing chunk size %q: %w", c.ChunkSize, err)
	}

	const mib = 1024 * 1024
	if size < mib || size%mib != 0 {
		return 0, fmt.Errorf("chunk size must be a whole number of MiB, got %s", humanize.IBytes(size))
	}
	return int(size / mib), nil
}
