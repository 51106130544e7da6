/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// options.go: Configuration options for go-filecrypt
package core

import (
	"errors"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Config collects the adjustable knobs of an Encryptor or Decryptor.
type Config struct {
	ChunkSize int
	Progress  func(float64)
	Logger    logrus.FieldLogger
}

// Option defines functional options for encryption/decryption (chunk size,
// progress, logger).
type Option func(*Config)

// WithChunkSize sets the plaintext chunk size for streaming operations.
//
// The upper bound defaults to the format limit (a sealed frame must fit the
// 4-byte length prefix) and can be lowered through the
// FILECRYPT_CHUNKSIZE_LIMIT environment variable, parsed as a human-readable
// size such as "64MiB".
func WithChunkSize(size int) (Option, error) {
	maxChunkSize := int64(MaxChunkSize)
	if envLimit, exists := os.LookupEnv("FILECRYPT_CHUNKSIZE_LIMIT"); exists {
		if limit, err := humanize.ParseBytes(envLimit); err == nil && limit > 0 {
			if limit > uint64(math.MaxInt) {
				return nil, errors.New("FILECRYPT_CHUNKSIZE_LIMIT too large: exceeds int max value")
			}
			maxChunkSize = int64(limit)
		}
	}

	if size < MinChunkSize || int64(size) > maxChunkSize {
		return nil, errors.New("invalid chunk size: must be between 1 byte and the maximum limit")
	}

	return func(cfg *Config) {
		cfg.ChunkSize = size
	}, nil
}

// WithProgress sets a progress callback. Streaming encryption calls it at
// roughly 20% intervals of the size hint and once with 1.0 at the end;
// streaming decryption calls it only once, with 1.0, on completion. The
// whole-file operations do not call it.
//
// The callback receives a fraction between 0.0 and 1.0 inclusive.
func WithProgress(cb func(float64)) Option {
	return func(cfg *Config) {
		cfg.Progress = cb
	}
}

// WithLogger sets the logger used for non-fatal events such as a failed
// removal of a partial output file. Defaults to the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

func newConfig(opts []Option) *Config {
	cfg := &Config{
		ChunkSize: DefaultChunkSize,
		Logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
