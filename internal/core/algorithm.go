/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// algorithm.go: Algorithm identifiers and the seal/open adapter for go-filecrypt
package core

import (
	"fmt"
	"strings"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

// Algorithm identifies a cipher suite. The numeric value is the wire code
// written into the container header.
type Algorithm uint8

const (
	// AlgorithmAESCBC is AES-256-CBC with PKCS#7 padding (wire code 1).
	AlgorithmAESCBC Algorithm = 1

	// AlgorithmChaCha20Poly1305 is ChaCha20-Poly1305 AEAD (wire code 2).
	AlgorithmChaCha20Poly1305 Algorithm = 2
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmAESCBC:
		return "AES-256-CBC"
	case AlgorithmChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	default:
		return "Unknown"
	}
}

// Name returns the public-surface identifier accepted by ParseAlgorithm.
func (a Algorithm) Name() string {
	switch a {
	case AlgorithmAESCBC:
		return "aes"
	case AlgorithmChaCha20Poly1305:
		return "chacha20poly1305"
	default:
		return "unknown"
	}
}

// IsSupported returns true if the algorithm is implemented.
func (a Algorithm) IsSupported() bool {
	return a == AlgorithmAESCBC || a == AlgorithmChaCha20Poly1305
}

// ParseAlgorithm maps the public identifiers "aes" and "chacha20poly1305"
// (case-insensitive) to their Algorithm values.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "aes":
		return AlgorithmAESCBC, nil
	case "chacha20poly1305":
		return AlgorithmChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("%w: %q", crypto.ErrUnknownAlgorithm, name)
	}
}

// parseWireCode validates an algorithm code read from a container header.
func parseWireCode(code uint16) (Algorithm, error) {
	switch code {
	case uint16(AlgorithmAESCBC):
		return AlgorithmAESCBC, nil
	case uint16(AlgorithmChaCha20Poly1305):
		return AlgorithmChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("%w: wire code %d", crypto.ErrUnknownAlgorithm, code)
	}
}

// sealer is the uniform adapter over the two cipher suites. Seal produces
// a self-describing blob; Open is its inverse. Overhead is the maximum
// number of bytes Seal adds on top of the plaintext.
type sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
	Overhead() int
}

// newSealer builds the sealer for an algorithm from a 32-byte key.
func newSealer(algo Algorithm, key []byte) (sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", crypto.ErrInvalidKeyLength, len(key))
	}

	switch algo {
	case AlgorithmAESCBC:
		return newAESCBCSealer(key)
	case AlgorithmChaCha20Poly1305:
		return newChaChaSealer(key)
	default:
		return nil, fmt.Errorf("%w: %s", crypto.ErrUnknownAlgorithm, algo)
	}
}

// maxSealOverhead is the largest Overhead across all algorithms; the frame
// format reserves this much headroom above the chunk size.
const maxSealOverhead = 32
