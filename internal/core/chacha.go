/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// chacha.go: ChaCha20-Poly1305 sealer
package core

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

// chachaSealer seals buffers as nonce(12) || ciphertext || tag(16). No
// associated data is bound.
type chachaSealer struct {
	aead cipher.AEAD
}

func newChaChaSealer(key []byte) (*chachaSealer, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrCrypto, err)
	}
	return &chachaSealer{aead: aead}, nil
}

func (s *chachaSealer) Seal(plaintext []byte) ([]byte, error) {
	sealed := make([]byte, chacha20poly1305.NonceSize, chacha20poly1305.NonceSize+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(sealed[:chacha20poly1305.NonceSize]); err != nil {
		return nil, crypto.WrapError("generate nonce", err)
	}

	return s.aead.Seal(sealed, sealed[:chacha20poly1305.NonceSize], plaintext, nil), nil
}

func (s *chachaSealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSize+s.aead.Overhead() {
		return nil, fmt.Errorf("%w: sealed data too short (%d bytes)", crypto.ErrAuthFailure, len(sealed))
	}

	nonce := sealed[:chacha20poly1305.NonceSize]
	plaintext, err := s.aead.Open(nil, nonce, sealed[chacha20poly1305.NonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrAuthFailure, err)
	}

	return plaintext, nil
}

// Overhead is the nonce plus the Poly1305 tag.
func (s *chachaSealer) Overhead() int {
	return chacha20poly1305.NonceSize + s.aead.Overhead()
}
