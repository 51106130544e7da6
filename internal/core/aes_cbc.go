/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// aes_cbc.go: AES-256-CBC sealer with PKCS#7 padding
package core

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

// aesCBCSealer seals buffers as IV(16) || ciphertext, where the ciphertext
// is the PKCS#7-padded plaintext encrypted under a fresh random IV.
type aesCBCSealer struct {
	block cipher.Block
}

func newAESCBCSealer(key []byte) (*aesCBCSealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrCrypto, err)
	}
	return &aesCBCSealer{block: block}, nil
}

func (s *aesCBCSealer) Seal(plaintext []byte) ([]byte, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, crypto.WrapError("generate IV", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)

	sealed := make([]byte, aes.BlockSize+len(padded))
	copy(sealed, iv)
	cipher.NewCBCEncrypter(s.block, iv).CryptBlocks(sealed[aes.BlockSize:], padded)

	return sealed, nil
}

func (s *aesCBCSealer) Open(sealed []byte) ([]byte, error) {
	// A valid blob is the IV plus at least one full ciphertext block;
	// anything shorter or misaligned is a padding failure.
	if len(sealed) < 2*aes.BlockSize {
		return nil, fmt.Errorf("%w: sealed data too short (%d bytes)", crypto.ErrInvalidPadding, len(sealed))
	}

	iv := sealed[:aes.BlockSize]
	ciphertext := sealed[aes.BlockSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not block aligned", crypto.ErrInvalidPadding, len(ciphertext))
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(s.block, iv).CryptBlocks(padded, ciphertext)

	return pkcs7Unpad(padded, aes.BlockSize)
}

// Overhead is the IV plus a full padding block, the worst case for
// block-aligned input.
func (s *aesCBCSealer) Overhead() int {
	return 2 * aes.BlockSize
}
