/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"bytes"
	"fmt"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

// pkcs7Pad appends PKCS#7 padding so len(result) is a multiple of
// blockSize. Block-aligned input gains a full padding block.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padText := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(data, padText...)
}

// pkcs7Unpad strips PKCS#7 padding, validating every pad byte.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	length := len(data)
	if length == 0 || length%blockSize != 0 {
		return nil, fmt.Errorf("%w: padded data length %d", crypto.ErrInvalidPadding, length)
	}

	padding := int(data[length-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("%w: pad byte %d out of range", crypto.ErrInvalidPadding, padding)
	}

	for i := length - padding; i < length; i++ {
		if data[i] != byte(padding) {
			return nil, fmt.Errorf("%w: inconsistent pad bytes", crypto.ErrInvalidPadding)
		}
	}

	return data[:length-padding], nil
}
