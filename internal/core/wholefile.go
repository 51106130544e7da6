/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// wholefile.go: Single-shot encryption path for small files.
//
// The whole-file format is the legacy simple layout: the output is one
// sealed blob with no container header and no length prefix. The format
// carries no algorithm tag, so the caller must remember which algorithm
// was used; a mismatched decrypt fails with an authentication or padding
// error rather than a dedicated mismatch error.
package core

import (
	"context"
	"os"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

// SealWholeFile reads the entire source file, seals it in one call, and
// writes the blob to dstPath.
func (e *Encryptor) SealWholeFile(ctx context.Context, srcPath, dstPath string) (*EncryptResult, error) {
	if ctx.Err() != nil {
		return nil, crypto.ErrContextCanceled
	}

	data, err := os.ReadFile(srcPath) // #nosec G304 -- file path provided by caller, library purpose is file encryption
	if err != nil {
		return nil, crypto.WrapError("read source file", err)
	}

	sealed, err := e.sealer.Seal(data)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(dstPath, sealed, 0o600); err != nil { // #nosec G304
		removePartialOutput(e.logger, dstPath)
		return nil, crypto.WrapError("write destination file", err)
	}

	return &EncryptResult{
		FileSize: toKiB(int64(len(data))),
	}, nil
}

// OpenWholeFile reads the entire ciphertext file, opens it in one call,
// and writes the plaintext to dstPath.
func (d *Decryptor) OpenWholeFile(ctx context.Context, srcPath, dstPath string) (*DecryptResult, error) {
	if ctx.Err() != nil {
		return nil, crypto.ErrContextCanceled
	}

	data, err := os.ReadFile(srcPath) // #nosec G304 -- file path provided by caller, library purpose is file decryption
	if err != nil {
		return nil, crypto.WrapError("read encrypted file", err)
	}

	plaintext, err := d.sealer.Open(data)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(dstPath, plaintext, 0o600); err != nil { // #nosec G304
		removePartialOutput(d.logger, dstPath)
		return nil, crypto.WrapError("write destination file", err)
	}

	return &DecryptResult{
		FileSize:      toKiB(int64(len(plaintext))),
		EncryptedSize: toKiB(int64(len(data))),
	}, nil
}
