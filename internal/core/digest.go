/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"crypto/md5" // #nosec G501 -- MD5 used as a non-cryptographic integrity checksum only
	"encoding/hex"
	"fmt"
	"io"
	"os"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"

	"github.com/filevault/go-filecrypt/secure"
)

// digestBufferSize is the read size for streaming digests; the whole file
// is never resident.
const digestBufferSize = 64 * 1024

// FileSize returns a file's size in bytes as reported by the filesystem.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, crypto.WrapError("stat file", err)
	}
	return info.Size(), nil
}

// ComputeFileMD5 streams path in fixed-size reads and returns the lowercase
// hex MD5 digest of its contents.
func ComputeFileMD5(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- file path provided by caller, library is designed for file operations
	if err != nil {
		return "", crypto.WrapError("open file", err)
	}
	defer f.Close()

	h := md5.New() // #nosec G401 -- integrity checksum, not authentication
	if _, err := io.CopyBuffer(h, f, make([]byte, digestBufferSize)); err != nil {
		return "", crypto.WrapError("read file", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFileMD5 checks the file against a hex-encoded MD5 digest using a
// constant-time comparison.
func VerifyFileMD5(path, hexSum string) (bool, error) {
	want, err := hex.DecodeString(hexSum)
	if err != nil {
		return false, fmt.Errorf("invalid hex digest: %w", err)
	}

	got, err := ComputeFileMD5(path)
	if err != nil {
		return false, err
	}

	raw, err := hex.DecodeString(got)
	if err != nil {
		return false, err
	}

	return secure.SecureCompare(raw, want), nil
}
