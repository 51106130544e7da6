/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package filecrypt provides local-file encryption and decryption with
// AES-256-CBC (PKCS#7) or ChaCha20-Poly1305, in two on-disk shapes.
//
// The whole-file path reads the entire input into memory, seals it once,
// and writes a single blob with no framing. It suits small files; the
// output carries no algorithm tag, so the caller must remember which
// algorithm was used.
//
// The chunked path splits the plaintext into fixed-size chunks and writes
// a self-describing container: a 24-byte header (magic, version,
// algorithm, chunk size) followed by length-prefixed frames, one per
// chunk. Each frame seals its chunk independently under a fresh random
// IV/nonce, so files of tens of gigabytes are processed with one chunk of
// memory.
//
// # Basic Usage
//
// Encrypt a file with a random key, in either format:
//
//	import (
//	    "context"
//	    "crypto/rand"
//	    "github.com/filevault/go-filecrypt"
//	)
//
//	// Generate a 32-byte encryption key
//	key := make([]byte, 32)
//	rand.Read(key)
//	defer filecrypt.ZeroKey(key) // Always zero sensitive data
//
//	ctx := context.Background()
//
//	// Whole-file path, for small inputs
//	res, err := filecrypt.EncryptFile(ctx, "aes", key, "report.pdf", "report.pdf.enc")
//
//	// Chunked path, for large inputs (4 MiB chunks)
//	chunkRes, err := filecrypt.ChunkEncryptFile(ctx, "chacha20poly1305", key, "video.mp4", "video.mp4.enc", 4)
//
// # Security Considerations
//
//   - Always use crypto/rand for key generation
//   - Always call filecrypt.ZeroKey(key) to clear keys from memory
//   - Handle authentication failures as potential tampering
//   - The chunked container authenticates each frame individually
//     (ChaCha20-Poly1305) but carries no whole-file MAC; reordering of
//     intact frames is not detected
package filecrypt

import (
	"context"
	"fmt"

	"github.com/filevault/go-filecrypt/internal/core"
	"github.com/filevault/go-filecrypt/secure"
)

// Algorithm identifiers accepted by every operation.
const (
	AlgorithmAES              = "aes"
	AlgorithmChaCha20Poly1305 = "chacha20poly1305"
)

// Option defines functional options for encryption/decryption (re-exported from internal/core).
type Option = core.Option

// WithChunkSize sets the chunk size in bytes for streaming operations (re-exported from internal/core).
var WithChunkSize = core.WithChunkSize

// WithProgress sets a progress callback (re-exported from internal/core).
var WithProgress = core.WithProgress

// WithLogger sets the logger for non-fatal events (re-exported from internal/core).
var WithLogger = core.WithLogger

// Result records. Size fields are in KiB (bytes / 1024, truncated), a
// compatibility quirk of the historical consumers of this format.
type (
	EncryptResult      = core.EncryptResult
	DecryptResult      = core.DecryptResult
	ChunkEncryptResult = core.ChunkEncryptResult
	ChunkDecryptResult = core.ChunkDecryptResult
	ContainerInfo      = core.ContainerInfo
)

// ZeroKey securely zeroes a key slice. Always use defer ZeroKey(key) after key generation.
var ZeroKey = secure.Zero

// EncryptFile encrypts a file in one shot (whole-file format, no container
// header). Intended for small inputs; the entire file is read into memory.
func EncryptFile(ctx context.Context, algorithm string, key []byte, srcPath, dstPath string, opts ...Option) (*EncryptResult, error) {
	algo, err := core.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	enc, err := core.NewEncryptor(algo, key, opts...)
	if err != nil {
		return nil, err
	}
	defer enc.Destroy()
	return enc.SealWholeFile(ctx, srcPath, dstPath)
}

// DecryptFile decrypts a whole-file-format file. The algorithm must match
// the one used to encrypt; the format carries no tag, so a mismatch
// surfaces as an authentication or padding failure.
func DecryptFile(ctx context.Context, algorithm string, key []byte, srcPath, dstPath string, opts ...Option) (*DecryptResult, error) {
	algo, err := core.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	dec, err := core.NewDecryptor(algo, key, opts...)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()
	return dec.OpenWholeFile(ctx, srcPath, dstPath)
}

// ChunkEncryptFile encrypts a file into the chunked container format,
// sealing chunkSizeMiB-mebibyte chunks one at a time.
func ChunkEncryptFile(ctx context.Context, algorithm string, key []byte, srcPath, dstPath string, chunkSizeMiB int, opts ...Option) (*ChunkEncryptResult, error) {
	algo, err := core.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	if chunkSizeMiB < 1 {
		return nil, fmt.Errorf("invalid chunk size: must be at least 1 MiB, got %d", chunkSizeMiB)
	}
	sizeOpt, err := core.WithChunkSize(chunkSizeMiB * 1024 * 1024)
	if err != nil {
		return nil, err
	}
	enc, err := core.NewEncryptor(algo, key, append(opts, sizeOpt)...)
	if err != nil {
		return nil, err
	}
	defer enc.Destroy()
	return enc.EncryptFile(ctx, srcPath, dstPath)
}

// ChunkDecryptFile decrypts a chunked container. The requested algorithm
// is cross-checked against the container header.
func ChunkDecryptFile(ctx context.Context, algorithm string, key []byte, srcPath, dstPath string, opts ...Option) (*ChunkDecryptResult, error) {
	algo, err := core.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	dec, err := core.NewDecryptor(algo, key, opts...)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()
	return dec.DecryptFile(ctx, srcPath, dstPath)
}

// DecryptChunk decrypts a single frame of a chunked container, identified
// by its zero-based index. Earlier frames are skipped without decryption,
// which makes sequential media playback of encrypted files cheap.
func DecryptChunk(ctx context.Context, algorithm string, key []byte, srcPath string, index uint32, opts ...Option) ([]byte, error) {
	algo, err := core.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	dec, err := core.NewDecryptor(algo, key, opts...)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()
	return dec.DecryptChunk(ctx, srcPath, index)
}

// ReadContainerInfo inspects a chunked container without a key: header
// fields plus a frame count obtained by walking the length prefixes.
func ReadContainerInfo(path string) (*ContainerInfo, error) {
	return core.ReadContainerInfo(path)
}

// FileSize returns a file's size in bytes.
func FileSize(path string) (int64, error) {
	return core.FileSize(path)
}

// ComputeFileMD5 returns the lowercase hex MD5 digest of a file, computed
// in fixed-size streaming reads. MD5 serves as a non-cryptographic
// integrity checksum here, not as an authentication primitive.
func ComputeFileMD5(path string) (string, error) {
	return core.ComputeFileMD5(path)
}

// VerifyFileMD5 checks a file against a hex-encoded MD5 digest.
func VerifyFileMD5(path, hexSum string) (bool, error) {
	return core.VerifyFileMD5(path, hexSum)
}
