/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

// Size fields in result records are reported in kibibytes (bytes / 1024,
// truncated), a compatibility quirk of the historical consumers of these
// records. Sub-kilobyte remainders are lost.

// EncryptResult reports a whole-file encryption.
type EncryptResult struct {
	// FileSize is the plaintext size in KiB.
	FileSize int64
}

// DecryptResult reports a whole-file decryption.
type DecryptResult struct {
	// FileSize is the recovered plaintext size in KiB.
	FileSize int64
	// EncryptedSize is the ciphertext file size in KiB.
	EncryptedSize int64
}

// ChunkEncryptResult reports a streaming encryption.
type ChunkEncryptResult struct {
	// FileSize is the plaintext size in KiB.
	FileSize int64
	// ChunkSize is the configured chunk size in KiB.
	ChunkSize int64
	// TotalChunks is the number of frames written.
	TotalChunks int
}

// ChunkDecryptResult reports a streaming decryption.
type ChunkDecryptResult struct {
	// OriginalSize is the recovered plaintext size in KiB.
	OriginalSize int64
	// TotalBytes is the number of plaintext KiB written.
	TotalBytes int64
	// ChunkSize is the chunk size recorded in the container header, in KiB.
	ChunkSize int64
	// TotalChunks is the number of frames opened.
	TotalChunks int
}

// ContainerInfo describes a chunked container without decrypting it.
type ContainerInfo struct {
	Algorithm   Algorithm
	Version     uint16
	ChunkSize   int64 // KiB
	TotalChunks int
	// EncryptedSize is the container file size in KiB.
	EncryptedSize int64
}

func toKiB(bytes int64) int64 {
	return bytes / 1024
}
