/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

// encryptTestFile writes size random bytes to a file and encrypts it with
// the chunked format, returning plaintext path, container path, and key.
func encryptTestFile(t *testing.T, algo Algorithm, chunkSize, size int) (string, string, []byte) {
	t.Helper()
	tmpDir := t.TempDir()
	key := testKey(t)

	plaintext := make([]byte, size)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("rand.Read failed: %v", err)
	}
	srcPath := filepath.Join(tmpDir, "plain.bin")
	if err := os.WriteFile(srcPath, plaintext, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	sizeOpt, err := WithChunkSize(chunkSize)
	if err != nil {
		t.Fatalf("WithChunkSize failed: %v", err)
	}
	enc, err := NewEncryptor(algo, key, sizeOpt)
	if err != nil {
		t.Fatalf("NewEncryptor failed: %v", err)
	}
	defer enc.Destroy()

	encPath := filepath.Join(tmpDir, "plain.bin.enc")
	if _, err := enc.EncryptFile(context.Background(), srcPath, encPath); err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}
	return srcPath, encPath, key
}

func TestChunkedFrameLayoutChaCha(t *testing.T) {
	// 2.5 MiB with 1 MiB chunks: three frames with payloads of
	// 12+1048576+16, 12+1048576+16, and 12+524288+16 bytes.
	_, encPath, _ := encryptTestFile(t, AlgorithmChaCha20Poly1305, 1048576, 2621440)

	data, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	wantPayloads := []uint32{12 + 1048576 + 16, 12 + 1048576 + 16, 12 + 524288 + 16}
	offset := HeaderSize
	for i, want := range wantPayloads {
		frameLen := binary.LittleEndian.Uint32(data[offset : offset+4])
		if frameLen != want {
			t.Errorf("frame %d payload length = %d, want %d", i, frameLen, want)
		}
		offset += 4 + int(frameLen)
	}
	if offset != len(data) {
		t.Errorf("container has %d trailing bytes after last frame", len(data)-offset)
	}
}

func TestDecryptFileTamperRemovesOutput(t *testing.T) {
	// Flip one byte past the header; decryption fails authentication and
	// the partial output must not remain on disk.
	_, encPath, key := encryptTestFile(t, AlgorithmChaCha20Poly1305, 1048576, 2621440)

	data, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	data[30] ^= 0x01
	if err := os.WriteFile(encPath, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	dec, err := NewDecryptor(AlgorithmChaCha20Poly1305, key)
	if err != nil {
		t.Fatalf("NewDecryptor failed: %v", err)
	}
	defer dec.Destroy()

	dstPath := filepath.Join(filepath.Dir(encPath), "plain.out")
	if _, err := dec.DecryptFile(context.Background(), encPath, dstPath); !errors.Is(err, crypto.ErrAuthFailure) {
		t.Fatalf("tampered DecryptFile error = %v, want ErrAuthFailure", err)
	}
	if _, err := os.Stat(dstPath); !os.IsNotExist(err) {
		t.Errorf("partial output still exists after failed decryption")
	}
}

func TestDecryptAlgorithmMismatch(t *testing.T) {
	_, encPath, key := encryptTestFile(t, AlgorithmChaCha20Poly1305, 65536, 1000)

	dec, err := NewDecryptor(AlgorithmAESCBC, key)
	if err != nil {
		t.Fatalf("NewDecryptor failed: %v", err)
	}
	defer dec.Destroy()

	dstPath := filepath.Join(filepath.Dir(encPath), "plain.out")
	if _, err := dec.DecryptFile(context.Background(), encPath, dstPath); !errors.Is(err, crypto.ErrAlgorithmMismatch) {
		t.Fatalf("cross-algorithm DecryptFile error = %v, want ErrAlgorithmMismatch", err)
	}
	if _, err := os.Stat(dstPath); !os.IsNotExist(err) {
		t.Errorf("output exists after algorithm mismatch")
	}
}

func TestDecryptTruncatedContainer(t *testing.T) {
	_, encPath, key := encryptTestFile(t, AlgorithmChaCha20Poly1305, 65536, 200000)

	data, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	// Cut inside the final frame's payload.
	truncated := data[:len(data)-10]
	if err := os.WriteFile(encPath, truncated, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	dec, err := NewDecryptor(AlgorithmChaCha20Poly1305, key)
	if err != nil {
		t.Fatalf("NewDecryptor failed: %v", err)
	}
	defer dec.Destroy()

	dstPath := filepath.Join(filepath.Dir(encPath), "plain.out")
	if _, err := dec.DecryptFile(context.Background(), encPath, dstPath); !errors.Is(err, crypto.ErrTruncatedFrame) {
		t.Fatalf("truncated DecryptFile error = %v, want ErrTruncatedFrame", err)
	}
}

func TestDecryptHeaderTamper(t *testing.T) {
	_, encPath, key := encryptTestFile(t, AlgorithmAESCBC, 65536, 1000)

	pristine, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(h []byte)
		want   error
	}{
		{"magic", func(h []byte) { h[0] ^= 0xFF }, crypto.ErrNotAContainer},
		{"version", func(h []byte) { binary.LittleEndian.PutUint16(h[8:10], 2) }, crypto.ErrUnsupportedVersion},
		{"algorithm", func(h []byte) { binary.LittleEndian.PutUint16(h[10:12], 200) }, crypto.ErrUnknownAlgorithm},
		{"flags", func(h []byte) { h[15] = 0x80 }, crypto.ErrUnsupportedFlags},
	}

	for _, tc := range cases {
		data := bytes.Clone(pristine)
		tc.mutate(data)

		dec, err := NewDecryptor(AlgorithmAESCBC, key)
		if err != nil {
			t.Fatalf("NewDecryptor failed: %v", err)
		}

		var out bytes.Buffer
		if _, err := dec.DecryptStream(context.Background(), bytes.NewReader(data), &out); !errors.Is(err, tc.want) {
			t.Errorf("%s tamper: error = %v, want %v", tc.name, err, tc.want)
		}
		dec.Destroy()
	}
}

func TestDecryptChunk(t *testing.T) {
	const chunkSize = 65536
	srcPath, encPath, key := encryptTestFile(t, AlgorithmChaCha20Poly1305, chunkSize, 3*chunkSize+1234)

	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	dec, err := NewDecryptor(AlgorithmChaCha20Poly1305, key)
	if err != nil {
		t.Fatalf("NewDecryptor failed: %v", err)
	}
	defer dec.Destroy()

	ctx := context.Background()

	for index := uint32(0); index < 4; index++ {
		chunk, err := dec.DecryptChunk(ctx, encPath, index)
		if err != nil {
			t.Fatalf("DecryptChunk(%d) failed: %v", index, err)
		}

		start := int(index) * chunkSize
		end := start + chunkSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		if !bytes.Equal(chunk, plaintext[start:end]) {
			t.Errorf("DecryptChunk(%d) content mismatch", index)
		}
	}

	if _, err := dec.DecryptChunk(ctx, encPath, 4); err == nil {
		t.Error("DecryptChunk past the last frame should fail")
	}
}

func TestReadContainerInfo(t *testing.T) {
	const chunkSize = 65536
	_, encPath, _ := encryptTestFile(t, AlgorithmChaCha20Poly1305, chunkSize, 3*chunkSize+1234)

	info, err := ReadContainerInfo(encPath)
	if err != nil {
		t.Fatalf("ReadContainerInfo failed: %v", err)
	}
	if info.Algorithm != AlgorithmChaCha20Poly1305 {
		t.Errorf("algorithm = %v, want ChaCha20-Poly1305", info.Algorithm)
	}
	if info.Version != Version {
		t.Errorf("version = %d, want %d", info.Version, Version)
	}
	if info.TotalChunks != 4 {
		t.Errorf("TotalChunks = %d, want 4", info.TotalChunks)
	}
	if info.ChunkSize != chunkSize/1024 {
		t.Errorf("ChunkSize = %d KiB, want %d", info.ChunkSize, chunkSize/1024)
	}

	encSize, err := FileSize(encPath)
	if err != nil {
		t.Fatalf("FileSize failed: %v", err)
	}
	if info.EncryptedSize != encSize/1024 {
		t.Errorf("EncryptedSize = %d KiB, want %d", info.EncryptedSize, encSize/1024)
	}
}

func TestReadContainerInfoRejectsPlainFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "not-a-container.txt")
	if err := os.WriteFile(path, []byte("just some text, definitely no magic"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := ReadContainerInfo(path); !errors.Is(err, crypto.ErrNotAContainer) {
		t.Errorf("ReadContainerInfo error = %v, want ErrNotAContainer", err)
	}
}
