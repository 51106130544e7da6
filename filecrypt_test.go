/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package filecrypt_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/filevault/go-filecrypt"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key
}

func writeTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestIntegration_WholeFileWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	for _, algorithm := range []string{"aes", "chacha20poly1305"} {
		key := testKey(t)
		defer filecrypt.ZeroKey(key)

		plaintext := []byte("Integration test data for the whole-file workflow")
		srcPath := writeTestFile(t, tmpDir, algorithm+".txt", plaintext)

		encPath := filepath.Join(tmpDir, algorithm+".enc")
		encRes, err := filecrypt.EncryptFile(ctx, algorithm, key, srcPath, encPath)
		if err != nil {
			t.Fatalf("%s: EncryptFile failed: %v", algorithm, err)
		}
		if encRes.FileSize != int64(len(plaintext))/1024 {
			t.Errorf("%s: FileSize = %d KiB, want %d", algorithm, encRes.FileSize, len(plaintext)/1024)
		}

		decPath := filepath.Join(tmpDir, algorithm+".dec")
		decRes, err := filecrypt.DecryptFile(ctx, algorithm, key, encPath, decPath)
		if err != nil {
			t.Fatalf("%s: DecryptFile failed: %v", algorithm, err)
		}
		if decRes.EncryptedSize < 0 {
			t.Errorf("%s: negative EncryptedSize", algorithm)
		}

		decrypted, err := os.ReadFile(decPath)
		if err != nil {
			t.Fatalf("%s: failed to read decrypted file: %v", algorithm, err)
		}
		if !bytes.Equal(plaintext, decrypted) {
			t.Errorf("%s: decrypted content does not match original", algorithm)
		}
	}
}

func TestIntegration_ChunkedWorkflowWithMD5(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	key := testKey(t)
	defer filecrypt.ZeroKey(key)

	// 2.5 MiB with 1 MiB chunks: three frames.
	plaintext := make([]byte, 2621440)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("rand.Read failed: %v", err)
	}
	srcPath := writeTestFile(t, tmpDir, "large.bin", plaintext)

	srcDigest, err := filecrypt.ComputeFileMD5(srcPath)
	if err != nil {
		t.Fatalf("ComputeFileMD5 failed: %v", err)
	}

	encPath := filepath.Join(tmpDir, "large.bin.enc")
	encRes, err := filecrypt.ChunkEncryptFile(ctx, "chacha20poly1305", key, srcPath, encPath, 1)
	if err != nil {
		t.Fatalf("ChunkEncryptFile failed: %v", err)
	}
	if encRes.TotalChunks != 3 {
		t.Errorf("TotalChunks = %d, want 3", encRes.TotalChunks)
	}
	if encRes.FileSize != 2560 {
		t.Errorf("FileSize = %d KiB, want 2560", encRes.FileSize)
	}
	if encRes.ChunkSize != 1024 {
		t.Errorf("ChunkSize = %d KiB, want 1024", encRes.ChunkSize)
	}

	decPath := filepath.Join(tmpDir, "large.bin.dec")
	decRes, err := filecrypt.ChunkDecryptFile(ctx, "chacha20poly1305", key, encPath, decPath)
	if err != nil {
		t.Fatalf("ChunkDecryptFile failed: %v", err)
	}
	if decRes.TotalChunks != 3 {
		t.Errorf("decrypt TotalChunks = %d, want 3", decRes.TotalChunks)
	}
	if decRes.OriginalSize != 2560 || decRes.TotalBytes != 2560 {
		t.Errorf("sizes = %d/%d KiB, want 2560/2560", decRes.OriginalSize, decRes.TotalBytes)
	}

	// Byte-for-byte equality established through the digest helper.
	ok, err := filecrypt.VerifyFileMD5(decPath, srcDigest)
	if err != nil {
		t.Fatalf("VerifyFileMD5 failed: %v", err)
	}
	if !ok {
		t.Error("decrypted file digest does not match source")
	}
}

func TestIntegration_TamperedContainerLeavesNoOutput(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	key := testKey(t)
	defer filecrypt.ZeroKey(key)

	plaintext := make([]byte, 2621440)
	srcPath := writeTestFile(t, tmpDir, "victim.bin", plaintext)

	encPath := filepath.Join(tmpDir, "victim.bin.enc")
	if _, err := filecrypt.ChunkEncryptFile(ctx, "chacha20poly1305", key, srcPath, encPath, 1); err != nil {
		t.Fatalf("ChunkEncryptFile failed: %v", err)
	}

	// Flip the byte at offset 30, inside the first frame's nonce.
	data, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	data[30] ^= 0xFF
	if err := os.WriteFile(encPath, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	decPath := filepath.Join(tmpDir, "victim.bin.dec")
	_, err = filecrypt.ChunkDecryptFile(ctx, "chacha20poly1305", key, encPath, decPath)
	if err == nil {
		t.Fatal("decryption of tampered container should fail")
	}
	if _, statErr := os.Stat(decPath); !os.IsNotExist(statErr) {
		t.Error("output file exists after failed decryption")
	}
}

func TestIntegration_CrossAlgorithmMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	key := testKey(t)
	defer filecrypt.ZeroKey(key)

	srcPath := writeTestFile(t, tmpDir, "data.bin", []byte("cross-algorithm container"))

	encPath := filepath.Join(tmpDir, "data.bin.enc")
	if _, err := filecrypt.ChunkEncryptFile(ctx, "chacha20poly1305", key, srcPath, encPath, 1); err != nil {
		t.Fatalf("ChunkEncryptFile failed: %v", err)
	}

	decPath := filepath.Join(tmpDir, "data.bin.dec")
	_, err := filecrypt.ChunkDecryptFile(ctx, "aes", key, encPath, decPath)
	if err == nil {
		t.Fatal("decrypting a chacha20poly1305 container as aes should fail")
	}
}

func TestIntegration_DecryptChunkAndInfo(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	key := testKey(t)
	defer filecrypt.ZeroKey(key)

	plaintext := make([]byte, 3*1048576+4096)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("rand.Read failed: %v", err)
	}
	srcPath := writeTestFile(t, tmpDir, "media.bin", plaintext)

	encPath := filepath.Join(tmpDir, "media.bin.enc")
	if _, err := filecrypt.ChunkEncryptFile(ctx, "aes", key, srcPath, encPath, 1); err != nil {
		t.Fatalf("ChunkEncryptFile failed: %v", err)
	}

	info, err := filecrypt.ReadContainerInfo(encPath)
	if err != nil {
		t.Fatalf("ReadContainerInfo failed: %v", err)
	}
	if info.TotalChunks != 4 {
		t.Errorf("TotalChunks = %d, want 4", info.TotalChunks)
	}

	chunk, err := filecrypt.DecryptChunk(ctx, "aes", key, encPath, 2)
	if err != nil {
		t.Fatalf("DecryptChunk failed: %v", err)
	}
	if !bytes.Equal(chunk, plaintext[2*1048576:3*1048576]) {
		t.Error("DecryptChunk(2) content mismatch")
	}
}

func TestIntegration_UnknownAlgorithm(t *testing.T) {
	tmpDir := t.TempDir()
	key := testKey(t)
	srcPath := writeTestFile(t, tmpDir, "x.bin", []byte("x"))

	_, err := filecrypt.EncryptFile(context.Background(), "des", key, srcPath, filepath.Join(tmpDir, "x.enc"))
	if err == nil {
		t.Fatal("EncryptFile with unknown algorithm should fail")
	}
}

func TestIntegration_InvalidKeyLength(t *testing.T) {
	tmpDir := t.TempDir()
	srcPath := writeTestFile(t, tmpDir, "x.bin", []byte("x"))

	// A short key is rejected before any I/O; no output appears.
	outPath := filepath.Join(tmpDir, "x.enc")
	_, err := filecrypt.EncryptFile(context.Background(), "aes", make([]byte, 16), srcPath, outPath)
	if err == nil {
		t.Fatal("EncryptFile with 16-byte key should fail")
	}
	if _, statErr := os.Stat(outPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("output file exists despite key validation failure")
	}
}
