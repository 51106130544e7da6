/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// decryptor.go: Chunked streaming decryption logic for go-filecrypt
package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

// Decryptor handles chunked and whole-file decryption.
type Decryptor struct {
	keyBuf    *crypto.SecureBuffer
	sealer    sealer
	algorithm Algorithm
	progress  func(float64)
	logger    logrus.FieldLogger
}

func NewDecryptor(algo Algorithm, key []byte, opts ...Option) (*Decryptor, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", crypto.ErrInvalidKeyLength, len(key))
	}
	if !algo.IsSupported() {
		return nil, fmt.Errorf("%w: %s", crypto.ErrUnknownAlgorithm, algo)
	}

	cfg := newConfig(opts)

	keyBuf, err := crypto.NewSecureBufferFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create SecureBuffer for key: %w", err)
	}

	slr, err := newSealer(algo, keyBuf.Data())
	if err != nil {
		keyBuf.Destroy()
		return nil, err
	}

	return &Decryptor{
		keyBuf:    keyBuf,
		sealer:    slr,
		algorithm: algo,
		progress:  cfg.Progress,
		logger:    cfg.Logger,
	}, nil
}

// DecryptFile performs chunked decryption of a file. On any error,
// including an authentication or padding failure mid-stream, the partial
// output is removed, best-effort.
func (d *Decryptor) DecryptFile(ctx context.Context, srcPath, dstPath string) (res *ChunkDecryptResult, err error) {
	srcFile, err := os.Open(srcPath) // #nosec G304 -- file path provided by caller, library purpose is file decryption
	if err != nil {
		return nil, crypto.WrapError("open source file", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath) // #nosec G304 -- file path provided by caller, library purpose is file decryption
	if err != nil {
		return nil, crypto.WrapError("create destination file", err)
	}
	defer func() {
		if closeErr := dstFile.Close(); closeErr != nil && err == nil {
			err = crypto.WrapError("close destination file", closeErr)
		}
		if err != nil {
			removePartialOutput(d.logger, dstPath)
		}
	}()

	bufferedReader := bufio.NewReaderSize(srcFile, ioBufferSize)
	bufferedWriter := bufio.NewWriterSize(dstFile, ioBufferSize)

	res, err = d.DecryptStream(ctx, bufferedReader, bufferedWriter)
	if err != nil {
		return nil, err
	}

	if err = bufferedWriter.Flush(); err != nil {
		return nil, crypto.WrapError("flush destination file", err)
	}

	return res, nil
}

// DecryptStream reads and validates the container header, then opens one
// frame at a time, writing the recovered plaintext to dst. The requested
// algorithm is cross-checked against the header.
func (d *Decryptor) DecryptStream(ctx context.Context, src io.Reader, dst io.Writer) (*ChunkDecryptResult, error) {
	hdr, err := readContainerHeader(src)
	if err != nil {
		return nil, err
	}
	if hdr.Algorithm != d.algorithm {
		return nil, fmt.Errorf("%w: container is %s, requested %s",
			crypto.ErrAlgorithmMismatch, hdr.Algorithm, d.algorithm)
	}

	limit := frameLimit(hdr.ChunkSize, d.sealer.Overhead())

	// One sealed-frame buffer, grown to the largest frame seen and reused.
	var buf []byte
	var written int64
	var frames int

	for {
		if ctx.Err() != nil {
			return nil, crypto.ErrContextCanceled
		}

		sealed, err := readFrame(src, buf, limit)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		buf = sealed[:cap(sealed)]

		plaintext, err := d.sealer.Open(sealed)
		if err != nil {
			return nil, crypto.NewOpError("decrypt", "stream", frames, err)
		}

		if _, err := dst.Write(plaintext); err != nil {
			return nil, crypto.WrapError("write plaintext chunk", err)
		}

		written += int64(len(plaintext))
		frames++
	}

	if d.progress != nil {
		d.progress(1.0)
	}

	return &ChunkDecryptResult{
		OriginalSize: toKiB(written),
		TotalBytes:   toKiB(written),
		ChunkSize:    toKiB(int64(hdr.ChunkSize)), // #nosec G115 -- bounded by MaxChunkSize on header read
		TotalChunks:  frames,
	}, nil
}

// DecryptChunk opens exactly one frame of a chunked container, identified
// by its zero-based index, without decrypting the rest of the file. Frames
// before the target are skipped by their length prefixes.
func (d *Decryptor) DecryptChunk(ctx context.Context, srcPath string, index uint32) ([]byte, error) {
	srcFile, err := os.Open(srcPath) // #nosec G304 -- file path provided by caller, library purpose is file decryption
	if err != nil {
		return nil, crypto.WrapError("open source file", err)
	}
	defer srcFile.Close()

	bufferedReader := bufio.NewReaderSize(srcFile, ioBufferSize)

	hdr, err := readContainerHeader(bufferedReader)
	if err != nil {
		return nil, err
	}
	if hdr.Algorithm != d.algorithm {
		return nil, fmt.Errorf("%w: container is %s, requested %s",
			crypto.ErrAlgorithmMismatch, hdr.Algorithm, d.algorithm)
	}

	limit := frameLimit(hdr.ChunkSize, d.sealer.Overhead())

	for skipped := uint32(0); skipped < index; skipped++ {
		if ctx.Err() != nil {
			return nil, crypto.ErrContextCanceled
		}
		if _, err := discardFrame(bufferedReader, limit); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("chunk index %d out of range: container has %d frames", index, skipped)
			}
			return nil, err
		}
	}

	sealed, err := readFrame(bufferedReader, nil, limit)
	if err == io.EOF {
		return nil, fmt.Errorf("chunk index %d out of range: container has %d frames", index, index)
	}
	if err != nil {
		return nil, err
	}

	plaintext, err := d.sealer.Open(sealed)
	if err != nil {
		return nil, crypto.NewOpError("decrypt", srcPath, int(index), err)
	}
	return plaintext, nil
}

// Destroy zeroes key material and unlocks memory.
func (d *Decryptor) Destroy() {
	if d.keyBuf != nil {
		d.keyBuf.Destroy()
	}
}

// ReadContainerInfo parses a chunked container's header and counts its
// frames without a key. Frame payloads are skipped, not read.
func ReadContainerInfo(path string) (*ContainerInfo, error) {
	f, err := os.Open(path) // #nosec G304 -- file path provided by caller
	if err != nil {
		return nil, crypto.WrapError("open container file", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, crypto.WrapError("stat container file", err)
	}

	bufferedReader := bufio.NewReaderSize(f, ioBufferSize)

	hdr, err := readContainerHeader(bufferedReader)
	if err != nil {
		return nil, err
	}

	limit := frameLimit(hdr.ChunkSize, maxSealOverhead)

	frames := 0
	for {
		if _, err := discardFrame(bufferedReader, limit); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		frames++
	}

	return &ContainerInfo{
		Algorithm:     hdr.Algorithm,
		Version:       hdr.Version,
		ChunkSize:     toKiB(int64(hdr.ChunkSize)), // #nosec G115 -- bounded by MaxChunkSize on header read
		TotalChunks:   frames,
		EncryptedSize: toKiB(stat.Size()),
	}, nil
}
