/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// encryptor.go: Chunked streaming encryption logic for go-filecrypt
package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

// ioBufferSize is the bufio buffer size used in front of the files that the
// streaming paths read and write. The chunk buffer itself is allocated
// separately and dominates memory use.
const ioBufferSize = 64 * 1024

// Encryptor handles chunked and whole-file encryption.
type Encryptor struct {
	keyBuf     *crypto.SecureBuffer
	sealer     sealer
	algorithm  Algorithm
	chunkSize  int
	progress   func(float64)
	logger     logrus.FieldLogger
	bufferPool *sync.Pool
	// allocHook observes chunk buffer allocations. It remains nil in
	// normal use; tests compiled with the testhooks tag may set it.
	allocHook func(int)
}

func NewEncryptor(algo Algorithm, key []byte, opts ...Option) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", crypto.ErrInvalidKeyLength, len(key))
	}
	if !algo.IsSupported() {
		return nil, fmt.Errorf("%w: %s", crypto.ErrUnknownAlgorithm, algo)
	}

	cfg := newConfig(opts)
	if cfg.ChunkSize < MinChunkSize {
		return nil, fmt.Errorf("invalid chunk size: must be at least %d byte, got %d", MinChunkSize, cfg.ChunkSize)
	}
	if int64(cfg.ChunkSize) > int64(MaxChunkSize) {
		return nil, fmt.Errorf("%w: chunk size %d", crypto.ErrFrameTooLarge, cfg.ChunkSize)
	}

	keyBuf, err := crypto.NewSecureBufferFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create SecureBuffer for key: %w", err)
	}

	slr, err := newSealer(algo, keyBuf.Data())
	if err != nil {
		keyBuf.Destroy()
		return nil, err
	}

	e := &Encryptor{
		keyBuf:    keyBuf,
		sealer:    slr,
		algorithm: algo,
		chunkSize: cfg.ChunkSize,
		progress:  cfg.Progress,
		logger:    cfg.Logger,
	}
	e.bufferPool = &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, e.chunkSize)
			if e.allocHook != nil {
				e.allocHook(len(buf))
			}
			return &buf
		},
	}
	return e, nil
}

// EncryptFile performs chunked encryption of a file. On any error the
// partially written output is removed, best-effort.
func (e *Encryptor) EncryptFile(ctx context.Context, srcPath, dstPath string) (res *ChunkEncryptResult, err error) {
	srcFile, err := os.Open(srcPath) // #nosec G304 -- file path provided by caller, library purpose is file encryption
	if err != nil {
		return nil, crypto.WrapError("open source file", err)
	}
	defer srcFile.Close()

	stat, err := srcFile.Stat()
	if err != nil {
		return nil, crypto.WrapError("stat source file", err)
	}

	dstFile, err := os.Create(dstPath) // #nosec G304 -- file path provided by caller, library purpose is file encryption
	if err != nil {
		return nil, crypto.WrapError("create destination file", err)
	}
	defer func() {
		if closeErr := dstFile.Close(); closeErr != nil && err == nil {
			err = crypto.WrapError("close destination file", closeErr)
		}
		if err != nil {
			removePartialOutput(e.logger, dstPath)
		}
	}()

	bufferedWriter := bufio.NewWriterSize(dstFile, ioBufferSize)

	res, err = e.EncryptStream(ctx, srcFile, bufferedWriter, stat.Size())
	if err != nil {
		return nil, err
	}

	if err = bufferedWriter.Flush(); err != nil {
		return nil, crypto.WrapError("flush destination file", err)
	}

	return res, nil
}

// EncryptStream writes the container header and one frame per chunk read
// from src. If sizeHint > 0, it is used for progress reporting only.
//
// A single chunk-sized buffer is live at any time; no chunk is retained
// after its frame has been written.
func (e *Encryptor) EncryptStream(ctx context.Context, src io.Reader, dst io.Writer, sizeHint ...int64) (*ChunkEncryptResult, error) {
	if err := writeContainerHeader(dst, e.algorithm, uint64(e.chunkSize)); err != nil {
		return nil, err
	}

	var totalSize int64
	if len(sizeHint) > 0 {
		totalSize = sizeHint[0]
	}

	bufPtr := e.bufferPool.Get().(*[]byte)
	defer e.bufferPool.Put(bufPtr)
	buf := *bufPtr

	var written int64
	var frames int
	progressNext := int64(0)
	var progressStep int64
	if totalSize > 0 {
		progressStep = totalSize / 5 // 20% intervals
	}

	for {
		if ctx.Err() != nil {
			return nil, crypto.ErrContextCanceled
		}

		n, err := io.ReadFull(src, buf)
		if n > 0 {
			sealed, sealErr := e.sealer.Seal(buf[:n])
			if sealErr != nil {
				return nil, sealErr
			}
			if writeErr := writeFrame(dst, sealed); writeErr != nil {
				return nil, writeErr
			}
			written += int64(n)
			frames++

			if e.progress != nil && totalSize > 0 && written >= progressNext {
				e.progress(float64(written) / float64(totalSize))
				progressNext += progressStep
			}
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, crypto.WrapError("read source stream", err)
		}
	}

	if e.progress != nil {
		e.progress(1.0)
	}

	return &ChunkEncryptResult{
		FileSize:    toKiB(written),
		ChunkSize:   toKiB(int64(e.chunkSize)),
		TotalChunks: frames,
	}, nil
}

// Destroy zeroes key material and unlocks memory.
func (e *Encryptor) Destroy() {
	if e.keyBuf != nil {
		e.keyBuf.Destroy()
	}
}
