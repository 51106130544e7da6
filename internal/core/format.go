/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// format.go: Container header and frame codec for go-filecrypt
package core

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	crypto "github.com/filevault/go-filecrypt/internal/crypto"
)

const (
	// MagicBytes is the container file signature.
	MagicBytes = "ENCFILE1"
	// Version is the current container format version.
	Version = 1
	// HeaderSize is the total size of the container header.
	// Layout: [8 bytes magic][2 bytes version][2 bytes algorithm]
	// [4 bytes flags, zero][8 bytes chunk size]. All integers little-endian.
	HeaderSize = len(MagicBytes) + 2 + 2 + 4 + 8
	// FrameLenSize is the length prefix in front of each frame payload.
	FrameLenSize = 4

	// KeySize is the only accepted key length, 32 bytes for both suites.
	KeySize = 32

	// MaxChunkSize keeps the largest possible sealed frame within the
	// 4 GiB ceiling of the uint32 length prefix.
	MaxChunkSize = math.MaxUint32 - maxSealOverhead
	// MinChunkSize is the minimum valid chunk size.
	MinChunkSize = 1
	// DefaultChunkSize is used by streaming operations when the caller
	// does not choose one.
	DefaultChunkSize = 1 * 1024 * 1024
)

// ContainerHeader is the parsed 24-byte preamble of a chunked file.
type ContainerHeader struct {
	Version   uint16
	Algorithm Algorithm
	ChunkSize uint64
}

// writeContainerHeader writes the 24-byte preamble.
func writeContainerHeader(w io.Writer, algo Algorithm, chunkSize uint64) error {
	var hdr [HeaderSize]byte
	copy(hdr[:8], MagicBytes)
	binary.LittleEndian.PutUint16(hdr[8:10], Version)
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(algo))
	binary.LittleEndian.PutUint32(hdr[12:16], 0) // flags, reserved
	binary.LittleEndian.PutUint64(hdr[16:24], chunkSize)

	if _, err := w.Write(hdr[:]); err != nil {
		return crypto.WrapError("write container header", err)
	}
	return nil
}

// readContainerHeader reads and validates the 24-byte preamble. A file too
// short to hold one is not a container at all.
func readContainerHeader(r io.Reader) (*ContainerHeader, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: file shorter than header", crypto.ErrNotAContainer)
		}
		return nil, crypto.WrapError("read container header", err)
	}

	if string(hdr[:8]) != MagicBytes {
		return nil, fmt.Errorf("%w: bad magic %q", crypto.ErrNotAContainer, hdr[:8])
	}

	version := binary.LittleEndian.Uint16(hdr[8:10])
	if version != Version {
		return nil, fmt.Errorf("%w: version %d", crypto.ErrUnsupportedVersion, version)
	}

	algo, err := parseWireCode(binary.LittleEndian.Uint16(hdr[10:12]))
	if err != nil {
		return nil, err
	}

	if flags := binary.LittleEndian.Uint32(hdr[12:16]); flags != 0 {
		return nil, fmt.Errorf("%w: flags 0x%08x", crypto.ErrUnsupportedFlags, flags)
	}

	chunkSize := binary.LittleEndian.Uint64(hdr[16:24])
	if chunkSize > MaxChunkSize {
		return nil, fmt.Errorf("%w: header chunk size %d", crypto.ErrFrameTooLarge, chunkSize)
	}

	return &ContainerHeader{
		Version:   version,
		Algorithm: algo,
		ChunkSize: chunkSize,
	}, nil
}

// writeFrame encodes one sealed blob as len(4, little-endian) || payload.
func writeFrame(w io.Writer, sealed []byte) error {
	var lenBuf [FrameLenSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(sealed))) // #nosec G115 -- sealed length bounded by MaxChunkSize+overhead
	if _, err := w.Write(lenBuf[:]); err != nil {
		return crypto.WrapError("write frame length", err)
	}
	if _, err := w.Write(sealed); err != nil {
		return crypto.WrapError("write frame payload", err)
	}
	return nil
}

// readFrameLen reads the next frame's length prefix. A clean EOF before
// any prefix byte terminates the stream; a partial prefix is a truncated
// frame. Lengths of zero or above maxLen are rejected.
func readFrameLen(r io.Reader, maxLen uint64) (uint32, error) {
	var lenBuf [FrameLenSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return 0, fmt.Errorf("%w: EOF inside frame length", crypto.ErrTruncatedFrame)
		}
		return 0, crypto.WrapError("read frame length", err)
	}

	frameLen := binary.LittleEndian.Uint32(lenBuf[:])
	if frameLen == 0 || uint64(frameLen) > maxLen {
		return 0, fmt.Errorf("%w: frame length %d (limit %d)", crypto.ErrFrameTooLarge, frameLen, maxLen)
	}
	return frameLen, nil
}

// readFrame reads the next frame into buf (reused when large enough).
// io.EOF signals clean end-of-stream.
func readFrame(r io.Reader, buf []byte, maxLen uint64) ([]byte, error) {
	frameLen, err := readFrameLen(r, maxLen)
	if err != nil {
		return nil, err
	}

	if uint64(cap(buf)) < uint64(frameLen) {
		buf = make([]byte, frameLen)
	}
	sealed := buf[:frameLen]
	if _, err := io.ReadFull(r, sealed); err != nil {
		return nil, fmt.Errorf("%w: EOF inside frame payload", crypto.ErrTruncatedFrame)
	}
	return sealed, nil
}

// discardFrame skips the next frame's payload without retaining it.
// io.EOF signals clean end-of-stream before the length prefix.
func discardFrame(r io.Reader, maxLen uint64) (uint32, error) {
	frameLen, err := readFrameLen(r, maxLen)
	if err != nil {
		return 0, err
	}
	if _, err := io.CopyN(io.Discard, r, int64(frameLen)); err != nil {
		return 0, fmt.Errorf("%w: EOF inside frame payload", crypto.ErrTruncatedFrame)
	}
	return frameLen, nil
}

// frameLimit is the largest sealed frame a container with the given header
// chunk size may carry. Containers written by this engine always record
// their chunk size; a zero falls back to the absolute format limit.
func frameLimit(chunkSize uint64, overhead int) uint64 {
	if chunkSize == 0 {
		return math.MaxUint32
	}
	return chunkSize + uint64(overhead)
}
