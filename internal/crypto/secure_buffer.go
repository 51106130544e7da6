/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"sync"

	"github.com/filevault/go-filecrypt/secure"
)

// SecureBuffer holds a private copy of key material, page-locked when the
// platform allows it, and zeroable on Destroy.
type SecureBuffer struct {
	mu     sync.Mutex
	buf    []byte
	zeroed bool
	unlock func()
}

// NewSecureBufferFromBytes copies b into a new SecureBuffer. Page locking
// is best effort; a failed mlock does not fail the constructor.
func NewSecureBufferFromBytes(b []byte) (*SecureBuffer, error) {
	buf := make([]byte, len(b))
	copy(buf, b)

	unlock := func() {}
	if err := secure.LockMemory(buf); err == nil {
		unlock = func() {
			_ = secure.UnlockMemory(buf)
		}
	}

	return &SecureBuffer{
		buf:    buf,
		unlock: unlock,
	}, nil
}

// Data returns the buffer contents, or nil after Destroy.
func (s *SecureBuffer) Data() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zeroed {
		return nil
	}
	return s.buf
}

// Len returns the buffer length.
func (s *SecureBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Destroy zeroes the buffer and unlocks its pages. Safe to call twice.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.zeroed {
		secure.Zero(s.buf)
		s.zeroed = true

		if s.unlock != nil {
			s.unlock()
		}
	}
}
