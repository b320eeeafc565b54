package keystore

import (
	"fmt"
	"sync"

	"dalkeystore/internal/domain"
	"dalkeystore/internal/util/memzero"
)

// keyBuffer owns one allocator buffer. release scrubs it and hands it back
// exactly once; later calls are no-ops.
type keyBuffer struct {
	buf   []byte
	alloc domain.Allocator
}

func acquireKeyBuffer(a domain.Allocator) (*keyBuffer, error) {
	buf, err := a.Alloc(domain.MaxWrappedKeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: key buffer: %v", ErrOutOfMemory, err)
	}
	if len(buf) < domain.MaxWrappedKeySize {
		a.Free(buf)
		return nil, fmt.Errorf("%w: allocator returned %d bytes, need %d",
			ErrOutOfMemory, len(buf), domain.MaxWrappedKeySize)
	}
	return &keyBuffer{buf: buf[:domain.MaxWrappedKeySize], alloc: a}, nil
}

func (k *keyBuffer) release() {
	if k == nil || k.buf == nil {
		return
	}
	memzero.Zero(k.buf)
	k.alloc.Free(k.buf)
	k.buf = nil
}

// Slot is one wrapped-key storage unit inside a Context.
type Slot struct {
	id int

	mu   sync.Mutex
	key  *keyBuffer
	size int
}

// ID returns the slot identifier, unique within its context.
func (s *Slot) ID() int {
	if s == nil {
		return -1
	}
	return s.id
}

// Size returns the number of wrapped key bytes stored, or 0 once released.
func (s *Slot) Size() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Released reports whether the slot has been freed.
func (s *Slot) Released() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key == nil || s.key.buf == nil
}

// SetWrappedKey stores a copy of b, scrubbing whatever the slot held before.
func (s *Slot) SetWrappedKey(b []byte) error {
	if s == nil {
		return fmt.Errorf("%w: nil slot", ErrInvalidArgument)
	}
	if len(b) > domain.MaxWrappedKeySize {
		return fmt.Errorf("%w: wrapped key is %d bytes, limit %d",
			ErrInvalidArgument, len(b), domain.MaxWrappedKeySize)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil || s.key.buf == nil {
		return fmt.Errorf("%w: slot %d released", ErrNotFound, s.id)
	}
	memzero.Zero(s.key.buf[:s.size])
	s.size = copy(s.key.buf, b)
	return nil
}

// WrappedKey returns a copy of the stored wrapped key. The caller owns the
// copy and should scrub it when done.
func (s *Slot) WrappedKey() ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil slot", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil || s.key.buf == nil {
		return nil, fmt.Errorf("%w: slot %d released", ErrNotFound, s.id)
	}
	out := make([]byte, s.size)
	copy(out, s.key.buf[:s.size])
	return out, nil
}

func (s *Slot) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key.release()
	s.size = 0
}
