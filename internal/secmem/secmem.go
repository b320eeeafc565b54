package secmem

import (
	"errors"
	"fmt"
	"sync"

	"dalkeystore/internal/domain"
	"dalkeystore/internal/util/memzero"
)

var (
	// ErrExhausted is returned when an allocation would exceed a Limit.
	ErrExhausted = errors.New("secmem: key memory budget exhausted")
	// ErrUnsupported is returned when locked memory is requested on a
	// platform without mlock.
	ErrUnsupported = errors.New("secmem: locked memory not supported on this platform")

	errBadSize = errors.New("secmem: allocation size must be positive")
)

// Heap allocates buffers on the Go heap.
type Heap struct{}

// Alloc returns a zeroed buffer of size bytes.
func (Heap) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errBadSize
	}
	return make([]byte, size), nil
}

// Free scrubs buf. The garbage collector reclaims it afterwards.
func (Heap) Free(buf []byte) { memzero.Zero(buf[:cap(buf)]) }

// Limit wraps an allocator with a byte budget.
type Limit struct {
	next domain.Allocator
	max  int

	mu   sync.Mutex
	used int
}

// NewLimit returns an allocator that fails with ErrExhausted once more than
// max bytes are outstanding through it.
func NewLimit(next domain.Allocator, max int) *Limit {
	return &Limit{next: next, max: max}
}

// Alloc reserves size bytes from the budget before delegating.
func (l *Limit) Alloc(size int) ([]byte, error) {
	l.mu.Lock()
	if l.used+size > l.max {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w (%d of %d bytes in use)", ErrExhausted, l.used, l.max)
	}
	l.used += size
	l.mu.Unlock()

	buf, err := l.next.Alloc(size)
	if err != nil {
		l.mu.Lock()
		l.used -= size
		l.mu.Unlock()
		return nil, err
	}
	return buf, nil
}

// Free releases buf through the wrapped allocator and returns its bytes to
// the budget.
func (l *Limit) Free(buf []byte) {
	n := len(buf)
	l.next.Free(buf)
	l.mu.Lock()
	l.used -= n
	l.mu.Unlock()
}

// InUse reports the bytes currently outstanding.
func (l *Limit) InUse() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// New returns the allocator for the given settings: Locked when locked is
// set, Heap otherwise, wrapped in a Limit when maxBytes is positive.
func New(locked bool, maxBytes int) (domain.Allocator, error) {
	var a domain.Allocator = Heap{}
	if locked {
		l, err := newLocked()
		if err != nil {
			return nil, err
		}
		a = l
	}
	if maxBytes > 0 {
		a = NewLimit(a, maxBytes)
	}
	return a, nil
}

var (
	_ domain.Allocator = Heap{}
	_ domain.Allocator = (*Limit)(nil)
)
