//go:build unix

package secmem

import (
	"fmt"

	"golang.org/x/sys/unix"

	"dalkeystore/internal/domain"
	"dalkeystore/internal/util/memzero"
)

// Locked allocates page-aligned anonymous mappings pinned in RAM.
//
// Each buffer occupies at least one page, so the process RLIMIT_MEMLOCK
// bounds how many can be outstanding at once.
type Locked struct {
	pageSize int
}

func newLocked() (*Locked, error) {
	return &Locked{pageSize: unix.Getpagesize()}, nil
}

// Alloc maps and locks enough pages for size bytes.
func (l *Locked) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errBadSize
	}
	n := (size + l.pageSize - 1) / l.pageSize * l.pageSize
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("secmem: mmap %d bytes: %w", n, err)
	}
	if err := unix.Mlock(b); err != nil {
		_ = unix.Munmap(b)
		return nil, fmt.Errorf("secmem: mlock %d bytes: %w", n, err)
	}
	// The full mapping stays reachable through cap for Free.
	return b[:size], nil
}

// Free scrubs the whole mapping, then unlocks and unmaps it.
func (l *Locked) Free(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	b := buf[:cap(buf)]
	memzero.Zero(b)
	_ = unix.Munlock(b)
	_ = unix.Munmap(b)
}

var _ domain.Allocator = (*Locked)(nil)
