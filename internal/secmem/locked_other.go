//go:build !unix

package secmem

import "dalkeystore/internal/domain"

// Locked is unavailable on this platform.
type Locked struct{}

func newLocked() (*Locked, error) { return nil, ErrUnsupported }

// Alloc always fails.
func (*Locked) Alloc(int) ([]byte, error) { return nil, ErrUnsupported }

// Free is a no-op.
func (*Locked) Free([]byte) {}

var _ domain.Allocator = (*Locked)(nil)
