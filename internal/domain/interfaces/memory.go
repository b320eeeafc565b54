package interfaces

// Allocator hands out fixed-size buffers for key material.
//
// Free must scrub the buffer before releasing it. Implementations must be
// safe for concurrent use.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte)
}
