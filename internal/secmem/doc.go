// Package secmem provides allocators for key material buffers.
//
// Heap hands out ordinary Go slices. Locked maps anonymous pages and pins
// them with mlock(2) so wrapped keys are never written to swap; it is only
// available on unix targets. Limit caps the number of bytes outstanding
// through another allocator.
//
// Every allocator scrubs a buffer on Free before releasing it.
package secmem
