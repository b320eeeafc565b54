package keystore_test

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"dalkeystore/internal/keystore"
	"dalkeystore/internal/util/memzero"
)

// ticket builds a distinct ticket from n.
func ticket(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// recordingAllocator hands out heap buffers and remembers what it was given
// back, so tests can check buffers were scrubbed before release.
type recordingAllocator struct {
	mu          sync.Mutex
	fail        bool
	outstanding int
	freed       [][]byte
	dirty       int
}

func (a *recordingAllocator) Alloc(n int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, errors.New("injected allocation failure")
	}
	a.outstanding++
	return make([]byte, n), nil
}

func (a *recordingAllocator) Free(b []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !memzero.IsZero(b) {
		a.dirty++
	}
	a.outstanding--
	a.freed = append(a.freed, b)
}

func (a *recordingAllocator) setFail(v bool) {
	a.mu.Lock()
	a.fail = v
	a.mu.Unlock()
}

func newRegistry(t *testing.T, opts ...keystore.Option) (*keystore.Registry, *recordingAllocator) {
	t.Helper()
	alloc := &recordingAllocator{}
	r := keystore.New(append([]keystore.Option{keystore.WithAllocator(alloc)}, opts...)...)
	t.Cleanup(func() {
		r.TeardownAll()
		require.Zero(t, alloc.outstanding, "buffers leaked")
		require.Zero(t, alloc.dirty, "buffers released without scrubbing")
	})
	return r, alloc
}

func mustContext(t *testing.T, r *keystore.Registry, n uint64) *keystore.Context {
	t.Helper()
	c, err := r.AllocateContext(ticket(n))
	require.NoError(t, err)
	return c
}
