package keystore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"dalkeystore/internal/domain"
	"dalkeystore/internal/util/memzero"
)

// Context is a per-client session record holding a bounded set of slots.
type Context struct {
	handle uuid.UUID
	seq    uint64
	alloc  domain.Allocator

	mu       sync.Mutex
	ticket   domain.Ticket
	slots    map[int]*Slot
	released bool
}

func newContext(handle uuid.UUID, seq uint64, ticket domain.Ticket, a domain.Allocator) *Context {
	return &Context{
		handle: handle,
		seq:    seq,
		alloc:  a,
		ticket: ticket,
		slots:  make(map[int]*Slot),
	}
}

// Handle returns the opaque handle string assigned at allocation.
func (c *Context) Handle() string {
	if c == nil {
		return ""
	}
	return c.handle.String()
}

// Ticket returns the client ticket. ok is false once the context is freed.
func (c *Context) Ticket() (t domain.Ticket, ok bool) {
	if c == nil {
		return t, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return t, false
	}
	return c.ticket, true
}

// Released reports whether the context has been freed.
func (c *Context) Released() bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// SlotCount returns the number of live slots.
func (c *Context) SlotCount() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// SlotIDs returns the live slot IDs in ascending order.
func (c *Context) SlotIDs() []int {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedIDsLocked()
}

// AllocateSlot creates an empty slot with the lowest unused ID.
func (c *Context) AllocateSlot() (*Slot, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil context", ErrInvalidArgument)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil, fmt.Errorf("%w: context %s released", ErrNotFound, c.handle)
	}

	id := -1
	for i := 0; i < domain.SlotsMax; i++ {
		if _, used := c.slots[i]; !used {
			id = i
			break
		}
	}
	if id < 0 {
		return nil, fmt.Errorf("%w: context %s holds %d slots", ErrOutOfCapacity, c.handle, domain.SlotsMax)
	}
	return c.insertSlotLocked(id)
}

// allocateSlotID creates an empty slot with a caller-chosen ID. Used when
// restoring a snapshot.
func (c *Context) allocateSlotID(id int) (*Slot, error) {
	if id < 0 || id >= domain.SlotsMax {
		return nil, fmt.Errorf("%w: slot id %d out of range", ErrInvalidArgument, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil, fmt.Errorf("%w: context %s released", ErrNotFound, c.handle)
	}
	if _, used := c.slots[id]; used {
		return nil, fmt.Errorf("%w: slot id %d already in use", ErrInvalidArgument, id)
	}
	return c.insertSlotLocked(id)
}

func (c *Context) insertSlotLocked(id int) (*Slot, error) {
	key, err := acquireKeyBuffer(c.alloc)
	if err != nil {
		return nil, err
	}
	s := &Slot{id: id, key: key}
	c.slots[id] = s
	return s, nil
}

// FreeSlot destroys the slot with the given ID, scrubbing its key buffer.
func (c *Context) FreeSlot(id int) error {
	if c == nil {
		return fmt.Errorf("%w: nil context", ErrInvalidArgument)
	}
	if id < 0 || id >= domain.SlotsMax {
		return fmt.Errorf("%w: slot id %d out of range [0, %d)", ErrInvalidArgument, id, domain.SlotsMax)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return fmt.Errorf("%w: context %s released", ErrNotFound, c.handle)
	}
	s, ok := c.slots[id]
	if !ok {
		return fmt.Errorf("%w: slot %d", ErrNotFound, id)
	}
	delete(c.slots, id)
	s.release()
	return nil
}

// FindSlot returns the slot with the given ID. Out-of-range IDs and freed
// contexts yield (nil, false).
func (c *Context) FindSlot(id int) (*Slot, bool) {
	if c == nil || id < 0 || id >= domain.SlotsMax {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil, false
	}
	s, ok := c.slots[id]
	return s, ok
}

// release destroys every slot, then scrubs the ticket. Safe to call twice.
func (c *Context) release() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return 0
	}
	n := len(c.slots)
	for id, s := range c.slots {
		delete(c.slots, id)
		s.release()
	}
	memzero.Zero(c.ticket[:])
	c.released = true
	return n
}

func (c *Context) sortedIDsLocked() []int {
	ids := make([]int, 0, len(c.slots))
	for id := range c.slots {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
