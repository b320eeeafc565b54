package keystore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"dalkeystore/internal/crypto"
	"dalkeystore/internal/domain"
)

// Registry is the collection of live contexts. It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	byHandle map[uuid.UUID]*Context
	byTicket map[domain.Ticket][]*Context // newest first
	seq      uint64

	alloc domain.Allocator
	log   *log.Logger
	dupes bool
}

// New creates an empty registry with the provided options.
func New(opts ...Option) *Registry {
	o := buildOptions(opts)
	return &Registry{
		byHandle: make(map[uuid.UUID]*Context),
		byTicket: make(map[domain.Ticket][]*Context),
		alloc:    o.Allocator,
		log:      o.Logger,
		dupes:    o.DuplicateTickets,
	}
}

// Count returns the number of live contexts.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHandle)
}

// AllocateContext registers a new, empty context for ticket.
func (r *Registry) AllocateContext(ticket []byte) (*Context, error) {
	t, err := domain.ParseTicket(ticket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocateLocked(t)
}

func (r *Registry) allocateLocked(t domain.Ticket) (*Context, error) {
	if n := len(r.byHandle); n >= domain.ClientsMax {
		return nil, fmt.Errorf("%w: %d of %d contexts live", ErrOutOfCapacity, n, domain.ClientsMax)
	}
	if !r.dupes && len(r.byTicket[t]) > 0 {
		return nil, ErrTicketInUse
	}
	h, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("%w: context handle: %v", ErrOutOfMemory, err)
	}

	r.seq++
	c := newContext(h, r.seq, t, r.alloc)
	r.byHandle[h] = c
	r.byTicket[t] = append([]*Context{c}, r.byTicket[t]...)

	r.log.Debug("context allocated",
		"handle", h, "ticket", crypto.TicketFingerprint(t), "live", len(r.byHandle))
	return c, nil
}

// FreeContext destroys c and all of its slots.
func (r *Registry) FreeContext(c *Context) error {
	if c == nil {
		return fmt.Errorf("%w: nil context", ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byHandle[c.handle]; !ok || cur != c {
		return fmt.Errorf("%w: context %s", ErrNotFound, c.handle)
	}
	r.removeLocked(c)
	return nil
}

// FreeContextByTicket destroys the context FindContextByTicket would return.
func (r *Registry) FreeContextByTicket(ticket []byte) error {
	t, err := domain.ParseTicket(ticket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byTicket[t]
	if len(list) == 0 {
		return fmt.Errorf("%w: no context for ticket %s", ErrNotFound, crypto.TicketFingerprint(t))
	}
	r.removeLocked(list[0])
	return nil
}

// FindContextByTicket returns the context registered under ticket. A missing
// or malformed ticket is reported as not found.
func (r *Registry) FindContextByTicket(ticket []byte) (*Context, bool) {
	t, err := domain.ParseTicket(ticket)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byTicket[t]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// FindContext returns the live context with the given handle string.
func (r *Registry) FindContext(handle string) (*Context, bool) {
	h, err := uuid.Parse(handle)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byHandle[h]
	return c, ok
}

// Contexts returns the live contexts, oldest first.
func (r *Registry) Contexts() []*Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orderedLocked()
}

// TeardownAll destroys every context and slot. It never fails and may be
// called on an empty registry.
func (r *Registry) TeardownAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	contexts, slots := 0, 0
	for h, c := range r.byHandle {
		delete(r.byHandle, h)
		slots += c.release()
		contexts++
	}
	clear(r.byTicket)

	if contexts > 0 {
		r.log.Debug("registry torn down", "contexts", contexts, "slots", slots)
	}
}

// removeLocked unlinks c from both indexes before releasing it, since
// release scrubs the ticket the index is keyed on.
func (r *Registry) removeLocked(c *Context) {
	delete(r.byHandle, c.handle)

	list := r.byTicket[c.ticket]
	for i, item := range list {
		if item == c {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.byTicket, c.ticket)
	} else {
		r.byTicket[c.ticket] = list
	}

	fp := crypto.TicketFingerprint(c.ticket)
	slots := c.release()
	r.log.Debug("context freed",
		"handle", c.handle, "ticket", fp, "slots", slots, "live", len(r.byHandle))
}

func (r *Registry) orderedLocked() []*Context {
	out := make([]*Context, 0, len(r.byHandle))
	for _, c := range r.byHandle {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
