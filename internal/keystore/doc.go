// Package keystore implements the bounded registry of client contexts and the
// per-context pools of wrapped-key slots.
//
// A Registry holds at most domain.ClientsMax contexts, each identified by a
// fixed-size client ticket. Every Context holds at most domain.SlotsMax
// slots whose IDs are assigned lowest-unused-first. Each slot owns one
// domain.MaxWrappedKeySize buffer obtained from a domain.Allocator.
//
// # Ownership
//
// The Registry exclusively owns its contexts and each Context exclusively
// owns its slots. *Context and *Slot values handed to callers are
// non-owning handles: once the entity is freed, every method on the stale
// handle reports ErrNotFound (or a not-found result) instead of touching
// released memory.
//
// # Scrubbing
//
// Key buffers and tickets are zeroed before release on every destruction
// path: FreeSlot, FreeContext, FreeContextByTicket, TeardownAll, and the
// rollback of a failed Import.
//
// # Locking
//
// One mutex guards the registry maps, one guards each context's slot map
// and one guards each slot's buffer. Locks are always taken in that order.
package keystore
