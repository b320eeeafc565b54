package keystore

import (
	"fmt"

	"github.com/google/uuid"

	"dalkeystore/internal/domain"
)

// Export copies every live context and slot into a Snapshot, oldest context
// first and slots in ascending ID order. The result holds key material;
// callers must Wipe it when done.
func (r *Registry) Export() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := domain.Snapshot{Version: domain.SnapshotVersion}
	for _, c := range r.orderedLocked() {
		c.mu.Lock()
		rec := domain.ContextRecord{Ticket: c.ticket}
		for _, id := range c.sortedIDsLocked() {
			s := c.slots[id]
			s.mu.Lock()
			key := make([]byte, s.size)
			copy(key, s.key.buf[:s.size])
			s.mu.Unlock()
			rec.Slots = append(rec.Slots, domain.SlotRecord{ID: id, WrappedKey: key})
		}
		c.mu.Unlock()
		snap.Contexts = append(snap.Contexts, rec)
	}
	return snap
}

// Import recreates the contexts and slots recorded in snap. The registry must
// be empty. Slot IDs are preserved. If any record is rejected, everything
// created so far is released and scrubbed before the error is returned.
func (r *Registry) Import(snap domain.Snapshot) error {
	if err := checkSnapshot(snap); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.byHandle) != 0 {
		return fmt.Errorf("%w: import requires an empty registry (%d contexts live)",
			ErrInvalidArgument, len(r.byHandle))
	}
	return r.importLocked(snap)
}

// Replace swaps the registry contents for snap in one step. The current
// contexts stay live until every record of snap has been imported; if snap
// is rejected they are left untouched. On success the old contexts are
// released and scrubbed. Old and new key buffers coexist while the import
// runs, so a budgeted allocator must have room for both.
func (r *Registry) Replace(snap domain.Snapshot) error {
	if err := checkSnapshot(snap); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	oldHandles, oldTickets := r.byHandle, r.byTicket
	r.byHandle = make(map[uuid.UUID]*Context)
	r.byTicket = make(map[domain.Ticket][]*Context)
	if err := r.importLocked(snap); err != nil {
		r.byHandle, r.byTicket = oldHandles, oldTickets
		return err
	}

	slots := 0
	for _, c := range oldHandles {
		slots += c.release()
	}
	r.log.Debug("registry replaced", "released", len(oldHandles), "slots", slots)
	return nil
}

func checkSnapshot(snap domain.Snapshot) error {
	if snap.Version > domain.SnapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", ErrInvalidArgument, snap.Version)
	}
	if len(snap.Contexts) > domain.ClientsMax {
		return fmt.Errorf("%w: snapshot holds %d contexts, limit %d",
			ErrOutOfCapacity, len(snap.Contexts), domain.ClientsMax)
	}
	return nil
}

// importLocked fills the indexes from snap, removing whatever it created if
// a record is rejected.
func (r *Registry) importLocked(snap domain.Snapshot) (err error) {
	var created []*Context
	defer func() {
		if err == nil {
			return
		}
		for _, c := range created {
			r.removeLocked(c)
		}
	}()

	for i := range snap.Contexts {
		rec := &snap.Contexts[i]
		c, err := r.allocateLocked(rec.Ticket)
		if err != nil {
			return fmt.Errorf("context %d: %w", i, err)
		}
		created = append(created, c)

		for _, sr := range rec.Slots {
			s, err := c.allocateSlotID(sr.ID)
			if err != nil {
				return fmt.Errorf("context %d: %w", i, err)
			}
			if err := s.SetWrappedKey(sr.WrappedKey); err != nil {
				return fmt.Errorf("context %d slot %d: %w", i, sr.ID, err)
			}
		}
	}

	r.log.Debug("registry imported", "contexts", len(created), "slots", snap.SlotCount())
	return nil
}
