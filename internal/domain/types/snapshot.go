package types

// SlotRecord is the exported form of one key slot.
type SlotRecord struct {
	ID         int    `json:"id"`
	WrappedKey []byte `json:"wrapped_key"`
}

// ContextRecord is the exported form of one context and its slots.
type ContextRecord struct {
	Ticket Ticket       `json:"ticket"`
	Slots  []SlotRecord `json:"slots"`
}

// Snapshot is a point-in-time copy of a registry. It holds key material and
// must be wiped once persisted or imported.
type Snapshot struct {
	Version  int             `json:"v"`
	Contexts []ContextRecord `json:"contexts"`
}

// SlotCount returns the total number of slots across all contexts.
func (s *Snapshot) SlotCount() int {
	n := 0
	for i := range s.Contexts {
		n += len(s.Contexts[i].Slots)
	}
	return n
}

// Wipe zeroes every ticket and wrapped key held by the snapshot.
func (s *Snapshot) Wipe() {
	if s == nil {
		return
	}
	for i := range s.Contexts {
		c := &s.Contexts[i]
		for j := range c.Ticket {
			c.Ticket[j] = 0
		}
		for j := range c.Slots {
			k := c.Slots[j].WrappedKey
			for n := range k {
				k[n] = 0
			}
		}
	}
}
