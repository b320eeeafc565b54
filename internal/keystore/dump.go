package keystore

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Dump writes a diagnostic view of c to w: handle, ticket, slot count and
// every slot's ID, size and wrapped key bytes. A nil context is a no-op.
//
// The output contains key material. It is a debug aid only.
func Dump(w io.Writer, c *Context) {
	if c == nil || w == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(w, "context %s\n", c.handle)
	if c.released {
		fmt.Fprintln(w, "  released")
		return
	}
	fmt.Fprintln(w, "  ticket:")
	writeHex(w, "    ", c.ticket[:])
	fmt.Fprintf(w, "  slots: %d\n", len(c.slots))

	for _, id := range c.sortedIDsLocked() {
		s := c.slots[id]
		s.mu.Lock()
		fmt.Fprintf(w, "    [%d] wrapped key size=%d\n", id, s.size)
		if s.key != nil && s.size > 0 {
			writeHex(w, "      ", s.key.buf[:s.size])
		}
		s.mu.Unlock()
	}
}

// DumpAll dumps every live context, oldest first.
func (r *Registry) DumpAll(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(w, "registry: %d contexts\n", len(r.byHandle))
	for _, c := range r.orderedLocked() {
		Dump(w, c)
	}
}

func writeHex(w io.Writer, indent string, b []byte) {
	for _, line := range strings.SplitAfter(hex.Dump(b), "\n") {
		if line == "" {
			continue
		}
		io.WriteString(w, indent+line)
	}
}
