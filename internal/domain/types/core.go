package types

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Limits shared with the upstream driver interface. The values must not
// change while existing clients depend on them.
const (
	// ClientTicketSize is the length in bytes of a client ticket.
	ClientTicketSize = 8
	// ClientsMax is the maximum number of live contexts in one registry.
	ClientsMax = 10
	// SlotsMax is the maximum number of key slots in one context. Slot IDs
	// range over [0, SlotsMax).
	SlotsMax = 16
	// MaxWrappedKeySize is the capacity of a slot's wrapped key buffer.
	MaxWrappedKeySize = 256
)

// ErrTicketSize is returned when a ticket is not exactly ClientTicketSize bytes.
var ErrTicketSize = fmt.Errorf("client ticket must be %d bytes", ClientTicketSize)

// Fingerprint is a short identifier presented in logs instead of raw bytes.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Ticket is the opaque identifier a client presents to reach its context.
type Ticket [ClientTicketSize]byte

// Slice returns the ticket as a []byte.
func (t Ticket) Slice() []byte { return t[:] }

// String returns the ticket in lowercase hex.
func (t Ticket) String() string { return hex.EncodeToString(t[:]) }

// ParseTicket copies b into a Ticket. Nil or wrong-length input is rejected;
// there is no prefix matching.
func ParseTicket(b []byte) (Ticket, error) {
	var t Ticket
	if b == nil {
		return t, errors.New("client ticket is missing")
	}
	if len(b) != ClientTicketSize {
		return t, ErrTicketSize
	}
	copy(t[:], b)
	return t, nil
}

// ParseTicketHex decodes a hex string into a Ticket.
func ParseTicketHex(s string) (Ticket, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Ticket{}, fmt.Errorf("client ticket: %w", err)
	}
	return ParseTicket(b)
}
