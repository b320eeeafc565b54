package crypto

import (
	"crypto/rand"

	"dalkeystore/internal/domain"
)

// NewTicket returns a fresh random client ticket.
func NewTicket() (domain.Ticket, error) {
	var t domain.Ticket
	if _, err := rand.Read(t[:]); err != nil {
		return domain.Ticket{}, err
	}
	return t, nil
}
