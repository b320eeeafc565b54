package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"dalkeystore/internal/domain"
)

// Fingerprint returns a short hex fingerprint of b.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:10])
}

// TicketFingerprint is the form in which tickets appear in logs.
func TicketFingerprint(t domain.Ticket) domain.Fingerprint {
	return domain.Fingerprint(Fingerprint(t.Slice()))
}
