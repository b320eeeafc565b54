// Package crypto exposes the small set of primitives the keystore needs.
//
// Contents
//
//   - Random client ticket generation (NewTicket)
//   - Short fingerprints for display/logging (Fingerprint, TicketFingerprint)
//   - Operator-facing key encodings (DecodeKey)
//
// # Notes
//
// Wrapping and unwrapping of key material happens outside this module; the
// keystore only stores wrapped bytes. Scrubbing lives in internal/util/memzero.
package crypto
