// Package store provides file-based persistence for keystore snapshots.
//
// A snapshot is serialised as JSON, compressed with zstd and sealed with
// ChaCha20-Poly1305 under a scrypt-derived key. Files are replaced
// atomically via a temp file and rename. Intermediate plaintext buffers are
// wiped once the sealed form exists. All methods are concurrency-safe via
// internal locking.
package store
