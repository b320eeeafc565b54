package interfaces

import domaintypes "dalkeystore/internal/domain/types"

// SnapshotStore persists registry snapshots under a passphrase.
type SnapshotStore interface {
	SaveSnapshot(passphrase string, snapshot domaintypes.Snapshot) error
	LoadSnapshot(passphrase string) (domaintypes.Snapshot, bool, error)
}
