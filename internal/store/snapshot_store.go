package store

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"dalkeystore/internal/domain"
	"dalkeystore/internal/util/memzero"
)

// DefaultSnapshotFile is the file name used under the home directory.
const DefaultSnapshotFile = "keystore.snap"

// SnapshotFileStore keeps one encrypted registry snapshot on disk.
type SnapshotFileStore struct {
	path string
	mu   sync.Mutex

	n, r, p int
}

// NewSnapshotFileStore returns a store that reads and writes path.
func NewSnapshotFileStore(path string) *SnapshotFileStore {
	n, r, p := scryptParamsDefault()
	return &SnapshotFileStore{path: path, n: n, r: r, p: p}
}

// NewSnapshotFileStoreIn returns a store for DefaultSnapshotFile under dir.
func NewSnapshotFileStoreIn(dir string) *SnapshotFileStore {
	return NewSnapshotFileStore(filepath.Join(dir, DefaultSnapshotFile))
}

// Path returns the snapshot file location.
func (s *SnapshotFileStore) Path() string { return s.path }

// SaveSnapshot seals snap under passphrase and atomically replaces the file.
func (s *SnapshotFileStore) SaveSnapshot(passphrase string, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	b, err := seal(passphrase, raw, s.n, s.r, s.p)
	if err != nil {
		return err
	}
	return writeFile(s.path, b, 0o600)
}

// LoadSnapshot opens the file with passphrase. ok is false when no snapshot
// has been saved yet.
func (s *SnapshotFileStore) LoadSnapshot(passphrase string) (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	if b == nil { // file didn't exist
		return domain.Snapshot{}, false, nil
	}
	raw, err := open(passphrase, b)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	defer memzero.Zero(raw)

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Compile-time assertion that SnapshotFileStore implements domain.SnapshotStore.
var _ domain.SnapshotStore = (*SnapshotFileStore)(nil)
