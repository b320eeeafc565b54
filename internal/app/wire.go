package app

import (
	"dalkeystore/internal/keystore"
	"dalkeystore/internal/logging"
	"dalkeystore/internal/secmem"
	"dalkeystore/internal/store"
)

// New constructs the dependency graph from cfg.
func New(cfg Config) (*App, error) {
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	// Key buffer allocator (heap or mlock'd pages, optionally budgeted)
	alloc, err := secmem.New(cfg.LockMemory, cfg.MaxKeyMemory)
	if err != nil {
		return nil, err
	}

	opts := []keystore.Option{
		keystore.WithAllocator(alloc),
		keystore.WithLogger(logging.L),
	}
	if cfg.DuplicateTickets {
		opts = append(opts, keystore.WithDuplicateTickets())
	}

	snaps := store.NewSnapshotFileStoreIn(cfg.Home)
	if cfg.SnapshotFile != "" {
		snaps = store.NewSnapshotFileStore(cfg.SnapshotFile)
	}
	logging.Debugf("snapshot file %s, locked memory %t, key memory budget %d",
		snaps.Path(), cfg.LockMemory, cfg.MaxKeyMemory)

	return &App{
		Config:    cfg,
		Log:       logging.L,
		Registry:  keystore.New(opts...),
		Snapshots: snaps,
		KeyMemory: alloc,
	}, nil
}
