package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"dalkeystore/internal/domain"
	"dalkeystore/internal/keystore"
)

// ErrNoSnapshot is returned by Restore when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot saved")

// App is one running keystore: the registry plus the collaborators the
// operator surfaces need.
type App struct {
	Config    Config
	Log       *log.Logger
	Registry  *keystore.Registry
	Snapshots domain.SnapshotStore

	// KeyMemory is the allocator backing slot buffers.
	KeyMemory domain.Allocator
}

// Save exports the registry and persists it under passphrase.
func (a *App) Save(passphrase string) (contexts, slots int, err error) {
	snap := a.Registry.Export()
	defer snap.Wipe()
	if err := a.Snapshots.SaveSnapshot(passphrase, snap); err != nil {
		return 0, 0, fmt.Errorf("save snapshot: %w", err)
	}
	a.Log.Info("snapshot saved", "contexts", len(snap.Contexts), "slots", snap.SlotCount())
	return len(snap.Contexts), snap.SlotCount(), nil
}

// Restore loads the persisted snapshot into the registry. With replace set,
// the current contents are swapped out only once the whole snapshot has been
// accepted; otherwise the registry must be empty.
func (a *App) Restore(passphrase string, replace bool) (contexts, slots int, err error) {
	snap, ok, err := a.Snapshots.LoadSnapshot(passphrase)
	if err != nil {
		return 0, 0, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return 0, 0, ErrNoSnapshot
	}
	defer snap.Wipe()

	if replace {
		err = a.Registry.Replace(snap)
	} else {
		err = a.Registry.Import(snap)
	}
	if err != nil {
		a.Log.Warn("snapshot rejected", "err", err)
		return 0, 0, err
	}
	a.Log.Info("snapshot restored", "contexts", len(snap.Contexts), "slots", snap.SlotCount())
	return len(snap.Contexts), snap.SlotCount(), nil
}

// Close tears down the registry, scrubbing all key material.
func (a *App) Close() {
	a.Registry.TeardownAll()
}
