package store_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"dalkeystore/internal/domain"
	"dalkeystore/internal/store"
)

func newStore(t *testing.T) *store.SnapshotFileStore {
	t.Helper()
	s := store.NewSnapshotFileStoreIn(t.TempDir())
	s.UseTestParams()
	return s
}

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Version: domain.SnapshotVersion,
		Contexts: []domain.ContextRecord{{
			Ticket: domain.Ticket{1, 2, 3, 4, 5, 6, 7, 8},
			Slots: []domain.SlotRecord{
				{ID: 0, WrappedKey: bytes.Repeat([]byte{0x42}, 64)},
				{ID: 5, WrappedKey: []byte{1}},
			},
		}},
	}
}

func TestSnapshot_SaveLoad_OK(t *testing.T) {
	var ss domain.SnapshotStore = newStore(t)

	if err := ss.SaveSnapshot("pass", sampleSnapshot()); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	got, ok, err := ss.LoadSnapshot("pass")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !ok {
		t.Fatal("snapshot missing after save")
	}
	want := sampleSnapshot()
	if len(got.Contexts) != 1 || got.Contexts[0].Ticket != want.Contexts[0].Ticket {
		t.Fatalf("ticket mismatch after load: %+v", got.Contexts)
	}
	if len(got.Contexts[0].Slots) != 2 || got.Contexts[0].Slots[1].ID != 5 {
		t.Fatalf("slot mismatch after load: %+v", got.Contexts[0].Slots)
	}
	if !bytes.Equal(got.Contexts[0].Slots[0].WrappedKey, want.Contexts[0].Slots[0].WrappedKey) {
		t.Fatal("wrapped key mismatch after load")
	}
}

func TestSnapshot_Missing(t *testing.T) {
	s := newStore(t)
	_, ok, err := s.LoadSnapshot("pass")
	if err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}
}

func TestSnapshot_WrongPassphrase_Fails(t *testing.T) {
	s := newStore(t)
	if err := s.SaveSnapshot("correct", sampleSnapshot()); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if _, _, err := s.LoadSnapshot("wrong"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestSnapshot_EmptyPassphrase_Fails(t *testing.T) {
	s := newStore(t)
	if err := s.SaveSnapshot("", sampleSnapshot()); err == nil {
		t.Fatal("expected error with empty passphrase")
	}
}

func TestSnapshot_FileIsSealed(t *testing.T) {
	s := newStore(t)
	if err := s.SaveSnapshot("pass", sampleSnapshot()); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	b, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(b, bytes.Repeat([]byte{0x42}, 16)) {
		t.Fatal("wrapped key visible in sealed file")
	}
	fi, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", fi.Mode().Perm())
	}
	leftovers, _ := filepath.Glob(s.Path() + ".tmp-*")
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestSnapshot_Tampered_Fails(t *testing.T) {
	s := newStore(t)
	if err := s.SaveSnapshot("pass", sampleSnapshot()); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if err := os.WriteFile(s.Path(), []byte(`{"v":9,"codec":"zstd"}`), 0o600); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, _, err := s.LoadSnapshot("pass"); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}
