package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dalkeystore/internal/app"
	"dalkeystore/internal/keystore"
)

func testConfig(t *testing.T) app.Config {
	t.Helper()
	home := t.TempDir()
	return app.Config{
		Home:         home,
		LogLevel:     "error",
		SnapshotFile: filepath.Join(home, "keystore.snap"),
	}
}

func TestNew_BuildsRegistry(t *testing.T) {
	a, err := app.New(testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	c, err := a.Registry.AllocateContext([]byte("ticket01"))
	require.NoError(t, err)
	_, err = a.Registry.AllocateContext([]byte("ticket01"))
	assert.ErrorIs(t, err, keystore.ErrTicketInUse)

	a.Close()
	assert.True(t, c.Released())
}

func TestNew_DuplicateTickets(t *testing.T) {
	cfg := testConfig(t)
	cfg.DuplicateTickets = true
	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Registry.AllocateContext([]byte("ticket01"))
	require.NoError(t, err)
	_, err = a.Registry.AllocateContext([]byte("ticket01"))
	require.NoError(t, err)
}

func TestNew_BadLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogLevel = "loud"
	_, err := app.New(cfg)
	assert.Error(t, err)
}

func TestNew_KeyMemoryBudget(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxKeyMemory = 512 // two slot buffers
	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close()

	c, err := a.Registry.AllocateContext([]byte("ticket01"))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = c.AllocateSlot()
		require.NoError(t, err)
	}
	_, err = c.AllocateSlot()
	assert.ErrorIs(t, err, keystore.ErrOutOfMemory)
}

func TestSaveRestore(t *testing.T) {
	a, err := app.New(testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	_, _, err = a.Restore("Secret-pass1", false)
	require.ErrorIs(t, err, app.ErrNoSnapshot)

	c, err := a.Registry.AllocateContext([]byte("ticket01"))
	require.NoError(t, err)
	s, err := c.AllocateSlot()
	require.NoError(t, err)
	require.NoError(t, s.SetWrappedKey([]byte{7, 7, 7}))

	nc, ns, err := a.Save("Secret-pass1")
	require.NoError(t, err)
	assert.Equal(t, 1, nc)
	assert.Equal(t, 1, ns)

	// Restoring over a populated registry needs replace.
	_, _, err = a.Restore("Secret-pass1", false)
	assert.ErrorIs(t, err, keystore.ErrInvalidArgument)

	nc, ns, err = a.Restore("Secret-pass1", true)
	require.NoError(t, err)
	assert.Equal(t, 1, nc)
	assert.Equal(t, 1, ns)
	assert.True(t, c.Released(), "replace must tear down the old context")

	got, ok := a.Registry.FindContextByTicket([]byte("ticket01"))
	require.True(t, ok)
	slot, ok := got.FindSlot(0)
	require.True(t, ok)
	key, err := slot.WrappedKey()
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 7, 7}, key)

	_, _, err = a.Restore("wrong", true)
	assert.Error(t, err)
}

func TestRestore_RejectedSnapshotKeepsRegistry(t *testing.T) {
	cfg := testConfig(t)
	cfg.DuplicateTickets = true
	lax, err := app.New(cfg)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = lax.Registry.AllocateContext([]byte("ticket01"))
		require.NoError(t, err)
	}
	_, _, err = lax.Save("Secret-pass1")
	require.NoError(t, err)
	lax.Close()

	cfg.DuplicateTickets = false
	strict, err := app.New(cfg)
	require.NoError(t, err)
	defer strict.Close()

	live, err := strict.Registry.AllocateContext([]byte("ticket02"))
	require.NoError(t, err)
	s, err := live.AllocateSlot()
	require.NoError(t, err)
	require.NoError(t, s.SetWrappedKey([]byte{4, 2}))

	_, _, err = strict.Restore("Secret-pass1", true)
	require.ErrorIs(t, err, keystore.ErrTicketInUse)

	assert.Equal(t, 1, strict.Registry.Count())
	assert.False(t, live.Released())
	key, err := s.WrappedKey()
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 2}, key)
}

func TestLoadConfig_DefaultsEnvAndFlags(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Setenv("DALKEYSTORE_LOG_LEVEL", "debug")
	t.Setenv("DALKEYSTORE_DUPLICATE_TICKETS", "true")

	cmd := &cobra.Command{}
	cmd.Flags().String("home", "", "")
	require.NoError(t, cmd.Flags().Set("home", filepath.Join(tmp, "state")))

	got, err := app.LoadConfig(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "state"), got.Home)
	assert.Equal(t, "debug", got.LogLevel)
	assert.True(t, got.DuplicateTickets)
	assert.False(t, got.LockMemory)
	assert.Equal(t, filepath.Join(tmp, "state", "keystore.snap"), got.SnapshotFile)
}

func TestLoadConfig_File(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	path := filepath.Join(tmp, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\nmax_key_memory: 4096\nsnapshot_file: /tmp/x.snap\n"), 0o600))

	got, err := app.LoadConfig(&cobra.Command{}, path)
	require.NoError(t, err)
	assert.Equal(t, "warn", got.LogLevel)
	assert.Equal(t, 4096, got.MaxKeyMemory)
	assert.Equal(t, "/tmp/x.snap", got.SnapshotFile)

	_, err = app.LoadConfig(&cobra.Command{}, filepath.Join(tmp, "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteConfigFile_OmitsPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dalkeystore.yaml")
	cfg := app.Config{Home: "/h", LogLevel: "info", Passphrase: "do-not-store"}

	require.NoError(t, app.WriteConfigFile(cfg, path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "log_level: info")
	assert.NotContains(t, string(b), "do-not-store")

	got, err := app.LoadConfig(&cobra.Command{}, path)
	require.NoError(t, err)
	assert.Equal(t, "/h", got.Home)
}

func TestNew_SnapshotFileDefaultsUnderHome(t *testing.T) {
	cfg := testConfig(t)
	cfg.SnapshotFile = ""
	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close()

	_, _, err = a.Save("Secret-pass1")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Home, "keystore.snap"))
	assert.NoError(t, err)
}
