package console_test

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dalkeystore/internal/app"
	"dalkeystore/internal/console"
)

var handleRE = regexp.MustCompile(`context ([0-9a-f-]{36})`)

func newConsole(t *testing.T) (*console.Console, *app.App, *bytes.Buffer) {
	t.Helper()
	home := t.TempDir()
	a, err := app.New(app.Config{
		Home:         home,
		LogLevel:     "error",
		SnapshotFile: filepath.Join(home, "keystore.snap"),
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	var out bytes.Buffer
	pass := func() (string, error) { return "Console-pass1", nil }
	return console.New(a, &out, pass), a, &out
}

func exec(t *testing.T, c *console.Console, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	_, err := c.Exec(line)
	require.NoError(t, err, line)
	return out.String()
}

func TestConsole_ContextAndSlotLifecycle(t *testing.T) {
	c, a, out := newConsole(t)

	got := exec(t, c, out, "ctx-alloc 0102030405060708")
	m := handleRE.FindStringSubmatch(got)
	require.Len(t, m, 2, got)
	h := m[1]

	assert.Equal(t, "slot 0\n", exec(t, c, out, "slot-alloc "+h))
	assert.Equal(t, "slot 1\n", exec(t, c, out, "slot-alloc "+h))
	assert.Equal(t, "slot 2\n", exec(t, c, out, "slot-alloc "+h))
	exec(t, c, out, "slot-free "+h+" 1")
	assert.Equal(t, "slot 1\n", exec(t, c, out, "slot-alloc "+h))

	assert.Equal(t, "slot 0 size 3\n", exec(t, c, out, "slot-set "+h+" 0 aabbcc"))
	assert.Equal(t, "aabbcc\n", exec(t, c, out, "slot-get "+h+" 0"))
	assert.Equal(t, "slot 0 size 3\n", exec(t, c, out, "slot-find "+h+" 0"))
	assert.Equal(t, "not found\n", exec(t, c, out, "slot-find "+h+" 9"))

	assert.Contains(t, exec(t, c, out, "ctx-find 0102030405060708"), h)
	assert.Equal(t, "1/10 contexts\n", exec(t, c, out, "count"))
	assert.Contains(t, exec(t, c, out, "dump "+h), "[0] wrapped key size=3")
	assert.Contains(t, exec(t, c, out, "ctx-list"), "slots [0 1 2]")

	exec(t, c, out, "ctx-free-ticket 0102030405060708")
	assert.Equal(t, "not found\n", exec(t, c, out, "ctx-find 0102030405060708"))
	assert.Zero(t, a.Registry.Count())
}

func TestConsole_Errors(t *testing.T) {
	c, _, _ := newConsole(t)

	_, err := c.Exec("bogus")
	assert.ErrorContains(t, err, "unknown command")

	_, err = c.Exec("slot-free onlyone")
	assert.ErrorContains(t, err, "usage: slot-free <handle> <id>")

	_, err = c.Exec("ctx-alloc 0102")
	assert.Error(t, err)

	_, err = c.Exec("ctx-free 00000000-0000-0000-0000-000000000000")
	assert.ErrorContains(t, err, "not found")

	quit, err := c.Exec("quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestConsole_RunScript(t *testing.T) {
	c, a, out := newConsole(t)

	script := strings.Join([]string{
		"# comment",
		"",
		"ctx-alloc 1111111111111111",
		"ctx-alloc 1111111111111111",
		"ctx-alloc 2222222222222222",
		"count",
		"save",
		"teardown",
		"count",
		"load",
		"count",
		"quit",
		"count",
	}, "\n")
	require.NoError(t, c.Run(strings.NewReader(script)))

	got := out.String()
	assert.Contains(t, got, "error: keystore: invalid argument: client ticket already registered")
	assert.Contains(t, got, "0/10 contexts")
	assert.Contains(t, got, "saved 2 contexts, 0 slots")
	assert.Contains(t, got, "loaded 2 contexts, 0 slots")
	assert.Equal(t, 2, strings.Count(got, "2/10 contexts"), "commands after quit must not run")
	assert.Equal(t, 2, a.Registry.Count())
}

func TestConsole_Help(t *testing.T) {
	c, _, out := newConsole(t)
	got := exec(t, c, out, "help")
	assert.Contains(t, got, "slot-set <handle> <id> <key>")
	assert.Contains(t, got, "quit")
}

func TestConsole_CountShowsKeyMemoryBudget(t *testing.T) {
	home := t.TempDir()
	a, err := app.New(app.Config{Home: home, LogLevel: "error", MaxKeyMemory: 1024})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	var out bytes.Buffer
	c := console.New(a, &out, nil)

	m := handleRE.FindStringSubmatch(exec(t, c, &out, "ctx-alloc 0102030405060708"))
	require.Len(t, m, 2)
	exec(t, c, &out, "slot-alloc "+m[1])

	assert.Equal(t, "1/10 contexts\n256/1024 bytes of key memory\n", exec(t, c, &out, "count"))
}
