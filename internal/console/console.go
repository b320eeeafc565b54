package console

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"dalkeystore/internal/app"
	"dalkeystore/internal/crypto"
	"dalkeystore/internal/domain"
	"dalkeystore/internal/keystore"
	"dalkeystore/internal/secmem"
	"dalkeystore/internal/util/memzero"
)

// PassphraseFunc supplies the snapshot passphrase when save or load runs.
type PassphraseFunc func() (string, error)

var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(c *Console, args []string) error
}

var commands = map[string]command{
	"ticket":          {"ticket", (*Console).ticket},
	"ctx-alloc":       {"ctx-alloc [ticket]", (*Console).ctxAlloc},
	"ctx-free":        {"ctx-free <handle>", (*Console).ctxFree},
	"ctx-free-ticket": {"ctx-free-ticket <ticket>", (*Console).ctxFreeTicket},
	"ctx-find":        {"ctx-find <ticket>", (*Console).ctxFind},
	"ctx-list":        {"ctx-list", (*Console).ctxList},
	"count":           {"count", (*Console).count},
	"slot-alloc":      {"slot-alloc <handle>", (*Console).slotAlloc},
	"slot-free":       {"slot-free <handle> <id>", (*Console).slotFree},
	"slot-find":       {"slot-find <handle> <id>", (*Console).slotFind},
	"slot-set":        {"slot-set <handle> <id> <key>", (*Console).slotSet},
	"slot-get":        {"slot-get <handle> <id>", (*Console).slotGet},
	"dump":            {"dump [handle]", (*Console).dump},
	"save":            {"save", (*Console).save},
	"load":            {"load", (*Console).load},
	"teardown":        {"teardown", (*Console).teardown},
}

// Console executes commands against an App and writes results to out.
type Console struct {
	app  *app.App
	out  io.Writer
	pass PassphraseFunc

	// Prompt, when non-empty, is written before each line is read.
	Prompt string
}

// New returns a console bound to a.
func New(a *app.App, out io.Writer, pass PassphraseFunc) *Console {
	return &Console{app: a, out: out, pass: pass}
}

// Run reads commands from in until EOF or quit. Command failures are
// reported on out and do not stop the loop.
func (c *Console) Run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		if c.Prompt != "" {
			fmt.Fprint(c.out, c.Prompt)
		}
		if !sc.Scan() {
			return sc.Err()
		}
		quit, err := c.Exec(sc.Text())
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Exec runs a single command line. Blank lines and lines starting with '#'
// are ignored.
func (c *Console) Exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}
	name, args := fields[0], fields[1:]
	switch name {
	case "quit", "exit":
		return true, nil
	case "help":
		c.help()
		return false, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	if err := cmd.run(c, args); err != nil {
		if errors.Is(err, errUsage) {
			return false, fmt.Errorf("usage: %s", cmd.usage)
		}
		return false, err
	}
	return false, nil
}

func (c *Console) help() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.out, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(c.out, "  help")
	fmt.Fprintln(c.out, "  quit")
}

func (c *Console) ticket(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	t, err := crypto.NewTicket()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, t)
	return nil
}

func (c *Console) ctxAlloc(args []string) error {
	var (
		t   domain.Ticket
		err error
	)
	switch len(args) {
	case 0:
		t, err = crypto.NewTicket()
	case 1:
		t, err = domain.ParseTicketHex(args[0])
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	ctx, err := c.app.Registry.AllocateContext(t.Slice())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "context %s ticket %s\n", ctx.Handle(), t)
	return nil
}

func (c *Console) ctxFree(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	ctx, err := c.context(args[0])
	if err != nil {
		return err
	}
	if err := c.app.Registry.FreeContext(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "freed %s\n", args[0])
	return nil
}

func (c *Console) ctxFreeTicket(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	raw, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("ticket: %w", err)
	}
	if err := c.app.Registry.FreeContextByTicket(raw); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "freed ticket %s\n", args[0])
	return nil
}

func (c *Console) ctxFind(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	raw, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("ticket: %w", err)
	}
	ctx, ok := c.app.Registry.FindContextByTicket(raw)
	if !ok {
		fmt.Fprintln(c.out, "not found")
		return nil
	}
	fmt.Fprintf(c.out, "context %s slots %d\n", ctx.Handle(), ctx.SlotCount())
	return nil
}

func (c *Console) ctxList(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	for _, ctx := range c.app.Registry.Contexts() {
		t, _ := ctx.Ticket()
		fmt.Fprintf(c.out, "%s ticket-fp %s slots %v\n", ctx.Handle(), crypto.TicketFingerprint(t), ctx.SlotIDs())
	}
	return nil
}

func (c *Console) count(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	fmt.Fprintf(c.out, "%d/%d contexts\n", c.app.Registry.Count(), domain.ClientsMax)
	if l, ok := c.app.KeyMemory.(*secmem.Limit); ok {
		fmt.Fprintf(c.out, "%d/%d bytes of key memory\n", l.InUse(), c.app.Config.MaxKeyMemory)
	}
	return nil
}

func (c *Console) slotAlloc(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	ctx, err := c.context(args[0])
	if err != nil {
		return err
	}
	s, err := ctx.AllocateSlot()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "slot %d\n", s.ID())
	return nil
}

func (c *Console) slotFree(args []string) error {
	ctx, id, err := c.contextAndID(args, 2)
	if err != nil {
		return err
	}
	if err := ctx.FreeSlot(id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "freed slot %d\n", id)
	return nil
}

func (c *Console) slotFind(args []string) error {
	ctx, id, err := c.contextAndID(args, 2)
	if err != nil {
		return err
	}
	s, ok := ctx.FindSlot(id)
	if !ok {
		fmt.Fprintln(c.out, "not found")
		return nil
	}
	fmt.Fprintf(c.out, "slot %d size %d\n", s.ID(), s.Size())
	return nil
}

func (c *Console) slotSet(args []string) error {
	ctx, id, err := c.contextAndID(args, 3)
	if err != nil {
		return err
	}
	key, err := crypto.DecodeKey(args[2])
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	defer memzero.Zero(key)
	s, ok := ctx.FindSlot(id)
	if !ok {
		return fmt.Errorf("%w: slot %d", keystore.ErrNotFound, id)
	}
	if err := s.SetWrappedKey(key); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "slot %d size %d\n", id, s.Size())
	return nil
}

func (c *Console) slotGet(args []string) error {
	ctx, id, err := c.contextAndID(args, 2)
	if err != nil {
		return err
	}
	s, ok := ctx.FindSlot(id)
	if !ok {
		return fmt.Errorf("%w: slot %d", keystore.ErrNotFound, id)
	}
	key, err := s.WrappedKey()
	if err != nil {
		return err
	}
	defer memzero.Zero(key)
	fmt.Fprintln(c.out, hex.EncodeToString(key))
	return nil
}

func (c *Console) dump(args []string) error {
	switch len(args) {
	case 0:
		c.app.Registry.DumpAll(c.out)
	case 1:
		ctx, err := c.context(args[0])
		if err != nil {
			return err
		}
		keystore.Dump(c.out, ctx)
	default:
		return errUsage
	}
	return nil
}

func (c *Console) save(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	pass, err := c.passphrase()
	if err != nil {
		return err
	}
	n, slots, err := c.app.Save(pass)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %d contexts, %d slots\n", n, slots)
	return nil
}

func (c *Console) load(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	pass, err := c.passphrase()
	if err != nil {
		return err
	}
	n, slots, err := c.app.Restore(pass, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "loaded %d contexts, %d slots\n", n, slots)
	return nil
}

func (c *Console) teardown(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	c.app.Registry.TeardownAll()
	fmt.Fprintln(c.out, "registry empty")
	return nil
}

func (c *Console) passphrase() (string, error) {
	if c.pass == nil {
		return "", errors.New("no passphrase source configured")
	}
	return c.pass()
}

func (c *Console) context(handle string) (*keystore.Context, error) {
	ctx, ok := c.app.Registry.FindContext(handle)
	if !ok {
		return nil, fmt.Errorf("%w: context %s", keystore.ErrNotFound, handle)
	}
	return ctx, nil
}

func (c *Console) contextAndID(args []string, want int) (*keystore.Context, int, error) {
	if len(args) != want {
		return nil, 0, errUsage
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: slot id %q", keystore.ErrInvalidArgument, args[1])
	}
	ctx, err := c.context(args[0])
	if err != nil {
		return nil, 0, err
	}
	return ctx, id, nil
}
