package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dalkeystore/internal/app"
	"dalkeystore/internal/logging"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

var (
	cfgFile string
	cfg     app.Config
	appCtx  *app.App
)

// Execute runs the CLI. main handles the process exit code.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if appCtx != nil {
		appCtx.Close()
	}
	if err != nil {
		logging.Errorf("%v", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dalkeystore",
		Version:       Version,
		Short:         "Bounded registry of client contexts and wrapped-key slots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.LoadConfig(cmd, cfgFile)
			if err != nil {
				return err
			}
			cfg = c
			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: search for dalkeystore.yaml)")
	pf.String("home", "", "state dir (default ~/.dalkeystore)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("lock-memory", false, "keep key buffers in mlock'd memory")
	pf.Int("max-key-memory", 0, "byte budget for key buffers (0 = unlimited)")
	pf.Bool("duplicate-tickets", false, "allow several contexts to share a ticket")
	pf.String("snapshot", "", "snapshot file (default <home>/keystore.snap)")
	pf.StringP("passphrase", "p", "", "passphrase protecting the snapshot")

	root.AddCommand(shellCmd(), ticketCmd(), configCmd(), snapshotCmd(), versionCmd())
	return root
}

// readPassphrase returns the configured passphrase or prompts on the
// terminal for one.
func readPassphrase() (string, error) {
	if cfg.Passphrase != "" {
		return cfg.Passphrase, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("passphrase required (-p or DALKEYSTORE_PASSPHRASE)")
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", fmt.Errorf("passphrase required")
	}
	return string(b), nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// No config or registry needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dalkeystore", Version)
		},
	}
}
