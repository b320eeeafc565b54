package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dalkeystore/internal/app"
	"dalkeystore/internal/console"
	"dalkeystore/internal/logging"
)

func shellCmd() *cobra.Command {
	var restore bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Drive an in-process keystore with line commands read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := console.New(appCtx, cmd.OutOrStdout(), readPassphrase)
			if term.IsTerminal(int(os.Stdin.Fd())) {
				c.Prompt = "keystore> "
			}
			if restore {
				_, err := c.Exec("load")
				switch {
				case errors.Is(err, app.ErrNoSnapshot):
					logging.Warnf("no snapshot at %s, starting with an empty registry", cfg.SnapshotFile)
				case err != nil:
					return err
				}
			}
			return c.Run(cmd.InOrStdin())
		},
	}
	cmd.Flags().BoolVar(&restore, "restore", false, "load the saved snapshot before reading commands")
	return cmd
}
