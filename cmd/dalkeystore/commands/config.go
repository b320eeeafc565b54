package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dalkeystore/internal/app"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	var system, force bool
	initc := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to dalkeystore.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.ConfigPath(system)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", path)
			}
			if err := app.WriteConfigFile(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initc.Flags().BoolVar(&system, "system", false, "write the system-wide file instead of the user file")
	initc.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initc)
	return cmd
}
