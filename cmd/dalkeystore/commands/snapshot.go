package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"dalkeystore/internal/crypto"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect the saved snapshot",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Summarise the saved snapshot without printing key material",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassphrase()
			if err != nil {
				return err
			}
			snap, ok, err := appCtx.Snapshots.LoadSnapshot(pass)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "No snapshot at %s\n", cfg.SnapshotFile)
				return nil
			}
			defer snap.Wipe()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot v%d: %d contexts, %d slots\n", snap.Version, len(snap.Contexts), snap.SlotCount())
			for _, c := range snap.Contexts {
				ids := make([]int, 0, len(c.Slots))
				for _, s := range c.Slots {
					ids = append(ids, s.ID)
				}
				fmt.Fprintf(out, "  ticket-fp %s slots %v\n", crypto.TicketFingerprint(c.Ticket), ids)
			}
			return nil
		},
	})
	return cmd
}
