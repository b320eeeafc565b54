package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"dalkeystore/internal/crypto"
)

func ticketCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Generate random client tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := 0; i < n; i++ {
				t, err := crypto.NewTicket()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 1, "number of tickets")
	return cmd
}
