package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// collections: list every collection with its lock state.
func collectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List all collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ss.Close()

			collections, err := ss.Collections(cmd.Context())
			if err != nil {
				return err
			}

			for _, c := range collections {
				label, err := c.Label(cmd.Context())
				if err != nil {
					return err
				}
				locked, err := c.Locked(cmd.Context())
				if err != nil {
					return err
				}
				state := "unlocked"
				if locked {
					state = "locked"
				}
				fmt.Printf("%s\t%s\t%s\n", c.Path(), label, state)
			}
			return nil
		},
	}
}
