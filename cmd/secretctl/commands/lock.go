package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// lock: lock the selected collection.
func lockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Lock the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ss.Close()

			c, err := ss.GetCollectionByAlias(cmd.Context(), collection)
			if err != nil {
				return err
			}
			if err := c.Lock(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("locked %s\n", c.Path())
			return nil
		},
	}
}

// unlock: unlock the selected collection, prompting if required.
func unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Unlock the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ss.Close()

			c, err := ss.GetCollectionByAlias(cmd.Context(), collection)
			if err != nil {
				return err
			}
			if err := c.Unlock(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("unlocked %s\n", c.Path())
			return nil
		},
	}
}
