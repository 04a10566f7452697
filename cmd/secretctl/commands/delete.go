package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	secretservice "github.com/dbus-secretservice/client-go"
)

// delete <key=value>...: delete every item matching the attributes.
func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key=value>...",
		Short: "Delete every item matching the attributes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attributes, err := parseAttributes(args)
			if err != nil {
				return err
			}

			ss, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ss.Close()

			result, err := ss.SearchItems(cmd.Context(), attributes)
			if err != nil {
				return err
			}

			items := append([]*secretservice.Item{}, result.Unlocked...)
			items = append(items, result.Locked...)
			if len(items) == 0 {
				return secretservice.ErrNoResult
			}

			for _, item := range items {
				if err := item.Delete(cmd.Context()); err != nil {
					return err
				}
				fmt.Printf("deleted %s\n", item.Path())
			}
			return nil
		},
	}
}
