package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// search <key=value>...: list the paths and labels of matching items.
func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <key=value>...",
		Short: "List items matching the attributes",
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

			for _, item := range result.Unlocked {
				label, err := item.Label(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", item.Path(), label)
			}
			for _, item := range result.Locked {
				fmt.Printf("%s\t(locked)\n", item.Path())
			}
			return nil
		},
	}
}
