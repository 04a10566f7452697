package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	secretservice "github.com/dbus-secretservice/client-go"
)

// lookup <key=value>...: print the secret of the first item matching
// the attributes, unlocking it when necessary.
func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <key=value>...",
		Short: "Print the secret of the first matching item",
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

			var item *secretservice.Item
			switch {
			case len(result.Unlocked) > 0:
				item = result.Unlocked[0]
			case len(result.Locked) > 0:
				item = result.Locked[0]
				if err := item.Unlock(cmd.Context()); err != nil {
					return err
				}
			default:
				return secretservice.ErrNoResult
			}

			secret, err := item.GetSecret(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", secret)
			return nil
		},
	}
}
