package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// store <label> <key=value>...: read a secret from stdin or --secret
// and store it under the given label and attributes.
func storeCmd() *cobra.Command {
	var (
		secret      string
		replace     bool
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "store <label> <key=value>...",
		Short: "Store a secret in the collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attributes, err := parseAttributes(args[1:])
			if err != nil {
				return err
			}

			value := []byte(secret)
			if secret == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read secret from stdin: %w", err)
				}
				value = bytes.TrimRight(data, "\n")
			}

			ss, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ss.Close()

			c, err := ss.GetCollectionByAlias(cmd.Context(), collection)
			if err != nil {
				return err
			}

			item, err := c.CreateItem(cmd.Context(), args[0], attributes, value, replace, contentType)
			if err != nil {
				return err
			}
			fmt.Println(item.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "secret value (read from stdin when omitted)")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace an existing item with the same attributes")
	cmd.Flags().StringVar(&contentType, "content-type", "text/plain", "MIME content type of the secret")
	return cmd
}
