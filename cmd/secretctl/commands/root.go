package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	secretservice "github.com/dbus-secretservice/client-go"
)

var (
	plain         bool
	collection    string
	promptTimeout time.Duration
	windowID      string
	noPrompts     bool
)

func Execute() error {
	root := &cobra.Command{
		Use:           "secretctl",
		Short:         "Store and retrieve secrets via the Secret Service daemon",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().BoolVar(&plain, "plain", false, "transfer secrets unencrypted instead of negotiating DH")
	root.PersistentFlags().StringVar(&collection, "collection", "default", "collection alias to operate on")
	root.PersistentFlags().DurationVar(&promptTimeout, "prompt-timeout", 0, "give up on unlock prompts after this long (0 waits forever)")
	root.PersistentFlags().StringVar(&windowID, "window-id", "", "window id to parent prompt dialogs to")
	root.PersistentFlags().BoolVar(&noPrompts, "no-prompts", false, "dismiss prompts instead of showing them")

	root.AddCommand(storeCmd(), lookupCmd(), searchCmd(), deleteCmd(),
		lockCmd(), unlockCmd(), collectionsCmd())
	return root.Execute()
}

// connect opens the service with the global flags applied.
func connect(ctx context.Context) (*secretservice.Service, error) {
	encryption := secretservice.DH
	if plain {
		encryption = secretservice.Plain
	}

	opts := []secretservice.Option{}
	if promptTimeout > 0 {
		opts = append(opts, secretservice.WithPromptTimeout(promptTimeout))
	}
	if windowID != "" {
		opts = append(opts, secretservice.WithWindowID(windowID))
	}
	if noPrompts {
		opts = append(opts, secretservice.WithoutPrompting())
	}

	return secretservice.Connect(ctx, encryption, opts...)
}

// parseAttributes turns key=value arguments into an attribute map.
func parseAttributes(args []string) (map[string]string, error) {
	attributes := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("attribute %q is not key=value", arg)
		}
		attributes[key] = value
	}
	return attributes, nil
}
