package main

import (
	"os"

	"github.com/dbus-secretservice/client-go/cmd/secretctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
