package main

import (
	"os"

	"dalkeystore/cmd/dalkeystore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
