package main

import (
	"os"

	"github.com/sitebrand/cmd/sitectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
