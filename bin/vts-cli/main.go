package main

import (
	"fmt"
	"os"

	"github.com/glowlabs-org/vts/bin/vts-cli/commands"
)

func main() {
	if err := commands.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
