package main

import (
	"fmt"
	"os"

	"github.com/roasbeef/wiki-mcp/cmd/wiki-mcp/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
