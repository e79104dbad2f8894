package commands

import (
	"github.com/roasbeef/wiki-mcp/internal/mcp"
	"github.com/spf13/cobra"
)

var instructionsCmd = &cobra.Command{
	Use:   "instructions <prompt-name>",
	Short: "Print the instructions registered under a prompt name",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstructions,
}

func runInstructions(cmd *cobra.Command, args []string) error {
	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	text, isError := mcp.RenderInstructions(
		args[0], provider.Get(args[0]), provider.Keys(),
	)

	return printToolText(cmd.OutOrStdout(), text, isError)
}
