package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/roasbeef/wiki-mcp/internal/mcp"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <topic>",
	Short: "Fetch a Wikipedia summary for a topic",
	Long: `Fetch a Wikipedia summary for a topic and print it exactly as the
fetch_wikipedia_summary tool would return it.

Multiple arguments are joined with spaces into one topic.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	result := newFetcher(cfg).Fetch(cmd.Context(), topic)

	text, isError := mcp.RenderSummary(topic, result)

	return printToolText(cmd.OutOrStdout(), text, isError)
}

// printToolText prints a rendered tool answer. Answers flagged as errors
// also fail the command.
func printToolText(w io.Writer, text string, isError bool) error {
	if isError {
		return fmt.Errorf("%s", text)
	}

	_, err := fmt.Fprintln(w, strings.TrimRight(text, "\n"))
	return err
}
