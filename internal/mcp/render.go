package mcp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/wiki-mcp/internal/wiki"
)

// maxRenderedCandidates caps the options listed for an ambiguous topic.
const maxRenderedCandidates = 10

// RenderSummary turns a fetch result into the text handed back to the
// host. Ambiguous and unknown topics are ordinary answers; anything else
// that failed is flagged as an error.
func RenderSummary(topic string,
	result fn.Result[wiki.SummaryResult]) (string, bool) {

	res, err := result.Unpack()
	if err != nil {
		return renderFetchFailure(topic, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary for '%s':\n", res.Title)
	if res.Title != strings.TrimSpace(topic) {
		fmt.Fprintf(&b, "(resolved from '%s')\n", topic)
	}
	fmt.Fprintf(&b, "\n%s\n\nLinks:\n", res.Summary)
	for _, link := range res.Links {
		fmt.Fprintf(&b, "- %s\n", link)
	}

	return b.String(), false
}

// renderFetchFailure renders a lookup failure.
func renderFetchFailure(topic string, err error) (string, bool) {
	var disErr *wiki.DisambiguationError
	switch {
	case errors.Is(err, wiki.ErrNotFound):
		return fmt.Sprintf("No Wikipedia page found for topic '%s'.",
			topic), false

	case errors.As(err, &disErr):
		options := disErr.Candidates
		if len(options) > maxRenderedCandidates {
			options = options[:maxRenderedCandidates]
		}

		return fmt.Sprintf("Topic '%s' is ambiguous. Possible "+
			"options:\n%s", topic, strings.Join(options, "\n")), false

	default:
		return fmt.Sprintf("Error fetching Wikipedia data: %v", err),
			true
	}
}

// RenderInstructions turns an instruction lookup into the text handed back
// to the host.
func RenderInstructions(name string, result fn.Result[string],
	keys []string) (string, bool) {

	body, err := result.Unpack()
	if err != nil {
		return fmt.Sprintf("No instructions found for prompt '%s'. "+
			"Available prompts: %s", name, joinKeys(keys)), true
	}

	return body, false
}

// joinKeys lists instruction keys for humans.
func joinKeys(keys []string) string {
	if len(keys) == 0 {
		return "(none)"
	}

	return strings.Join(keys, ", ")
}
