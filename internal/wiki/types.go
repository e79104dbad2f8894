package wiki

const (
	// MaxSentences is the upper bound on the number of sentences kept
	// from a page summary.
	MaxSentences = 5

	// MaxLinks is the upper bound on the number of related links
	// returned for a page.
	MaxLinks = 10
)

// SummaryResult is the outcome of a successful topic lookup.
type SummaryResult struct {
	// Title is the resolved page title, which may differ from the
	// requested topic after redirects or search suggestions.
	Title string

	// Summary holds at most MaxSentences leading sentences of the page
	// introduction.
	Summary string

	// Links holds at most MaxLinks outbound article links in the order
	// the service returned them.
	Links []string
}

// Page is a resolved encyclopedia page as reported by the service.
type Page struct {
	// PageID is the service's numeric page id. Zero for missing pages.
	PageID int64

	// Title is the canonical title after normalization and redirects.
	Title string

	// Extract is the plain-text introduction of the page.
	Extract string

	// Missing is set when no page exists under the title.
	Missing bool

	// Disambiguation is set when the page is a disambiguation page.
	Disambiguation bool
}

// SearchResult is the outcome of a full-text title search.
type SearchResult struct {
	// Titles are the matching page titles, best match first.
	Titles []string

	// Suggestion is the service's spelling suggestion for the query,
	// if any.
	Suggestion string
}

// firstN returns at most n leading elements of items. The returned slice
// never aliases items.
func firstN[T any](items []T, n int) []T {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	if len(items) > n {
		items = items[:n]
	}

	out := make([]T, len(items))
	copy(out, items)

	return out
}
