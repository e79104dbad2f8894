package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// maxDisambiguationLinks bounds the fallback link listing used when a
// disambiguation page renders no usable list items.
const maxDisambiguationLinks = 100

// Config holds configuration for the summary fetcher.
type Config struct {
	// MaxSentences is the number of leading sentences kept from the page
	// introduction. Values outside 1..MaxSentences fall back to
	// MaxSentences.
	MaxSentences int

	// MaxLinks is the number of related links returned. Values outside
	// 1..MaxLinks fall back to MaxLinks.
	MaxLinks int

	// AutoSuggest enables a full-text search when the topic is not an
	// exact page title.
	AutoSuggest bool
}

// DefaultConfig returns a Config with the contract bounds and auto-suggest
// enabled.
func DefaultConfig() Config {
	return Config{
		MaxSentences: MaxSentences,
		MaxLinks:     MaxLinks,
		AutoSuggest:  true,
	}
}

// Fetcher resolves topics against the encyclopedia and builds bounded
// summaries. It keeps no state between calls and is safe for concurrent
// use.
type Fetcher struct {
	src PageSource
	cfg Config
	log *slog.Logger
}

// NewFetcher creates a new summary fetcher on top of the given page
// source.
func NewFetcher(src PageSource, cfg Config, log *slog.Logger) *Fetcher {
	if cfg.MaxSentences <= 0 || cfg.MaxSentences > MaxSentences {
		cfg.MaxSentences = MaxSentences
	}
	if cfg.MaxLinks <= 0 || cfg.MaxLinks > MaxLinks {
		cfg.MaxLinks = MaxLinks
	}
	if log == nil {
		log = slog.Default()
	}

	return &Fetcher{
		src: src,
		cfg: cfg,
		log: log.With("component", "fetcher"),
	}
}

// Fetch looks up topic and returns its bounded summary and related links.
//
// The error side of the result is one of ErrEmptyTopic, ErrNotFound, a
// *DisambiguationError or an *UpstreamError. No partial result is returned
// on failure and nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context,
	topic string) fn.Result[SummaryResult] {

	result, err := f.fetch(ctx, topic)
	if err != nil {
		f.log.DebugContext(ctx, "Topic lookup failed", "topic", topic,
			"err", err)

		return fn.Err[SummaryResult](err)
	}

	return fn.Ok(result)
}

// fetch implements Fetch with plain error returns.
func (f *Fetcher) fetch(ctx context.Context,
	topic string) (SummaryResult, error) {

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return SummaryResult{}, ErrEmptyTopic
	}

	page, err := f.resolve(ctx, topic)
	if err != nil {
		return SummaryResult{}, err
	}

	f.log.DebugContext(ctx, "Resolved topic", "topic", topic,
		"title", page.Title, "page_id", page.PageID,
		"disambiguation", page.Disambiguation)

	if page.Disambiguation {
		return SummaryResult{}, f.disambiguation(ctx, topic, page.Title)
	}

	links, err := f.src.Links(ctx, page.Title, f.cfg.MaxLinks)
	if err != nil {
		return SummaryResult{}, asUpstream("links", err)
	}

	return SummaryResult{
		Title:   page.Title,
		Summary: TruncateSentences(page.Extract, f.cfg.MaxSentences),
		Links:   firstN(links, f.cfg.MaxLinks),
	}, nil
}

// resolve finds the page for topic. The exact title is tried first; if it
// does not exist and auto-suggest is on, the best search hit (or the
// spelling suggestion) is looked up instead.
func (f *Fetcher) resolve(ctx context.Context, topic string) (*Page, error) {
	page, err := f.src.Page(ctx, topic)
	if err != nil {
		return nil, asUpstream("page", err)
	}
	if !page.Missing {
		return page, nil
	}
	if !f.cfg.AutoSuggest {
		return nil, ErrNotFound
	}

	search, err := f.src.Search(ctx, topic)
	if err != nil {
		return nil, asUpstream("search", err)
	}

	var candidate string
	switch {
	case len(search.Titles) > 0:
		candidate = search.Titles[0]
	case search.Suggestion != "":
		candidate = search.Suggestion
	default:
		return nil, ErrNotFound
	}

	f.log.DebugContext(ctx, "Topic is not a page title, using search",
		"topic", topic, "candidate", candidate)

	page, err = f.src.Page(ctx, candidate)
	if err != nil {
		return nil, asUpstream("page", err)
	}
	if page.Missing {
		return nil, ErrNotFound
	}

	return page, nil
}

// disambiguation builds the failure for a disambiguation page. The page's
// list items are preferred; its plain link list is the fallback when the
// rendered page yields nothing.
func (f *Fetcher) disambiguation(ctx context.Context, topic,
	title string) error {

	candidates, err := f.src.DisambiguationCandidates(ctx, title)
	if err != nil {
		return asUpstream("parse", err)
	}

	if len(candidates) == 0 {
		candidates, err = f.src.Links(ctx, title, maxDisambiguationLinks)
		if err != nil {
			return asUpstream("links", err)
		}
	}

	if len(candidates) == 0 {
		return &UpstreamError{
			Op:  "parse",
			Err: fmt.Errorf("disambiguation page %q lists no "+
				"candidates", title),
		}
	}

	return &DisambiguationError{
		Topic:      topic,
		Title:      title,
		Candidates: candidates,
	}
}
