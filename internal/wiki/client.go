package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultAPIURL is the MediaWiki Action API endpoint of the English
	// Wikipedia.
	DefaultAPIURL = "https://en.wikipedia.org/w/api.php"

	// DefaultUserAgent identifies the client to Wikipedia, which rejects
	// requests without a descriptive agent.
	DefaultUserAgent = "wiki-mcp/0.1 (https://github.com/roasbeef/wiki-mcp)"

	// DefaultTimeout bounds every outbound request.
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 8 << 20

	// maxLinksPerRequest is the largest pllimit the API accepts for
	// anonymous clients.
	maxLinksPerRequest = 500
)

// PageSource is the capability set the fetcher needs from the encyclopedia
// service: title search, page content and page links.
type PageSource interface {
	// Search runs a full-text search for query.
	Search(ctx context.Context, query string) (SearchResult, error)

	// Page looks up a page by title, following redirects. A missing page
	// is reported through Page.Missing, not as an error.
	Page(ctx context.Context, title string) (*Page, error)

	// Links returns up to limit outbound article links of a page.
	Links(ctx context.Context, title string, limit int) ([]string, error)

	// DisambiguationCandidates returns the article titles listed on a
	// disambiguation page.
	DisambiguationCandidates(ctx context.Context,
		title string) ([]string, error)
}

// ClientConfig holds configuration for the MediaWiki client.
type ClientConfig struct {
	// APIURL is the api.php endpoint to query.
	APIURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds every request, including reading the body.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client. If nil, a client with no
	// timeout of its own is used and Timeout applies per request.
	HTTPClient *http.Client
}

// DefaultClientConfig returns a ClientConfig for the English Wikipedia.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		APIURL:    DefaultAPIURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Client talks to the MediaWiki Action API. It holds no mutable state and
// is safe for concurrent use.
type Client struct {
	apiURL    string
	userAgent string
	timeout   time.Duration
	http      *http.Client
}

// Ensure Client implements PageSource at compile time.
var _ PageSource = (*Client)(nil)

// NewClient creates a new MediaWiki client.
func NewClient(cfg ClientConfig) *Client {
	defaults := DefaultClientConfig()
	if cfg.APIURL == "" {
		cfg.APIURL = defaults.APIURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		apiURL:    cfg.APIURL,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      httpClient,
	}
}

// apiEnvelope is the part shared by every API response.
type apiEnvelope struct {
	Error *apiError `json:"error,omitempty"`
}

// get issues a GET request with the given query parameters and decodes the
// JSON response into out. Every failure is returned as an UpstreamError.
func (c *Client) get(ctx context.Context, op string, params url.Values,
	out any) error {

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil,
	)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{
			Op:  op,
			Err: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &UpstreamError{
			Op:  op,
			Err: fmt.Errorf("malformed response: %w", err),
		}
	}
	if env.Error != nil {
		return &UpstreamError{Op: op, Err: env.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{
			Op:  op,
			Err: fmt.Errorf("malformed response: %w", err),
		}
	}

	return nil
}

// searchResponse is the body of a list=search query.
type searchResponse struct {
	Query *struct {
		SearchInfo struct {
			Suggestion string `json:"suggestion"`
		} `json:"searchinfo"`
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Search runs a full-text search and returns matching titles together
// with the service's spelling suggestion.
func (c *Client) Search(ctx context.Context,
	query string) (SearchResult, error) {

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "10")
	params.Set("srinfo", "suggestion")
	params.Set("srprop", "")

	var resp searchResponse
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return SearchResult{}, err
	}
	if resp.Query == nil {
		return SearchResult{}, &UpstreamError{
			Op:  "search",
			Err: fmt.Errorf("response has no query object"),
		}
	}

	result := SearchResult{
		Suggestion: resp.Query.SearchInfo.Suggestion,
	}
	for _, hit := range resp.Query.Search {
		result.Titles = append(result.Titles, hit.Title)
	}

	return result, nil
}

// pageEntry is one element of query.pages in formatversion=2.
type pageEntry struct {
	PageID    int64             `json:"pageid"`
	Title     string            `json:"title"`
	Missing   bool              `json:"missing"`
	Invalid   bool              `json:"invalid"`
	Extract   string            `json:"extract"`
	PageProps map[string]string `json:"pageprops"`
	Links     []struct {
		Title string `json:"title"`
	} `json:"links"`
}

// queryResponse is the body of a prop=... query.
type queryResponse struct {
	Query *struct {
		Pages []pageEntry `json:"pages"`
	} `json:"query"`
}

// firstPage returns the only page of a single-title query.
func (r *queryResponse) firstPage(op string) (*pageEntry, error) {
	if r.Query == nil {
		return nil, &UpstreamError{
			Op:  op,
			Err: fmt.Errorf("response has no query object"),
		}
	}
	switch len(r.Query.Pages) {
	case 0:
		return nil, nil

	case 1:
		return &r.Query.Pages[0], nil

	default:
		return nil, &UpstreamError{
			Op: op,
			Err: fmt.Errorf("expected one page, got %d",
				len(r.Query.Pages)),
		}
	}
}

// invalidTitleChars can never appear in a page title. The API reads '|' as
// a separator between several titles, so such a topic must not reach it.
const invalidTitleChars = "|#<>[]{}\x1f"

// validTitle reports whether title can name a page.
func validTitle(title string) bool {
	return !strings.ContainsAny(title, invalidTitleChars)
}

// Page fetches the plain-text introduction and the disambiguation page
// property of a page, following redirects.
func (c *Client) Page(ctx context.Context, title string) (*Page, error) {
	if !validTitle(title) {
		return &Page{Title: title, Missing: true}, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|pageprops")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("ppprop", "disambiguation")
	params.Set("redirects", "1")
	params.Set("titles", title)

	var resp queryResponse
	if err := c.get(ctx, "page", params, &resp); err != nil {
		return nil, err
	}

	entry, err := resp.firstPage("page")
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.Missing || entry.Invalid {
		return &Page{Title: title, Missing: true}, nil
	}

	_, disambiguation := entry.PageProps["disambiguation"]

	return &Page{
		PageID:         entry.PageID,
		Title:          entry.Title,
		Extract:        entry.Extract,
		Disambiguation: disambiguation,
	}, nil
}

// Links returns up to limit outbound links of a page into the article
// namespace, in the order the API lists them.
func (c *Client) Links(ctx context.Context, title string,
	limit int) ([]string, error) {

	if limit <= 0 || !validTitle(title) {
		return nil, nil
	}
	if limit > maxLinksPerRequest {
		limit = maxLinksPerRequest
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "links")
	params.Set("plnamespace", "0")
	params.Set("pllimit", strconv.Itoa(limit))
	params.Set("redirects", "1")
	params.Set("titles", title)

	var resp queryResponse
	if err := c.get(ctx, "links", params, &resp); err != nil {
		return nil, err
	}

	entry, err := resp.firstPage("links")
	if err != nil || entry == nil {
		return nil, err
	}

	links := make([]string, 0, len(entry.Links))
	for _, link := range entry.Links {
		links = append(links, link.Title)
	}

	return links, nil
}

// parseResponse is the body of an action=parse request.
type parseResponse struct {
	Parse *struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
}

// DisambiguationCandidates renders a disambiguation page and returns the
// article titles it lists.
func (c *Client) DisambiguationCandidates(ctx context.Context,
	title string) ([]string, error) {

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("prop", "text")
	params.Set("redirects", "1")
	params.Set("disableeditsection", "1")
	params.Set("page", title)

	var resp parseResponse
	if err := c.get(ctx, "parse", params, &resp); err != nil {
		return nil, err
	}
	if resp.Parse == nil {
		return nil, &UpstreamError{
			Op:  "parse",
			Err: fmt.Errorf("response has no parse object"),
		}
	}

	candidates, err := candidatesFromHTML(resp.Parse.Text)
	if err != nil {
		return nil, &UpstreamError{Op: "parse", Err: err}
	}

	return candidates, nil
}

// skippedNamespaces are title prefixes of non-article pages that show up in
// list items of rendered pages.
var skippedNamespaces = []string{
	"Special:", "Help:", "Wikipedia:", "File:", "Category:",
	"Template:", "Portal:", "Talk:", "Wiktionary:",
}

// candidatesFromHTML collects the first article link of every list item on
// a rendered disambiguation page, skipping table-of-contents entries and
// navigation boxes. Titles are de-duplicated and keep page order.
func candidatesFromHTML(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("unable to parse page html: %w", err)
	}

	var (
		candidates []string
		seen       = make(map[string]struct{})
	)
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if class, _ := li.Attr("class"); strings.Contains(
			class, "tocsection",
		) {

			return
		}
		if li.ParentsFiltered(".toc, .navbox, .reflist").Length() > 0 {
			return
		}

		link := li.Find(`a[href^="/wiki/"]`).First()
		title, ok := link.Attr("title")
		if !ok || title == "" {
			return
		}
		for _, ns := range skippedNamespaces {
			if strings.HasPrefix(title, ns) {
				return
			}
		}

		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}
		candidates = append(candidates, title)
	})

	return candidates, nil
}
