package wiki

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakePage is a page served by fakeAPI.
type fakePage struct {
	extract        string
	disambiguation bool
	links          []string
	html           string
}

// fakeAPI is an in-process stand-in for the MediaWiki Action API that
// understands exactly the requests Client issues.
type fakeAPI struct {
	pages       map[string]fakePage
	redirects   map[string]string
	search      map[string][]string
	suggestions map[string]string

	// status, if set, is returned for every request.
	status int

	// rawBody, if set, is written verbatim for every request.
	rawBody string

	// delay stalls every request until it elapses or the client gives
	// up.
	delay time.Duration

	requests atomic.Int64
}

// newMercuryAPI returns a fake populated with a small realistic corpus.
func newMercuryAPI() *fakeAPI {
	return &fakeAPI{
		pages: map[string]fakePage{
			"Mercury": {
				disambiguation: true,
				html:           mercuryHTML,
				links: []string{
					"Mercury (element)", "Mercury (planet)",
				},
			},
			"Mercury (planet)": {
				extract: "Mercury is the first planet from the Sun " +
					"and the smallest in the Solar System. It " +
					"is a rocky planet with a trace atmosphere. " +
					"Its surface is heavily cratered. Mercury " +
					"has no natural satellites. It orbits the " +
					"Sun every 88 days. Being so close to the " +
					"Sun, it is hard to observe. It was named " +
					"after the Roman god Mercurius.",
				links: []string{
					"Apollo", "Astronomical unit", "BepiColombo",
					"Caloris Planitia", "Crater", "Earth",
					"Exosphere", "Hermes", "Iron", "Jupiter",
					"MESSENGER", "Mariner 10", "Moon",
				},
			},
			"Mercury (element)": {
				extract: "Mercury is a chemical element; it has " +
					"symbol Hg and atomic number 80. It is a " +
					"heavy, silvery d-block element.",
				links: []string{"Amalgam", "Cinnabar", "Thermometer"},
			},
			"Zinc": {
				extract: "Zinc is a chemical element",
			},
		},
		redirects: map[string]string{
			"Quicksilver": "Mercury (element)",
		},
		search: map[string][]string{
			"planet mercury": {"Mercury (planet)", "Mercury"},
		},
		suggestions: map[string]string{
			"mercuri elemnt": "Mercury (element)",
		},
	}
}

// mercuryHTML is a trimmed rendering of the Mercury disambiguation page.
const mercuryHTML = `<div class="mw-parser-output">
<p><b>Mercury</b> usually refers to:</p>
<ul>
<li><a href="/wiki/Mercury_(planet)" title="Mercury (planet)">Mercury (planet)</a>, the closest planet to the Sun</li>
<li><a href="/wiki/Mercury_(element)" title="Mercury (element)">Mercury (element)</a>, a metallic chemical element</li>
<li><a href="/wiki/Mercury_(mythology)" title="Mercury (mythology)">Mercury (mythology)</a>, a Roman god</li>
</ul>
<div class="toc"><ul><li class="toclevel-1 tocsection-1"><a href="#Other"><span>Other uses</span></a></li></ul></div>
<h2>Other uses</h2>
<ul>
<li><a href="/wiki/Freddie_Mercury" title="Freddie Mercury">Freddie Mercury</a> (1946–1991), British singer</li>
<li><a href="/w/index.php?title=Mercury_Street&amp;action=edit&amp;redlink=1" class="new" title="Mercury Street (page does not exist)">Mercury Street</a></li>
<li><a href="/wiki/Mercury_(planet)" title="Mercury (planet)">Planet Mercury</a></li>
<li>See <a href="/wiki/Special:Search/Mercury" title="Special:Search/Mercury">all pages</a></li>
</ul>
<div class="navbox"><ul><li><a href="/wiki/Solar_System" title="Solar System">Solar System</a></li></ul></div>
</div>`

// start serves the fake over HTTP and returns a client pointed at it.
func (f *fakeAPI) start(t *testing.T, timeout time.Duration) *Client {
	t.Helper()

	transport := &http.Transport{}
	srv := httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(func() {
		srv.Close()
		transport.CloseIdleConnections()
	})

	return NewClient(ClientConfig{
		APIURL:     srv.URL + "/w/api.php",
		UserAgent:  "wiki-mcp-test",
		Timeout:    timeout,
		HTTPClient: &http.Client{Transport: transport},
	})
}

func (f *fakeAPI) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	if f.rawBody != "" {
		_, _ = w.Write([]byte(f.rawBody))
		return
	}

	q := r.URL.Query()
	switch {
	case q.Get("action") == "parse":
		f.serveParse(w, q.Get("page"))

	case q.Get("list") == "search":
		f.serveSearch(w, q.Get("srsearch"))

	case q.Get("prop") == "links":
		limit, _ := strconv.Atoi(q.Get("pllimit"))
		f.serveLinks(w, q.Get("titles"), limit)

	case q.Get("prop") == "extracts|pageprops":
		f.servePage(w, q.Get("titles"))

	default:
		writeJSON(w, map[string]any{
			"error": map[string]string{
				"code": "badparams", "info": "unexpected request",
			},
		})
	}
}

func (f *fakeAPI) lookup(title string) (string, fakePage, bool) {
	if target, ok := f.redirects[title]; ok {
		title = target
	}
	page, ok := f.pages[title]

	return title, page, ok
}

// servePage answers a page query. Like the real API it reads '|' as a
// separator and answers every title it names.
func (f *fakeAPI) servePage(w http.ResponseWriter, titles string) {
	var entries []any
	for _, title := range strings.Split(titles, "|") {
		title, page, ok := f.lookup(title)
		if !ok {
			entries = append(entries, map[string]any{
				"ns": 0, "title": title, "missing": true,
			})
			continue
		}

		entry := map[string]any{
			"pageid":  len(title),
			"ns":      0,
			"title":   title,
			"extract": page.extract,
		}
		if page.disambiguation {
			entry["pageprops"] = map[string]string{
				"disambiguation": "",
			}
		}
		entries = append(entries, entry)
	}

	writeJSON(w, map[string]any{
		"query": map[string]any{"pages": entries},
	})
}

func (f *fakeAPI) serveLinks(w http.ResponseWriter, titles string,
	limit int) {

	var pages []any
	for _, title := range strings.Split(titles, "|") {
		title, page, _ := f.lookup(title)

		links := page.links
		if limit > 0 && len(links) > limit {
			links = links[:limit]
		}

		var entries []map[string]any
		for _, l := range links {
			entries = append(entries, map[string]any{
				"ns": 0, "title": l,
			})
		}
		pages = append(pages, map[string]any{
			"title": title, "links": entries,
		})
	}

	writeJSON(w, map[string]any{
		"query": map[string]any{"pages": pages},
	})
}

func (f *fakeAPI) serveSearch(w http.ResponseWriter, query string) {
	var hits []map[string]any
	for _, title := range f.search[query] {
		hits = append(hits, map[string]any{"ns": 0, "title": title})
	}

	info := map[string]any{}
	if s, ok := f.suggestions[query]; ok {
		info["suggestion"] = s
	}
	writeJSON(w, map[string]any{
		"query": map[string]any{
			"searchinfo": info,
			"search":     hits,
		},
	})
}

func (f *fakeAPI) serveParse(w http.ResponseWriter, title string) {
	title, page, ok := f.lookup(title)
	if !ok {
		writeJSON(w, map[string]any{
			"error": map[string]string{
				"code": "missingtitle",
				"info": "The page you specified doesn't exist.",
			},
		})
		return
	}

	writeJSON(w, map[string]any{
		"parse": map[string]any{"title": title, "text": page.html},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
