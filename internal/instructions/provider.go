// Package instructions holds the static instruction texts handed out by the
// fetch_instructions tool and the server-level instructions sent to MCP
// hosts on initialization.
package instructions

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	// SummaryFormattingKey names the instructions for formatting the
	// output of the fetch_wikipedia_summary tool.
	SummaryFormattingKey = "fetch_wikipedia_summary"

	// serverInstructionsFile is the document sent to hosts as the
	// server's own instructions. It is not a lookup key.
	serverInstructionsFile = "server_instructions.md"
)

//go:embed prompts/*.md
var promptFS embed.FS

// recognizedKeys are the names fetch_instructions answers to.
var recognizedKeys = []string{SummaryFormattingKey}

// table is the process-wide instruction table, built once at init and
// never modified afterwards.
var table = mustLoadTable()

// Entry is one named block of instruction text.
type Entry struct {
	// Key is the exact name the entry is looked up by.
	Key string

	// Body is the markdown instruction text.
	Body string
}

// Title returns the text of the first markdown heading in the body, or the
// key if the body has no heading.
func (e Entry) Title() string {
	src := []byte(e.Body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var title strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus,
		error) {

		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		_ = ast.Walk(heading, func(c ast.Node,
			entering bool) (ast.WalkStatus, error) {

			if t, ok := c.(*ast.Text); ok && entering {
				title.Write(t.Segment.Value(src))
				if t.SoftLineBreak() {
					title.WriteByte(' ')
				}
			}

			return ast.WalkContinue, nil
		})

		return ast.WalkStop, nil
	})

	if title.Len() == 0 {
		return e.Key
	}

	return strings.TrimSpace(title.String())
}

// readPrompt returns the embedded document with the given file name.
func readPrompt(name string) (string, error) {
	body, err := promptFS.ReadFile(path.Join("prompts", name))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// mustLoadTable builds the instruction table from the embedded documents.
// A recognized key without a document is a build defect.
func mustLoadTable() map[string]Entry {
	entries := make(map[string]Entry, len(recognizedKeys))
	for _, key := range recognizedKeys {
		body, err := readPrompt(key + ".md")
		if err != nil {
			panic(fmt.Sprintf("instructions for %q missing: %v",
				key, err))
		}

		entries[key] = Entry{Key: key, Body: body}
	}

	return entries
}

// ServerInstructions returns the instructions an MCP host receives when it
// initializes a session with the server.
func ServerInstructions() string {
	body, err := readPrompt(serverInstructionsFile)
	if err != nil {
		return ""
	}

	return body
}

// Provider answers instruction lookups from the static table. It is
// read-only and safe for concurrent use.
type Provider struct {
	entries map[string]Entry
	keys    []string
}

// NewProvider creates a provider exposing the given keys. With no keys, all
// recognized keys are exposed. Unknown keys are rejected.
func NewProvider(keys ...string) (*Provider, error) {
	if len(keys) == 0 {
		keys = recognizedKeys
	}

	p := &Provider{
		entries: make(map[string]Entry, len(keys)),
	}
	for _, key := range keys {
		entry, ok := table[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a recognized "+
				"instruction key", ErrNotFound, key)
		}

		if _, dup := p.entries[key]; dup {
			continue
		}
		p.entries[key] = entry
		p.keys = append(p.keys, key)
	}
	slices.Sort(p.keys)

	return p, nil
}

// Get returns the instruction text registered under name. The lookup is an
// exact match; unknown names fail with ErrNotFound.
func (p *Provider) Get(name string) fn.Result[string] {
	entry, ok := p.entries[name]
	if !ok {
		return fn.Err[string](fmt.Errorf("%w: %q", ErrNotFound, name))
	}

	return fn.Ok(entry.Body)
}

// Keys returns the exposed instruction keys in sorted order.
func (p *Provider) Keys() []string {
	return slices.Clone(p.keys)
}

// Entries returns the exposed entries ordered by key.
func (p *Provider) Entries() []Entry {
	entries := make([]Entry, 0, len(p.keys))
	for _, key := range p.keys {
		entries = append(entries, p.entries[key])
	}

	return entries
}
