package mcp

import (
	"context"
	"log/slog"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/wiki-mcp/internal/build"
	"github.com/roasbeef/wiki-mcp/internal/instructions"
	"github.com/roasbeef/wiki-mcp/internal/wiki"
)

// ServerName is the implementation name reported to MCP hosts.
const ServerName = "wiki-mcp"

// SummaryFetcher looks up topic summaries.
type SummaryFetcher interface {
	// Fetch returns the summary of topic or a lookup failure.
	Fetch(ctx context.Context, topic string) fn.Result[wiki.SummaryResult]
}

// InstructionSource answers instruction lookups.
type InstructionSource interface {
	// Get returns the instruction text registered under name.
	Get(name string) fn.Result[string]

	// Keys returns the names Get answers to.
	Keys() []string

	// Entries returns all exposed entries.
	Entries() []instructions.Entry
}

// Server wraps the MCP server with the summary and instruction tools.
type Server struct {
	server       *mcp.Server
	fetcher      SummaryFetcher
	instructions InstructionSource
	log          *slog.Logger
}

// Config holds configuration for the MCP server.
type Config struct {
	// Fetcher answers fetch_wikipedia_summary calls.
	Fetcher SummaryFetcher

	// Instructions answers fetch_instructions calls.
	Instructions InstructionSource

	// ServerInstructions is sent to hosts on initialization.
	ServerInstructions string

	// Logger is used for per-call logging. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewServer creates a new MCP server with all tools and prompts
// registered.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: build.Version(),
	}, &mcp.ServerOptions{
		Instructions: cfg.ServerInstructions,
	})

	s := &Server{
		server:       mcpServer,
		fetcher:      cfg.Fetcher,
		instructions: cfg.Instructions,
		log:          log,
	}

	s.registerTools()
	s.registerPrompts()

	return s
}

// Run serves a single session on the given transport until the session
// ends or ctx is canceled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// registerTools registers the summary and instruction tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "fetch_wikipedia_summary",
		Description: "Fetch a summary (at most five sentences) and up " +
			"to ten related links for a topic from Wikipedia.",
	}, s.handleFetchSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "fetch_instructions",
		Description: "Fetch instructions for a given prompt name. " +
			"Available prompts: " + joinKeys(s.instructions.Keys()),
	}, s.handleFetchInstructions)
}

// registerPrompts exposes every instruction entry as an MCP prompt as
// well, for hosts that surface prompts to users.
func (s *Server) registerPrompts() {
	for _, entry := range s.instructions.Entries() {
		s.server.AddPrompt(&mcp.Prompt{
			Name:        entry.Key,
			Description: entry.Title(),
		}, s.promptHandler(entry))
	}
}
