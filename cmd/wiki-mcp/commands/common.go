package commands

import (
	"github.com/roasbeef/wiki-mcp/internal/config"
	"github.com/roasbeef/wiki-mcp/internal/instructions"
	"github.com/roasbeef/wiki-mcp/internal/mcp"
	"github.com/roasbeef/wiki-mcp/internal/wiki"
)

// newFetcher builds the summary fetcher from the configuration.
func newFetcher(cfg *config.Config) *wiki.Fetcher {
	client := wiki.NewClient(cfg.ClientConfig())

	return wiki.NewFetcher(
		client, cfg.FetcherConfig(), logger(subsystemWiki),
	)
}

// newProvider builds the instruction provider from the configuration.
func newProvider(cfg *config.Config) (*instructions.Provider, error) {
	return instructions.NewProvider(cfg.InstructionKeys...)
}

// newServer wires the fetcher and the provider into an MCP server.
func newServer(cfg *config.Config) (*mcp.Server, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	return mcp.NewServer(mcp.Config{
		Fetcher:            newFetcher(cfg),
		Instructions:       provider,
		ServerInstructions: instructions.ServerInstructions(),
		Logger:             logger(subsystemMCP),
	}), nil
}
