package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/wiki-mcp/internal/instructions"
)

// FetchSummaryArgs are the arguments for the fetch_wikipedia_summary tool.
type FetchSummaryArgs struct {
	// Topic is the topic to look up.
	Topic string `json:"topic" jsonschema:"The topic to search on Wikipedia"`
}

// FetchInstructionsArgs are the arguments for the fetch_instructions tool.
type FetchInstructionsArgs struct {
	// PromptName is the instruction key to look up.
	PromptName string `json:"prompt_name" jsonschema:"Name of the prompt to fetch instructions for"`
}

func (s *Server) handleFetchSummary(ctx context.Context,
	req *mcp.CallToolRequest, args FetchSummaryArgs) (*mcp.CallToolResult,
	any, error) {

	callID := uuid.NewString()
	start := time.Now()

	result := s.fetcher.Fetch(ctx, args.Topic)
	text, isError := RenderSummary(args.Topic, result)

	s.logCall(ctx, callID, "fetch_wikipedia_summary", start, isError,
		"topic", args.Topic)

	return textResult(text, isError), nil, nil
}

func (s *Server) handleFetchInstructions(ctx context.Context,
	req *mcp.CallToolRequest,
	args FetchInstructionsArgs) (*mcp.CallToolResult, any, error) {

	callID := uuid.NewString()
	start := time.Now()

	result := s.instructions.Get(args.PromptName)
	text, isError := RenderInstructions(
		args.PromptName, result, s.instructions.Keys(),
	)

	s.logCall(ctx, callID, "fetch_instructions", start, isError,
		"prompt_name", args.PromptName)

	return textResult(text, isError), nil, nil
}

// promptHandler returns the prompt handler serving entry.
func (s *Server) promptHandler(entry instructions.Entry) mcp.PromptHandler {
	return func(ctx context.Context,
		req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {

		return &mcp.GetPromptResult{
			Description: entry.Title(),
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: entry.Body},
			}},
		}, nil
	}
}

// logCall records a finished tool call.
func (s *Server) logCall(ctx context.Context, callID, tool string,
	start time.Time, isError bool, attrs ...any) {

	attrs = append([]any{
		"call_id", callID,
		"tool", tool,
		"duration", time.Since(start),
		"is_error", isError,
	}, attrs...)

	s.log.InfoContext(ctx, "Tool call finished", attrs...)
}

// textResult wraps text in a tool result.
func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}
