package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	apimatch "github.com/talentlens/semmatch/api/match"
)

var (
	matchToolName    = "match"
	matchDescription = "Match free-form text against the occupation catalog using semantic search. Returns the most similar catalog entries ranked by cosine similarity."
)

// MatchInput represents the input arguments for the match tool.
type MatchInput struct {
	Query string `json:"query" jsonschema:"the text to match against the catalog"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of results to return (default: 5)"`
}

// handleMatch processes a match tool call.
func (s *Server) handleMatch(ctx context.Context, req *mcp.CallToolRequest, input MatchInput) (*mcp.CallToolResult, apimatch.Output, error) {
	logger := s.config.Logger

	logger.Debug("MCP match request",
		zap.String("query", input.Query),
		zap.Int("topK", input.TopK),
	)

	output, err := apimatch.Match(ctx, input.Query, input.TopK, s.config.Matcher, logger)
	if err != nil {
		logger.Error("match failed", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to match query: %v", err)},
			},
		}, apimatch.Output{}, nil
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal match output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, apimatch.Output{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, *output, nil
}
