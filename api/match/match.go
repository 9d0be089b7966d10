// Package match provides shared types and logic for matching free-text
// queries against the reference catalog. It is used by both the REST API
// endpoint and the MCP server tool.
package match

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/matcher"
)

// Input represents the input arguments for a match request.
type Input struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// Output represents the output of a match operation.
type Output struct {
	Query   string           `json:"query"`
	Catalog string           `json:"catalog"`
	Results []matcher.Result `json:"results"`
	Count   int              `json:"count"`
}

// Match runs a semantic match of the query text against the matcher's
// catalog. It embeds the query, searches the vector index, and returns the
// topK ranked catalog items.
func Match(
	ctx context.Context,
	query string,
	topK int,
	m *matcher.Matcher,
	logger *zap.Logger,
) (*Output, error) {
	if topK <= 0 {
		topK = matcher.DefaultTopK
	}

	logger.Debug("match request",
		zap.String("query", query),
		zap.Int("topK", topK),
	)

	results, err := m.Match(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("matching query: %w", err)
	}

	return &Output{
		Query:   query,
		Catalog: m.Catalog().Name(),
		Results: results,
		Count:   len(results),
	}, nil
}
