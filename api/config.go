// Package api provides the HTTP API server for querying the semantic
// matching engine.
package api

import (
	"net/http"

	"github.com/talentlens/semmatch/pkg/matcher"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Matcher serves /v1/match requests. When nil the endpoint reports
	// that matching is not configured.
	Matcher *matcher.Matcher

	// MCPHandler, when set, is mounted at /mcp. It is the streamable HTTP
	// handler produced by the mcp subpackage.
	MCPHandler http.Handler
}
