package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apimatch "github.com/talentlens/semmatch/api/match"
)

// handleMatchEndpoint handles GET /v1/match requests.
// Query parameters:
//   - query (required): the text to match against the catalog
//   - top_k (optional, default 5): number of results to return
func (s *Server) handleMatchEndpoint(c *fiber.Ctx) error {
	// Verify matching is configured
	if s.config.Matcher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "matching is not configured: catalog and embedder are required",
		})
	}

	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := 0
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	output, err := apimatch.Match(
		c.Context(),
		query,
		topK,
		s.config.Matcher,
		s.logger,
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(output)
}
