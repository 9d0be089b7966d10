package api

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON error body returned by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}
