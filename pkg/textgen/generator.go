// Package textgen defines the text generation provider interface used to
// produce normalized descriptions from raw profile text.
package textgen

import "context"

// Generator produces text from a prompt. Implementations wrap one model
// provider and must be safe for concurrent use.
type Generator interface {
	// Generate returns the model's response to the prompt. systemPrompt
	// may be empty; providers that support system instructions apply it.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)

	// Close releases provider resources.
	Close() error
}
