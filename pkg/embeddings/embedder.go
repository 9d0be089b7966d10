// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
//
// Implementations must be deterministic for the same input text and model,
// and must fail fast when the underlying model is unavailable rather than
// return zero vectors, which would silently corrupt downstream rankings.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts an ordered sequence of texts into embeddings in
	// one round-trip. It must be semantically equivalent to calling Embed
	// once per text: same vectors, same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
