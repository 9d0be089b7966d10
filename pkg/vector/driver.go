// Package vector provides interfaces and implementations for vector storage
// and similarity search over catalog embeddings.
package vector

import "context"

// DefaultQueryK is the number of results a driver returns when the caller
// passes topK <= 0. Callers with domain defaults (the matcher's 5, the
// normalizer's 3) pass them explicitly; this is the driver-level floor.
const DefaultQueryK = 10

// Document represents a stored catalog embedding.
type Document struct {
	// ID is a unique identifier for the document (typically the catalog
	// item ID).
	ID string

	// Position is the row of the item in the catalog the index was built
	// from. It is the authoritative join key back to the catalog: any
	// catalog reordering after build invalidates it and requires a rebuild.
	Position int

	// Embedding is the vector representation of the document text.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score is the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should
	// update the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding.
	// When the store holds fewer than topK documents, all of them are
	// returned ranked; an empty store yields an empty result, not an error.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
