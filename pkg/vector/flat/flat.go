// Package flat provides an in-memory flat vector index with exhaustive
// cosine-similarity search.
//
// All vectors are L2-normalized at insertion and at query time, so the
// similarity score is the inner product of unit vectors (cosine similarity
// in [-1, 1]). Normalizing on both sides keeps the ranking identical whether
// the caller thinks in cosine or Euclidean terms.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/vector"
)

// Driver implements vector.Driver with a dense in-memory matrix and
// exhaustive scan. Reads may run concurrently; writes are serialized.
type Driver struct {
	mu     sync.RWMutex
	dim    int
	docs   []vector.Document // embeddings stored normalized
	byID   map[string]int    // document ID -> slot in docs
	logger *zap.Logger
}

// New creates an empty flat index. The dimension is fixed by the first
// vector added.
func New(logger *zap.Logger) *Driver {
	return &Driver{
		byID:   make(map[string]int),
		logger: logger,
	}
}

// Normalize returns a copy of v scaled to unit L2 norm. A zero vector is
// returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	n := math.Sqrt(sum)
	if n == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1.0 / n)
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}

// Cosine computes cosine similarity between two vectors of equal length.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", vector.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0, nil
	}
	return dot / den, nil
}

// Len returns the number of stored documents.
func (d *Driver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}

// Dimension returns the vector dimension, or 0 before the first Add.
func (d *Driver) Dimension() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dim
}

// Add stores documents with their embeddings. Embeddings are normalized on
// the way in. A document whose ID already exists is updated in place,
// keeping its original position.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("%w: empty embedding for document %s", vector.ErrEmbedding, doc.ID)
		}
		if d.dim == 0 {
			d.dim = len(doc.Embedding)
		}
		if len(doc.Embedding) != d.dim {
			return fmt.Errorf("%w: document %s has dimension %d, index has %d",
				vector.ErrDimensionMismatch, doc.ID, len(doc.Embedding), d.dim)
		}

		stored := doc
		stored.Embedding = Normalize(doc.Embedding)

		if slot, ok := d.byID[doc.ID]; ok {
			stored.Position = d.docs[slot].Position
			d.docs[slot] = stored
			continue
		}

		stored.Position = len(d.docs)
		d.byID[doc.ID] = len(d.docs)
		d.docs = append(d.docs, stored)
	}

	d.logger.Debug("added documents to flat index",
		zap.Int("count", len(docs)),
		zap.Int("total", len(d.docs)),
	)

	return nil
}

// Query finds the topK most similar documents to the given embedding.
// Results are ordered by descending score; ties keep insertion order
// (stable sort). topK larger than the index size returns everything
// ranked, and an empty index returns an empty result.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultQueryK
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.docs) == 0 {
		return []vector.QueryResult{}, nil
	}
	if len(embedding) != d.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			vector.ErrDimensionMismatch, len(embedding), d.dim)
	}

	q := Normalize(embedding)

	results := make([]vector.QueryResult, 0, len(d.docs))
	for _, doc := range d.docs {
		var dot float32
		for i, x := range doc.Embedding {
			dot += x * q[i]
		}
		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    dot,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}

	return results, nil
}

// Get retrieves documents by their IDs. Unknown IDs are skipped.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		if slot, ok := d.byID[id]; ok {
			docs = append(docs, d.docs[slot])
		}
	}
	return docs, nil
}

// Delete removes documents by their IDs. Positions of the remaining
// documents are preserved, so the catalog join stays valid.
func (d *Driver) Delete(_ context.Context, ids []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		slot, ok := d.byID[id]
		if !ok {
			continue
		}
		delete(d.byID, id)
		d.docs = append(d.docs[:slot], d.docs[slot+1:]...)
		for i := slot; i < len(d.docs); i++ {
			d.byID[d.docs[i].ID] = i
		}
	}
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

var _ vector.Driver = (*Driver)(nil)
