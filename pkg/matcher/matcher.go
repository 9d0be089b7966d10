// Package matcher orchestrates semantic matching: encode a query, search
// the vector index, and join result rows back to catalog items.
//
// A Matcher owns its index exclusively. It is built eagerly from a fully
// loaded catalog so configuration problems surface at startup, not on the
// first query. Rebuilds construct a fresh index and swap it atomically;
// in-flight readers never observe a partially built index.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/catalog"
	"github.com/talentlens/semmatch/pkg/embeddings"
	"github.com/talentlens/semmatch/pkg/vector"
	"github.com/talentlens/semmatch/pkg/vector/flat"
)

// DefaultTopK is the number of matches returned when the caller does not
// specify k.
const DefaultTopK = 5

// ErrClosed is returned by Match after the matcher has been closed.
var ErrClosed = errors.New("matcher closed")

// Result is one ranked match against the catalog.
type Result struct {
	// ID is the matched catalog item ID.
	ID string `json:"id"`

	// Title is the matched item's display name.
	Title string `json:"title"`

	// Score is the cosine similarity, rounded to four decimals so repeated
	// runs of the same query compare equal.
	Score float32 `json:"score"`

	// Similarity is Score formatted to four decimal places, the fixed
	// precision used in reports.
	Similarity string `json:"similarity"`

	// Metadata carries the matched item's extra source fields.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Config holds optional Matcher construction knobs.
type Config struct {
	// IndexFactory returns an empty vector driver for each build.
	// A construction error aborts the build: a misconfigured store is a
	// startup failure, never a silent substitution. Defaults to the
	// in-memory flat cosine index.
	IndexFactory func() (vector.Driver, error)
}

// Matcher matches free-text queries against one catalog.
type Matcher struct {
	mu       sync.RWMutex
	index    vector.Driver
	cat      *catalog.Catalog
	embedder embeddings.Embedder
	factory  func() (vector.Driver, error)
	logger   *zap.Logger
}

// New builds a matcher for the given catalog, embedding every item's
// descriptive text in one batch call. An embedding failure here is a
// startup failure: the matcher refuses to exist half-built.
func New(ctx context.Context, cfg Config, embedder embeddings.Embedder, cat *catalog.Catalog, logger *zap.Logger) (*Matcher, error) {
	factory := cfg.IndexFactory
	if factory == nil {
		factory = func() (vector.Driver, error) { return flat.New(logger), nil }
	}

	m := &Matcher{
		embedder: embedder,
		factory:  factory,
		logger:   logger,
	}

	index, err := m.build(ctx, cat)
	if err != nil {
		return nil, err
	}

	m.index = index
	m.cat = cat

	logger.Info("matcher ready",
		zap.String("catalog", cat.Name()),
		zap.Int("items", cat.Len()),
	)

	return m, nil
}

// build embeds the catalog and fills a fresh index. It never touches the
// matcher's live state.
func (m *Matcher) build(ctx context.Context, cat *catalog.Catalog) (vector.Driver, error) {
	index, err := m.factory()
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	if cat.Len() == 0 {
		return index, nil
	}

	vecs, err := m.embedder.EmbedBatch(ctx, cat.Texts())
	if err != nil {
		return nil, fmt.Errorf("embedding catalog %s: %w", cat.Name(), err)
	}
	if len(vecs) != cat.Len() {
		return nil, fmt.Errorf("embedding catalog %s: got %d vectors for %d items", cat.Name(), len(vecs), cat.Len())
	}

	docs := make([]vector.Document, cat.Len())
	for i, item := range cat.Items() {
		docs[i] = vector.Document{
			ID:        item.ID,
			Position:  i,
			Embedding: vecs[i],
		}
	}

	if err := index.Add(ctx, docs); err != nil {
		return nil, fmt.Errorf("indexing catalog %s: %w", cat.Name(), err)
	}

	return index, nil
}

// Match returns the k catalog items most similar to the query text, ranked
// by descending similarity. An empty catalog yields an empty result; a
// catalog smaller than k yields all items ranked. Encoding failures are
// returned to the caller without retry.
func (m *Matcher) Match(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	m.mu.RLock()
	index := m.index
	cat := m.cat
	m.mu.RUnlock()

	if index == nil {
		return nil, ErrClosed
	}

	if cat.Len() == 0 {
		return []Result{}, nil
	}

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := index.Query(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		item, ok := cat.At(hit.Position)
		if !ok {
			// A stale position means the index and catalog have diverged;
			// rebuild is required. Skip rather than return a wrong item.
			m.logger.Warn("index position out of catalog range",
				zap.Int("position", hit.Position),
				zap.String("catalog", cat.Name()),
			)
			continue
		}

		results = append(results, Result{
			ID:         item.ID,
			Title:      item.Title,
			Score:      roundScore(hit.Score),
			Similarity: fmt.Sprintf("%.4f", hit.Score),
			Metadata:   item.Metadata,
		})
	}

	return results, nil
}

// Rebuild embeds the given catalog into a fresh index and swaps it in
// atomically. On failure the previous index keeps serving.
func (m *Matcher) Rebuild(ctx context.Context, cat *catalog.Catalog) error {
	index, err := m.build(ctx, cat)
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.index
	m.index = index
	m.cat = cat
	m.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	m.logger.Info("matcher index rebuilt",
		zap.String("catalog", cat.Name()),
		zap.Int("items", cat.Len()),
	)

	return nil
}

// Catalog returns the catalog currently being served.
func (m *Matcher) Catalog() *catalog.Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cat
}

// Close releases the underlying index.
func (m *Matcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == nil {
		return nil
	}
	err := m.index.Close()
	m.index = nil
	return err
}

func roundScore(s float32) float32 {
	return float32(math.Round(float64(s)*10000) / 10000)
}
