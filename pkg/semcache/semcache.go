// Package semcache implements a similarity-keyed cache in front of an
// expensive text-generation step.
//
// A lookup embeds the query and compares it against every cached entry; a
// cosine similarity above the threshold is a hit and returns the stored
// output without re-running generation. The cache is append-only: no
// eviction, no dedup beyond the threshold logic. It persists as a file
// pair (JSON entries + binary embedding matrix) that must stay in
// lockstep; a corrupt pair is treated as an empty cache because the cache
// is a pure optimization with no correctness dependency downstream.
package semcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/embeddings"
	"github.com/talentlens/semmatch/pkg/vector"
	"github.com/talentlens/semmatch/pkg/vector/flat"
)

// DefaultThreshold is the cosine similarity above which a cached entry is
// reused. Too high wastes generation calls on near-duplicates; too low
// returns stale outputs for dissimilar queries. Tune per dataset.
const DefaultThreshold = 0.75

// defaultCheckpointEvery is how many inserts may accumulate before the
// cache is persisted.
const defaultCheckpointEvery = 32

// Entry is one cached generation result.
type Entry struct {
	// ID identifies the entry across persistence cycles.
	ID string `json:"id"`

	// Query is the text the entry was created for.
	Query string `json:"query"`

	// Output is the expensive-to-generate text being cached.
	Output string `json:"output"`
}

// Hit is a successful cache lookup.
type Hit struct {
	Entry

	// Score is the cosine similarity between the query and the entry.
	Score float32
}

// Config holds cache construction options.
type Config struct {
	// Threshold overrides DefaultThreshold when > 0.
	Threshold float64

	// Dir is the persistence directory. Empty disables persistence.
	Dir string

	// CheckpointEvery overrides how many inserts trigger a save.
	CheckpointEvery int
}

// Cache is an append-only semantic cache. Lookups may run concurrently;
// inserts are serialized.
type Cache struct {
	mu        sync.RWMutex
	entries   []Entry
	vecs      [][]float32 // stored normalized, parallel to entries
	dim       int
	sinceSave int

	threshold       float64
	checkpointEvery int
	dir             string
	embedder        embeddings.Embedder
	logger          *zap.Logger
}

// New creates a cache, loading any persisted state from cfg.Dir. Load-time
// corruption is logged and discarded rather than returned as an error.
func New(cfg Config, embedder embeddings.Embedder, logger *zap.Logger) (*Cache, error) {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	checkpointEvery := cfg.CheckpointEvery
	if checkpointEvery <= 0 {
		checkpointEvery = defaultCheckpointEvery
	}

	c := &Cache{
		threshold:       threshold,
		checkpointEvery: checkpointEvery,
		dir:             cfg.Dir,
		embedder:        embedder,
		logger:          logger,
	}

	if cfg.Dir != "" {
		if err := c.load(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Lookup embeds the query once and scans the cache. On a hit it returns
// the best-matching entry; on a miss the hit is nil. The query embedding
// is returned either way so the caller can Insert the generated output
// without re-encoding the text it just encoded.
func (c *Cache) Lookup(ctx context.Context, query string) (*Hit, []float32, error) {
	raw, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: embedding cache query: %v", vector.ErrEmbedding, err)
	}
	queryVec := flat.Normalize(raw)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return nil, queryVec, nil
	}
	if len(queryVec) != c.dim {
		return nil, nil, fmt.Errorf("%w: query has dimension %d, cache has %d",
			vector.ErrDimensionMismatch, len(queryVec), c.dim)
	}

	bestIdx := -1
	var bestScore float32
	for i, vec := range c.vecs {
		var dot float32
		for j, x := range vec {
			dot += x * queryVec[j]
		}
		if bestIdx == -1 || dot > bestScore {
			bestIdx = i
			bestScore = dot
		}
	}

	if float64(bestScore) <= c.threshold {
		return nil, queryVec, nil
	}

	return &Hit{Entry: c.entries[bestIdx], Score: bestScore}, queryVec, nil
}

// Insert appends a new entry with the embedding returned by Lookup. Call
// it only after the generation step succeeded; inserting empty outputs
// poisons every future lookup that lands near this query.
func (c *Cache) Insert(query, output string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for cache entry", vector.ErrEmbedding)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dim == 0 {
		c.dim = len(embedding)
	}
	if len(embedding) != c.dim {
		return fmt.Errorf("%w: entry has dimension %d, cache has %d",
			vector.ErrDimensionMismatch, len(embedding), c.dim)
	}

	c.entries = append(c.entries, Entry{
		ID:     uuid.NewString(),
		Query:  query,
		Output: output,
	})
	c.vecs = append(c.vecs, flat.Normalize(embedding))

	if len(c.entries) != len(c.vecs) {
		// Unreachable unless the code above regresses; the invariant is
		// what keeps persisted state loadable.
		return fmt.Errorf("semantic cache diverged: %d entries, %d vectors", len(c.entries), len(c.vecs))
	}

	c.sinceSave++
	if c.dir != "" && c.sinceSave >= c.checkpointEvery {
		if err := c.saveLocked(); err != nil {
			c.logger.Warn("semantic cache checkpoint failed", zap.Error(err))
		} else {
			c.sinceSave = 0
		}
	}

	return nil
}

// Close persists the cache when a directory is configured.
func (c *Cache) Close() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sinceSave == 0 {
		return nil
	}
	if err := c.saveLocked(); err != nil {
		return err
	}
	c.sinceSave = 0
	return nil
}
