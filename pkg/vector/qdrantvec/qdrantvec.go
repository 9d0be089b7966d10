// Package qdrantvec provides a Qdrant-backed vector driver over gRPC.
package qdrantvec

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for catalog embeddings.
	DefaultCollectionName = "occupations"

	payloadDocID    = "doc_id"
	payloadPosition = "position"
)

// QdrantDriver implements vector.Driver using a Qdrant collection with
// cosine distance, so scores come back as cosine similarity directly.
type QdrantDriver struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant gRPC host. Required.
	Host string

	// Port is the Qdrant gRPC port. Defaults to 6334.
	Port int

	// CollectionName defaults to DefaultCollectionName.
	CollectionName string

	// Dimensions is the embedding dimension, required to create the
	// collection when it does not exist yet.
	Dimensions uint64

	// APIKey enables authentication when set.
	APIKey string
}

// NewQdrantDriver connects to Qdrant and ensures the collection exists.
func NewQdrantDriver(ctx context.Context, c Config, logger *zap.Logger) (*QdrantDriver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	port := c.Port
	if port == 0 {
		port = 6334
	}
	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   c.Host,
		Port:   port,
		APIKey: c.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %v", vector.ErrConnection, err)
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection %q: %v", vector.ErrConnection, collectionName, err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     c.Dimensions,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: creating collection %q: %v", vector.ErrConnection, collectionName, err)
		}
	}

	logger.Info("connected to Qdrant",
		zap.String("host", c.Host),
		zap.Int("port", port),
		zap.String("collection", collectionName),
		zap.Uint64("dimensions", c.Dimensions),
	)

	return &QdrantDriver{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}, nil
}

// pointID derives a stable UUID point ID from a document ID. Qdrant point
// IDs must be integers or UUIDs, so arbitrary document IDs are hashed.
func pointID(docID string) *qdrant.PointId {
	return qdrant.NewID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String())
}

// Add upserts documents with their embeddings. Existing point IDs are
// overwritten, which gives the same update-in-place semantics as the
// other drivers.
func (d *QdrantDriver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("%w: document %s has no embedding", vector.ErrEmbedding, doc.ID)
		}
		points[i] = &qdrant.PointStruct{
			Id:      pointID(doc.ID),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadDocID:    doc.ID,
				payloadPosition: int64(doc.Position),
			}),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}

	d.logger.Debug("added documents to qdrant",
		zap.Int("count", len(docs)),
	)

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *QdrantDriver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultQueryK
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: query embedding is empty", vector.ErrEmbedding)
	}

	limit := uint64(topK)
	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %q: %w", d.collectionName, err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, point := range points {
		doc := vector.Document{}
		if v, ok := point.Payload[payloadDocID]; ok {
			doc.ID = v.GetStringValue()
		}
		if v, ok := point.Payload[payloadPosition]; ok {
			doc.Position = int(v.GetIntegerValue())
		}
		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    point.Score,
		})
	}

	d.logger.Debug("queried qdrant",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Get retrieves documents by their IDs. Unknown IDs are skipped.
func (d *QdrantDriver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	points, err := d.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: d.collectionName,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %d points: %w", len(ids), err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, point := range points {
		doc := vector.Document{}
		if v, ok := point.Payload[payloadDocID]; ok {
			doc.ID = v.GetStringValue()
		}
		if v, ok := point.Payload[payloadPosition]; ok {
			doc.Position = int(v.GetIntegerValue())
		}
		if vectors := point.Vectors.GetVector(); vectors != nil {
			doc.Embedding = vectors.Data
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *QdrantDriver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	_, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collectionName,
		Points:         qdrant.NewPointsSelectorIDs(pointIDs),
	})
	if err != nil {
		return fmt.Errorf("deleting %d points: %w", len(ids), err)
	}

	d.logger.Debug("deleted documents from qdrant",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Close releases the gRPC connection.
func (d *QdrantDriver) Close() error {
	return d.client.Close()
}
