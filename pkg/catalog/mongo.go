package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoConfig locates a catalog collection in MongoDB, the system of record
// for the occupation and course datasets.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name.
	Database string

	// Collection is the collection holding one document per catalog item.
	Collection string

	// IDField, TitleField and TextField name the document fields to map.
	// Defaults: "id", "title", "description".
	IDField    string
	TitleField string
	TextField  string
}

// LoadMongo loads a full catalog collection from MongoDB. The collection is
// read in its natural order so item positions are stable across a reload of
// an unchanged collection.
func LoadMongo(ctx context.Context, name string, cfg MongoConfig, logger *zap.Logger) (*Catalog, error) {
	if cfg.URI == "" || cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("mongo catalog source requires uri, database and collection")
	}

	idField := cfg.IDField
	if idField == "" {
		idField = "id"
	}
	titleField := cfg.TitleField
	if titleField == "" {
		titleField = "title"
	}
	textField := cfg.TextField
	if textField == "" {
		textField = "description"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	cursor, err := client.Database(cfg.Database).Collection(cfg.Collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", cfg.Collection, err)
	}
	defer cursor.Close(ctx)

	var items []Item
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding catalog document: %w", err)
		}
		items = append(items, itemFromMongoDoc(doc, idField, titleField, textField))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection %s: %w", cfg.Collection, err)
	}

	cat := New(name, items)

	logger.Info("loaded catalog from mongodb",
		zap.String("catalog", name),
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
		zap.Int("items", cat.Len()),
	)

	return cat, nil
}

func itemFromMongoDoc(doc bson.M, idField, titleField, textField string) Item {
	item := Item{
		Metadata: make(map[string]any),
	}

	if id, ok := doc[idField].(string); ok {
		item.ID = id
	}
	if title, ok := doc[titleField].(string); ok {
		item.Title = title
	}

	desc, _ := doc[textField].(string)
	item.Text = joinText(item.Title, desc)

	for k, v := range doc {
		if k == idField || k == titleField || k == textField || k == "_id" {
			continue
		}
		item.Metadata[k] = v
	}

	return item
}
