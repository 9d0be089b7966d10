// Package catalogutils constructs catalogs from configuration.
package catalogutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/catalog"
)

// LoadCatalogOpts selects and configures a catalog source.
type LoadCatalogOpts struct {
	Source string
	Name   string

	// Path is the JSON file path for the "json" source.
	Path string

	// Mongo settings for the "mongo" source.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Postgres settings for the "postgres" source.
	PostgresDSN   string
	PostgresTable string

	Logger *zap.Logger
}

// LoadCatalog loads the full catalog from the configured source.
func LoadCatalog(ctx context.Context, o *LoadCatalogOpts) (*catalog.Catalog, error) {
	switch o.Source {
	case "json", "":
		return catalog.LoadJSONFile(o.Name, o.Path, o.Logger)
	case "mongo":
		return catalog.LoadMongo(ctx, o.Name, catalog.MongoConfig{
			URI:        o.MongoURI,
			Database:   o.MongoDatabase,
			Collection: o.MongoCollection,
		}, o.Logger)
	case "postgres":
		return catalog.LoadPostgres(ctx, o.Name, catalog.PostgresConfig{
			DSN:   o.PostgresDSN,
			Table: o.PostgresTable,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", o.Source)
	}
}
