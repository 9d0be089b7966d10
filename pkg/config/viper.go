package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/talentlens/semmatch/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SEMMATCH_ prefix. A .env file in the working directory is
// loaded first so local development secrets reach the env layer.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SEMMATCH_API_LISTEN, SEMMATCH_EMBEDDING_TARGET, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: SEMMATCH_API_LISTEN, SEMMATCH_CACHE_DIR, etc.
	// A missing .env file is not an error.
	_ = godotenv.Load()
	v.SetEnvPrefix("SEMMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Catalog
	v.SetDefault("catalog.source", d.Catalog.Source)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.name", d.Catalog.Name)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("catalog.mongo_uri", d.Catalog.MongoURI)
	v.SetDefault("catalog.mongo_database", d.Catalog.MongoDatabase)
	v.SetDefault("catalog.mongo_collection", d.Catalog.MongoCollection)
	v.SetDefault("catalog.postgres_dsn", d.Catalog.PostgresDSN)
	v.SetDefault("catalog.postgres_table", d.Catalog.PostgresTable)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("vector_store.host", d.VectorStore.Host)
	v.SetDefault("vector_store.port", d.VectorStore.Port)
	v.SetDefault("vector_store.db_path", d.VectorStore.DBPath)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)
	v.SetDefault("vector_store.api_key", d.VectorStore.APIKey)

	// Text generation
	v.SetDefault("textgen.provider", d.TextGen.Provider)
	v.SetDefault("textgen.target", d.TextGen.Target)
	v.SetDefault("textgen.model", d.TextGen.Model)
	v.SetDefault("textgen.api_key", d.TextGen.APIKey)

	// Semantic cache
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.threshold", d.Cache.Threshold)
	v.SetDefault("cache.checkpoint_every", d.Cache.CheckpointEvery)

	// Normalizer
	v.SetDefault("normalizer.top_k", d.Normalizer.TopK)
	v.SetDefault("normalizer.min_months", d.Normalizer.MinMonths)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// API
	v.SetDefault("api.listen", d.API.Listen)
}
