package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent semmatch configuration stored as
// config.toml in the .semmatch/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	TextGen     TextGenConfig     `toml:"textgen"`
	Cache       CacheConfig       `toml:"cache"`
	Normalizer  NormalizerConfig  `toml:"normalizer"`
	Events      EventsConfig      `toml:"events"`
	API         APIConfig         `toml:"api"`
}

// CatalogConfig holds the occupation catalog source settings.
type CatalogConfig struct {
	Source          string `toml:"source,omitempty"`
	Path            string `toml:"path,omitempty"`
	Name            string `toml:"name,omitempty"`
	Watch           bool   `toml:"watch,omitempty"`
	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty"`
	PostgresDSN     string `toml:"postgres_dsn,omitempty"`
	PostgresTable   string `toml:"postgres_table,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Host       string `toml:"host,omitempty"`
	Port       int    `toml:"port,omitempty"`
	DBPath     string `toml:"db_path,omitempty"`
	Collection string `toml:"collection,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
}

// TextGenConfig holds text generation provider settings.
type TextGenConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

// CacheConfig holds semantic cache settings.
type CacheConfig struct {
	Enabled         bool    `toml:"enabled,omitempty"`
	Dir             string  `toml:"dir,omitempty"`
	Threshold       float64 `toml:"threshold,omitempty"`
	CheckpointEvery int     `toml:"checkpoint_every,omitempty"`
}

// NormalizerConfig holds batch normalization settings.
type NormalizerConfig struct {
	TopK      int `toml:"top_k,omitempty"`
	MinMonths int `toml:"min_months,omitempty"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"catalog.source": {
		get: func(c *Config) string { return c.Catalog.Source },
		set: func(c *Config, v string) error { c.Catalog.Source = v; return nil },
	},
	"catalog.path": {
		get: func(c *Config) string { return c.Catalog.Path },
		set: func(c *Config, v string) error { c.Catalog.Path = v; return nil },
	},
	"catalog.name": {
		get: func(c *Config) string { return c.Catalog.Name },
		set: func(c *Config, v string) error { c.Catalog.Name = v; return nil },
	},
	"catalog.watch": {
		get: func(c *Config) string { return strconv.FormatBool(c.Catalog.Watch) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for catalog.watch: %w", err)
			}
			c.Catalog.Watch = b
			return nil
		},
	},
	"catalog.mongo_uri": {
		get: func(c *Config) string { return c.Catalog.MongoURI },
		set: func(c *Config, v string) error { c.Catalog.MongoURI = v; return nil },
	},
	"catalog.mongo_database": {
		get: func(c *Config) string { return c.Catalog.MongoDatabase },
		set: func(c *Config, v string) error { c.Catalog.MongoDatabase = v; return nil },
	},
	"catalog.mongo_collection": {
		get: func(c *Config) string { return c.Catalog.MongoCollection },
		set: func(c *Config, v string) error { c.Catalog.MongoCollection = v; return nil },
	},
	"catalog.postgres_dsn": {
		get: func(c *Config) string { return c.Catalog.PostgresDSN },
		set: func(c *Config, v string) error { c.Catalog.PostgresDSN = v; return nil },
	},
	"catalog.postgres_table": {
		get: func(c *Config) string { return c.Catalog.PostgresTable },
		set: func(c *Config, v string) error { c.Catalog.PostgresTable = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.api_key": {
		get: func(c *Config) string { return c.Embedding.APIKey },
		set: func(c *Config, v string) error { c.Embedding.APIKey = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.target": {
		get: func(c *Config) string { return c.VectorStore.Target },
		set: func(c *Config, v string) error { c.VectorStore.Target = v; return nil },
	},
	"vector_store.host": {
		get: func(c *Config) string { return c.VectorStore.Host },
		set: func(c *Config, v string) error { c.VectorStore.Host = v; return nil },
	},
	"vector_store.port": {
		get: func(c *Config) string {
			if c.VectorStore.Port == 0 {
				return ""
			}
			return strconv.Itoa(c.VectorStore.Port)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for vector_store.port: %w", err)
			}
			c.VectorStore.Port = n
			return nil
		},
	},
	"vector_store.db_path": {
		get: func(c *Config) string { return c.VectorStore.DBPath },
		set: func(c *Config, v string) error { c.VectorStore.DBPath = v; return nil },
	},
	"vector_store.collection": {
		get: func(c *Config) string { return c.VectorStore.Collection },
		set: func(c *Config, v string) error { c.VectorStore.Collection = v; return nil },
	},
	"vector_store.api_key": {
		get: func(c *Config) string { return c.VectorStore.APIKey },
		set: func(c *Config, v string) error { c.VectorStore.APIKey = v; return nil },
	},
	"textgen.provider": {
		get: func(c *Config) string { return c.TextGen.Provider },
		set: func(c *Config, v string) error { c.TextGen.Provider = v; return nil },
	},
	"textgen.target": {
		get: func(c *Config) string { return c.TextGen.Target },
		set: func(c *Config, v string) error { c.TextGen.Target = v; return nil },
	},
	"textgen.model": {
		get: func(c *Config) string { return c.TextGen.Model },
		set: func(c *Config, v string) error { c.TextGen.Model = v; return nil },
	},
	"textgen.api_key": {
		get: func(c *Config) string { return c.TextGen.APIKey },
		set: func(c *Config, v string) error { c.TextGen.APIKey = v; return nil },
	},
	"cache.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Cache.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for cache.enabled: %w", err)
			}
			c.Cache.Enabled = b
			return nil
		},
	},
	"cache.dir": {
		get: func(c *Config) string { return c.Cache.Dir },
		set: func(c *Config, v string) error { c.Cache.Dir = v; return nil },
	},
	"cache.threshold": {
		get: func(c *Config) string {
			if c.Cache.Threshold == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Cache.Threshold, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for cache.threshold: %w", err)
			}
			c.Cache.Threshold = f
			return nil
		},
	},
	"cache.checkpoint_every": {
		get: func(c *Config) string {
			if c.Cache.CheckpointEvery == 0 {
				return ""
			}
			return strconv.Itoa(c.Cache.CheckpointEvery)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for cache.checkpoint_every: %w", err)
			}
			c.Cache.CheckpointEvery = n
			return nil
		},
	},
	"normalizer.top_k": {
		get: func(c *Config) string {
			if c.Normalizer.TopK == 0 {
				return ""
			}
			return strconv.Itoa(c.Normalizer.TopK)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for normalizer.top_k: %w", err)
			}
			c.Normalizer.TopK = n
			return nil
		},
	},
	"normalizer.min_months": {
		get: func(c *Config) string {
			if c.Normalizer.MinMonths == 0 {
				return ""
			}
			return strconv.Itoa(c.Normalizer.MinMonths)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for normalizer.min_months: %w", err)
			}
			c.Normalizer.MinMonths = n
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}
