package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --catalog
// on "semmatch match", "semmatch normalize" and "semmatch serve").
type Flag struct {
	// Name is the long flag name (e.g. "catalog").
	Name string

	// Shorthand is the one-letter short flag (e.g. "c"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "catalog.path").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagCatalogSource  = "catalog-source"
	FlagCatalogPath    = "catalog-path"
	FlagCatalogName    = "catalog-name"
	FlagEmbeddingProv  = "embedding-provider"
	FlagEmbeddingTgt   = "embedding-target"
	FlagEmbeddingModel = "embedding-model"
	FlagEmbeddingDims  = "embedding-dimensions"
	FlagVectorProv     = "vector-store-provider"
	FlagVectorTgt      = "vector-store-target"
	FlagTextGenProv    = "textgen-provider"
	FlagTextGenModel   = "textgen-model"
	FlagCacheDir       = "cache-dir"
	FlagCacheThreshold = "cache-threshold"
	FlagTopK           = "top-k"
	FlagMinMonths      = "min-months"
	FlagEventsProv     = "events-provider"
	FlagEventsBrokers  = "events-brokers"
	FlagEventsTopic    = "events-topic"
	FlagAPIListen      = "api-listen"
)

// DefaultFlagSet returns the standard flag definitions shared across
// commands.
func DefaultFlagSet() FlagSet {
	return FlagSet{
		FlagCatalogSource: {
			Name: "catalog-source", ViperKey: "catalog.source",
			Description: "catalog source backend (json, mongo, postgres)",
		},
		FlagCatalogPath: {
			Name: "catalog-path", Shorthand: "c", ViperKey: "catalog.path",
			Description: "path to the catalog JSON file",
		},
		FlagCatalogName: {
			Name: "catalog-name", ViperKey: "catalog.name",
			Description: "logical catalog name",
		},
		FlagEmbeddingProv: {
			Name: "embedding-provider", ViperKey: "embedding.provider",
			Description: "embedding provider (ollama, openai)",
		},
		FlagEmbeddingTgt: {
			Name: "embedding-target", ViperKey: "embedding.target",
			Description: "embedding provider base URL",
		},
		FlagEmbeddingModel: {
			Name: "embedding-model", ViperKey: "embedding.model",
			Description: "embedding model name",
		},
		FlagEmbeddingDims: {
			Name: "embedding-dimensions", ViperKey: "embedding.dimensions",
			Description: "embedding vector dimensions",
		},
		FlagVectorProv: {
			Name: "vector-store-provider", ViperKey: "vector_store.provider",
			Description: "vector store provider (flat, sqlitevec, chroma, qdrant)",
		},
		FlagVectorTgt: {
			Name: "vector-store-target", ViperKey: "vector_store.target",
			Description: "vector store URL for remote providers",
		},
		FlagTextGenProv: {
			Name: "textgen-provider", ViperKey: "textgen.provider",
			Description: "text generation provider (openai, gemini)",
		},
		FlagTextGenModel: {
			Name: "textgen-model", ViperKey: "textgen.model",
			Description: "text generation model name",
		},
		FlagCacheDir: {
			Name: "cache-dir", ViperKey: "cache.dir",
			Description: "semantic cache directory",
		},
		FlagCacheThreshold: {
			Name: "cache-threshold", ViperKey: "cache.threshold",
			Description: "semantic cache similarity threshold",
		},
		FlagTopK: {
			Name: "top-k", Shorthand: "k", ViperKey: "normalizer.top_k",
			Description: "number of catalog matches to return",
		},
		FlagMinMonths: {
			Name: "min-months", ViperKey: "normalizer.min_months",
			Description: "minimum experience duration in months",
		},
		FlagEventsProv: {
			Name: "events-provider", ViperKey: "events.provider",
			Description: "event stream provider (nop, kafka)",
		},
		FlagEventsBrokers: {
			Name: "events-brokers", ViperKey: "events.brokers",
			Description: "comma-separated Kafka broker list",
		},
		FlagEventsTopic: {
			Name: "events-topic", ViperKey: "events.topic",
			Description: "event stream topic name",
		},
		FlagAPIListen: {
			Name: "api-listen", ViperKey: "api.listen",
			Description: "API server listen address",
		},
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
