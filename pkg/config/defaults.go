package config

const (
	defaultCatalogSource = "json"
	defaultCatalogName   = "occupations"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	defaultVectorProvider = "flat"

	defaultTextGenProvider = "openai"
	defaultTextGenTarget   = "https://api.openai.com/v1"
	defaultTextGenModel    = "gpt-4o-mini"

	defaultCacheThreshold       = 0.75
	defaultCacheCheckpointEvery = 32

	defaultNormalizerTopK      = 3
	defaultNormalizerMinMonths = 6

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "semmatch.profiles"

	defaultAPIListen = ":8081"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Catalog: CatalogConfig{
			Source: defaultCatalogSource,
			Name:   defaultCatalogName,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		TextGen: TextGenConfig{
			Provider: defaultTextGenProvider,
			Target:   defaultTextGenTarget,
			Model:    defaultTextGenModel,
		},
		Cache: CacheConfig{
			Enabled:         true,
			Threshold:       defaultCacheThreshold,
			CheckpointEvery: defaultCacheCheckpointEvery,
		},
		Normalizer: NormalizerConfig{
			TopK:      defaultNormalizerTopK,
			MinMonths: defaultNormalizerMinMonths,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
