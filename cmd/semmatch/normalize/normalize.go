// Package normalizecmder provides the normalize command for batch profile
// normalization.
package normalizecmder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	catalogutils "github.com/talentlens/semmatch/pkg/catalog/utils"
	"github.com/talentlens/semmatch/pkg/cliui"
	"github.com/talentlens/semmatch/pkg/config"
	"github.com/talentlens/semmatch/pkg/dotdir"
	"github.com/talentlens/semmatch/pkg/embeddings"
	embeddingutils "github.com/talentlens/semmatch/pkg/embeddings/utils"
	eventstreamutils "github.com/talentlens/semmatch/pkg/eventstream/utils"
	"github.com/talentlens/semmatch/pkg/logger"
	"github.com/talentlens/semmatch/pkg/matcher"
	"github.com/talentlens/semmatch/pkg/normalizer"
	"github.com/talentlens/semmatch/pkg/semcache"
	textgenutils "github.com/talentlens/semmatch/pkg/textgen/utils"
)

type normalizeCommander struct {
	profilesPath string
	debug        bool
	configDir    string
	v            *viper.Viper
	flagSet      config.FlagSet
	logger       *zap.Logger
}

const normalizeLongDesc string = `Normalize candidate profiles in batch.

Reads a JSON file of candidate profiles, filters out non-job and too-short
experiences, enriches each remaining experience into a normalized
description (via the semantic cache or the text generation provider),
matches it against the reference catalog, and publishes one event per
profile to the configured event stream.

The input file holds an array of profiles:
  [{"profile_id": "p1", "experiences": [{"title": "...", "description": "...", "duration_months": 24}]}]

Example:
  semmatch normalize ./profiles.json
  semmatch normalize ./profiles.json --events-provider kafka --events-brokers localhost:9092`

const normalizeShortDesc string = "Batch-normalize candidate profiles"

var normalizeFlags = []string{
	config.FlagCatalogSource,
	config.FlagCatalogPath,
	config.FlagCatalogName,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagTextGenProv,
	config.FlagTextGenModel,
	config.FlagCacheDir,
	config.FlagCacheThreshold,
	config.FlagTopK,
	config.FlagMinMonths,
	config.FlagEventsProv,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

func NewNormalizeCmd() *cobra.Command {
	cmder := &normalizeCommander{flagSet: config.DefaultFlagSet()}

	var flagTargets [13]string
	var topK, minMonths int

	cmd := &cobra.Command{
		Use:   "normalize <profiles.json>",
		Short: normalizeShortDesc,
		Long:  normalizeLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flagSet, normalizeFlags)
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.profilesPath = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	fs := cmder.flagSet
	config.AddStringFlag(cmd, fs, config.FlagCatalogSource, &flagTargets[0])
	config.AddStringFlag(cmd, fs, config.FlagCatalogPath, &flagTargets[1])
	config.AddStringFlag(cmd, fs, config.FlagCatalogName, &flagTargets[2])
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingProv, &flagTargets[3])
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingTgt, &flagTargets[4])
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingModel, &flagTargets[5])
	config.AddStringFlag(cmd, fs, config.FlagTextGenProv, &flagTargets[6])
	config.AddStringFlag(cmd, fs, config.FlagTextGenModel, &flagTargets[7])
	config.AddStringFlag(cmd, fs, config.FlagCacheDir, &flagTargets[8])
	config.AddStringFlag(cmd, fs, config.FlagCacheThreshold, &flagTargets[9])
	config.AddStringFlag(cmd, fs, config.FlagEventsProv, &flagTargets[10])
	config.AddStringFlag(cmd, fs, config.FlagEventsBrokers, &flagTargets[11])
	config.AddStringFlag(cmd, fs, config.FlagEventsTopic, &flagTargets[12])
	config.AddIntFlag(cmd, fs, config.FlagTopK, &topK)
	config.AddIntFlag(cmd, fs, config.FlagMinMonths, &minMonths)

	return cmd
}

func (c *normalizeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	ctx := context.Background()

	profiles, err := c.loadProfiles()
	if err != nil {
		return err
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.v.GetString("embedding.provider"),
		TargetURL:    c.v.GetString("embedding.target"),
		Model:        c.v.GetString("embedding.model"),
		APIKey:       c.v.GetString("embedding.api_key"),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	cat, err := catalogutils.LoadCatalog(ctx, &catalogutils.LoadCatalogOpts{
		Source:          c.v.GetString("catalog.source"),
		Name:            c.v.GetString("catalog.name"),
		Path:            c.v.GetString("catalog.path"),
		MongoURI:        c.v.GetString("catalog.mongo_uri"),
		MongoDatabase:   c.v.GetString("catalog.mongo_database"),
		MongoCollection: c.v.GetString("catalog.mongo_collection"),
		PostgresDSN:     c.v.GetString("catalog.postgres_dsn"),
		PostgresTable:   c.v.GetString("catalog.postgres_table"),
		Logger:          c.logger,
	})
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	m, err := matcher.New(ctx, matcher.Config{}, embedder, cat, c.logger)
	if err != nil {
		return fmt.Errorf("building matcher: %w", err)
	}
	defer func() { _ = m.Close() }()

	cache, err := c.newCache(embedder)
	if err != nil {
		return err
	}

	generator, err := textgenutils.NewGenerator(ctx, &textgenutils.NewGeneratorOpts{
		ProviderType: c.v.GetString("textgen.provider"),
		TargetURL:    c.v.GetString("textgen.target"),
		Model:        c.v.GetString("textgen.model"),
		APIKey:       c.v.GetString("textgen.api_key"),
	})
	if err != nil {
		return fmt.Errorf("creating text generator: %w", err)
	}
	defer func() { _ = generator.Close() }()

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: c.v.GetString("events.provider"),
		Brokers:      c.v.GetString("events.brokers"),
		Topic:        c.v.GetString("events.topic"),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	norm := normalizer.New(normalizer.Config{
		TopK:      c.v.GetInt("normalizer.top_k"),
		MinMonths: c.v.GetInt("normalizer.min_months"),
	}, cache, generator, m, publisher, c.logger)
	defer func() { _ = norm.Close() }()

	cli := logger.NewCLI(c.debug)

	failed := 0
	for _, profile := range profiles {
		event, err := norm.NormalizeProfile(ctx, profile)
		if err != nil {
			cli.Error("profile failed", "profile", profile.ID, "err", err)
			failed++
			continue
		}

		fmt.Printf("  %s %s %s\n",
			cliui.SuccessMark,
			cliui.KeyStyle.Render(profile.ID),
			cliui.DimStyle.Render(fmt.Sprintf(
				"%d in, %d filtered, %d cache hits, %d generated, %d skipped",
				event.Stats.ExperiencesIn,
				event.Stats.Filtered,
				event.Stats.CacheHits,
				event.Stats.Generated,
				event.Stats.Skipped,
			)),
		)
	}

	fmt.Printf("\n%s %d profiles processed, %d failed\n",
		cliui.Mark(nil),
		len(profiles)-failed,
		failed,
	)

	if failed > 0 {
		return fmt.Errorf("%d of %d profiles failed", failed, len(profiles))
	}
	return nil
}

func (c *normalizeCommander) loadProfiles() ([]normalizer.Profile, error) {
	data, err := os.ReadFile(c.profilesPath)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	var profiles []normalizer.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parsing profiles file: %w", err)
	}

	return profiles, nil
}

// newCache builds the semantic cache. When caching is disabled the cache
// still exists but is ephemeral: no persistence directory, nothing saved.
func (c *normalizeCommander) newCache(embedder embeddings.Embedder) (*semcache.Cache, error) {
	dir := ""
	if c.v.GetBool("cache.enabled") {
		dir = c.v.GetString("cache.dir")
		if dir == "" {
			var err error
			dir, err = dotdir.NewManager().CacheDir(c.configDir)
			if err != nil {
				return nil, fmt.Errorf("resolving cache directory: %w", err)
			}
		}
	}

	cache, err := semcache.New(semcache.Config{
		Threshold:       c.v.GetFloat64("cache.threshold"),
		Dir:             dir,
		CheckpointEvery: c.v.GetInt("cache.checkpoint_every"),
	}, embedder, c.logger)
	if err != nil {
		return nil, fmt.Errorf("opening semantic cache: %w", err)
	}

	return cache, nil
}
