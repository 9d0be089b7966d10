// Package matchcmder provides the match command for one-shot semantic
// matching against the reference catalog.
package matchcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	apimatch "github.com/talentlens/semmatch/api/match"
	"github.com/talentlens/semmatch/pkg/catalog"
	catalogutils "github.com/talentlens/semmatch/pkg/catalog/utils"
	"github.com/talentlens/semmatch/pkg/cliui"
	"github.com/talentlens/semmatch/pkg/config"
	embeddingutils "github.com/talentlens/semmatch/pkg/embeddings/utils"
	"github.com/talentlens/semmatch/pkg/logger"
	"github.com/talentlens/semmatch/pkg/matcher"
)

type matchCommander struct {
	query   string
	topK    int
	asJSON  bool
	debug   bool
	v       *viper.Viper
	flagSet config.FlagSet
	logger  *zap.Logger
}

const matchLongDesc string = `Match a free-form query against the reference catalog.

Loads the catalog, embeds it along with the query, and prints the top
matches ranked by cosine similarity. The catalog source, embedding provider,
and defaults come from config.toml, environment variables (SEMMATCH_
prefix), and flags, in ascending precedence.

Example:
  semmatch match "idraulico"
  semmatch match "software developer" --top-k 10
  semmatch match "pastry chef" --catalog-path ./occupations.json --json`

const matchShortDesc string = "Match a query against the catalog"

var matchFlags = []string{
	config.FlagCatalogSource,
	config.FlagCatalogPath,
	config.FlagCatalogName,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
}

func NewMatchCmd() *cobra.Command {
	cmder := &matchCommander{flagSet: config.DefaultFlagSet()}

	var catalogSource, catalogPath, catalogName string
	var embProvider, embTarget, embModel string

	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: matchShortDesc,
		Long:  matchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flagSet, matchFlags)
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	fs := cmder.flagSet
	config.AddStringFlag(cmd, fs, config.FlagCatalogSource, &catalogSource)
	config.AddStringFlag(cmd, fs, config.FlagCatalogPath, &catalogPath)
	config.AddStringFlag(cmd, fs, config.FlagCatalogName, &catalogName)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingProv, &embProvider)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingTgt, &embTarget)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingModel, &embModel)
	config.AddIntFlag(cmd, fs, config.FlagTopK, &cmder.topK)
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Output results as JSON")

	return cmd
}

func (c *matchCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	ctx := context.Background()

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

	output, err := apimatch.Match(ctx, c.query, c.topK, m, c.logger)
	if err != nil {
		return err
	}

	if c.asJSON {
		return json.NewEncoder(os.Stdout).Encode(output)
	}

	c.printResults(output, cat)
	return nil
}

func (c *matchCommander) printResults(output *apimatch.Output, cat *catalog.Catalog) {
	if output.Count == 0 {
		fmt.Println("No matches found.")
		return
	}

	fmt.Printf("\n%s %s %s\n\n",
		cliui.HeaderStyle.Render("Matches for:"),
		cliui.KeyStyle.Render(fmt.Sprintf("%q", output.Query)),
		cliui.DimStyle.Render(fmt.Sprintf("(catalog: %s, %d items)", cat.Name(), cat.Len())),
	)

	for i, result := range output.Results {
		fmt.Printf("  %s  %s  %s %s\n",
			cliui.RankStyle.Render(fmt.Sprintf("#%d", i+1)),
			cliui.ScoreStyle.Render(fmt.Sprintf("score: %s", result.Similarity)),
			cliui.ValueStyle.Render(result.Title),
			cliui.DimStyle.Render(result.ID),
		)
	}

	fmt.Println()
}
