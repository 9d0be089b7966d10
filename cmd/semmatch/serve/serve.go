// Package servecmder provides the serve command for running the semmatch
// API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/api"
	apimcp "github.com/talentlens/semmatch/api/mcp"
	"github.com/talentlens/semmatch/pkg/catalog"
	catalogutils "github.com/talentlens/semmatch/pkg/catalog/utils"
	"github.com/talentlens/semmatch/pkg/config"
	"github.com/talentlens/semmatch/pkg/embeddings"
	embeddingutils "github.com/talentlens/semmatch/pkg/embeddings/utils"
	"github.com/talentlens/semmatch/pkg/logger"
	"github.com/talentlens/semmatch/pkg/matcher"
	"github.com/talentlens/semmatch/pkg/vector"
	vectorutils "github.com/talentlens/semmatch/pkg/vector/utils"
)

type serveCommander struct {
	debug   bool
	noMCP   bool
	v       *viper.Viper
	flagSet config.FlagSet
	logger  *zap.Logger
}

const serveLongDesc string = `Run the semmatch API server.

Loads the reference catalog, builds the vector index eagerly (so
configuration problems surface at startup, not on the first query), and
serves:
  GET /ping        Health check
  GET /v1/match    Semantic match endpoint
  /mcp             MCP server with the match tool

When catalog.watch is enabled for a JSON catalog, the index is rebuilt
automatically whenever the file changes.

Example:
  semmatch serve
  semmatch serve --api-listen :9090 --vector-store-provider qdrant`

const serveShortDesc string = "Run the semmatch API server"

var serveFlags = []string{
	config.FlagCatalogSource,
	config.FlagCatalogPath,
	config.FlagCatalogName,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagVectorProv,
	config.FlagVectorTgt,
	config.FlagAPIListen,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{flagSet: config.DefaultFlagSet()}

	var flagTargets [9]string
	var dims uint

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flagSet, serveFlags)
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
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
	config.AddUintFlag(cmd, fs, config.FlagEmbeddingDims, &dims)
	config.AddStringFlag(cmd, fs, config.FlagVectorProv, &flagTargets[6])
	config.AddStringFlag(cmd, fs, config.FlagVectorTgt, &flagTargets[7])
	config.AddStringFlag(cmd, fs, config.FlagAPIListen, &flagTargets[8])
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	loadCatalog := func(ctx context.Context) (*catalog.Catalog, error) {
		return catalogutils.LoadCatalog(ctx, &catalogutils.LoadCatalogOpts{
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
	}

	cat, err := loadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	m, err := c.newMatcher(ctx, embedder, cat)
	if err != nil {
		return fmt.Errorf("building matcher: %w", err)
	}
	defer func() { _ = m.Close() }()

	apiConfig := api.Config{
		ListenAddr: c.v.GetString("api.listen"),
		Matcher:    m,
	}

	mcpServer, err := apimcp.NewServer(apimcp.Config{
		Matcher: m,
		Noop:    c.noMCP,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	if !c.noMCP {
		apiConfig.MCPHandler = mcpServer.Handler()
	}

	server := api.NewServer(apiConfig, c.logger)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Rebuild the index when a watched JSON catalog file changes.
	if c.v.GetBool("catalog.watch") && c.v.GetString("catalog.source") == "json" {
		go func() {
			if err := m.Watch(ctx, c.v.GetString("catalog.path"), loadCatalog); err != nil && ctx.Err() == nil {
				errChan <- fmt.Errorf("catalog watcher error: %w", err)
			}
		}()
	}

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		return server.Shutdown()
	}
}

// newMatcher builds the matcher over the configured vector store. A
// provider that cannot be constructed is a startup failure: the server
// refuses to come up rather than silently serving a different store.
func (c *serveCommander) newMatcher(ctx context.Context, embedder embeddings.Embedder, cat *catalog.Catalog) (*matcher.Matcher, error) {
	factory := func() (vector.Driver, error) {
		driver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
			ProviderType: c.v.GetString("vector_store.provider"),
			TargetURL:    c.v.GetString("vector_store.target"),
			Host:         c.v.GetString("vector_store.host"),
			Port:         c.v.GetInt("vector_store.port"),
			DBPath:       c.v.GetString("vector_store.db_path"),
			Collection:   c.v.GetString("vector_store.collection"),
			Dimensions:   c.v.GetUint("embedding.dimensions"),
			APIKey:       c.v.GetString("vector_store.api_key"),
			Logger:       c.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating vector driver %q: %w",
				c.v.GetString("vector_store.provider"), err)
		}
		return driver, nil
	}

	return matcher.New(ctx, matcher.Config{IndexFactory: factory}, embedder, cat, c.logger)
}
