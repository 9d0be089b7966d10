// Package configcmder provides the config command for managing persistent
// semmatch configuration stored in the .semmatch/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent semmatch configuration.

Configuration is stored as config.toml in the .semmatch/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  catalog.source, catalog.path, catalog.name,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  vector_store.provider, vector_store.target,
  textgen.provider, textgen.model,
  cache.dir, cache.threshold,
  normalizer.top_k, normalizer.min_months,
  events.provider, events.brokers, events.topic,
  api.listen

Use subcommands to get, set, or list configuration values:
  semmatch config set <key> <value>    Set a configuration value
  semmatch config get <key>            Get a configuration value
  semmatch config list                 List all configuration values

Examples:
  semmatch config set catalog.path ./occupations.json
  semmatch config set embedding.model nomic-embed-text
  semmatch config get textgen.provider
  semmatch config list`

const configShortDesc string = "Manage persistent semmatch configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
