// Package semmatchcmder
package semmatchcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/talentlens/semmatch/cmd/semmatch/config"
	matchcmder "github.com/talentlens/semmatch/cmd/semmatch/match"
	normalizecmder "github.com/talentlens/semmatch/cmd/semmatch/normalize"
	servecmder "github.com/talentlens/semmatch/cmd/semmatch/serve"
	versioncmder "github.com/talentlens/semmatch/cmd/semmatch/version"
)

const semmatchLongDesc string = `Semmatch is the semantic matching engine of the TalentLens platform.

Match free-form text against reference catalogs using:
  semmatch match       One-shot match of a query against the catalog
  semmatch normalize   Batch-normalize candidate profiles
  semmatch serve       Run the REST + MCP API server`

const semmatchShortDesc string = "Semmatch - Semantic Matching Engine"

func NewSemmatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semmatch",
		Short: semmatchShortDesc,
		Long:  semmatchLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .semmatch config directory")

	// Add subcommands
	cmd.AddCommand(matchcmder.NewMatchCmd())
	cmd.AddCommand(normalizecmder.NewNormalizeCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
