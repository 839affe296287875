// Package cli implements the insight command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	queryService     driving.QueryService
	knowledgeService driving.KnowledgeService
)

// initServices defers the final service wiring until flags are parsed,
// so --knowledge-dir can override the configured knowledge directory.
var initServices func(ctx context.Context, knowledgeDir string) error

var (
	verbose      bool
	knowledgeDir string
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Query a regional real-estate knowledge base",
	Long: `Insight answers natural-language questions over domain-partitioned
knowledge snapshots: market, regulatory, environmental, financial,
neighborhood and technology intelligence for the coverage area.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if initServices != nil {
			return initServices(cmd.Context(), knowledgeDir)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostic output")
	rootCmd.PersistentFlags().StringVar(&knowledgeDir, "knowledge-dir", "", "knowledge snapshot directory (overrides the configured location)")
}

// SetServices injects the driving services. Called by the composition
// root in main before Execute.
func SetServices(query driving.QueryService, knowledge driving.KnowledgeService) {
	queryService = query
	knowledgeService = knowledge
}

// SetInitializer registers the late wiring hook. The hook runs once
// flag parsing has resolved the knowledge directory, before any
// subcommand executes.
func SetInitializer(fn func(ctx context.Context, knowledgeDir string) error) {
	initServices = fn
}

// SetVersion overrides the build version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
