package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driving"
)

var (
	queryLimit   int
	queryJSON    bool
	queryNoCache bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question over the knowledge base",
	Long: `Interprets a natural-language question, fans it out to the relevant
knowledge domains and synthesises a confidence-scored answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 10, "maximum hits per domain")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	queryCmd.Flags().BoolVar(&queryNoCache, "no-cache", false, "bypass the result cache")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	result, err := queryService.Query(cmd.Context(), args[0], driving.QueryOptions{
		TopK:        queryLimit,
		BypassCache: queryNoCache,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputResultJSON(cmd, result)
	}
	return outputResultText(cmd, result)
}

func outputResultJSON(cmd *cobra.Command, result *domain.SynthesisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultText(cmd *cobra.Command, result *domain.SynthesisResult) error {
	cmd.Println(result.ExecutiveSummary)
	cmd.Println()
	cmd.Printf("Confidence: %.0f%%", result.Confidence*100)
	if result.Enriched {
		cmd.Printf(" (enriched)")
	}
	cmd.Println()

	if len(result.Insights) > 0 {
		cmd.Println()
		cmd.Println("Insights:")
		for _, insight := range result.Insights {
			cmd.Printf("  - %s\n", insight)
		}
	}

	if len(result.DataPoints) > 0 {
		cmd.Println()
		cmd.Println("Data points:")
		for _, dp := range result.DataPoints {
			cmd.Printf("  - %s: %v", dp.Metric, dp.Value)
			if dp.Trend != "" {
				cmd.Printf(" (%s)", dp.Trend)
			}
			cmd.Printf(" [%s]\n", dp.Domain)
		}
	}

	if len(result.Recommendations) > 0 {
		cmd.Println()
		cmd.Println("Recommendations:")
		for _, rec := range result.Recommendations {
			cmd.Printf("  - %s\n", rec)
		}
	}

	if len(result.Sources) > 0 {
		names := make([]string, len(result.Sources))
		for i, id := range result.Sources {
			names[i] = string(id)
		}
		cmd.Println()
		cmd.Printf("Sources: %s\n", strings.Join(names, ", "))
	}

	return nil
}
