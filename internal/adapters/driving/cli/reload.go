package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

var reloadCmd = &cobra.Command{
	Use:   "reload [domain]",
	Short: "Reload knowledge snapshots",
	Long: `Reloads domain snapshots from the knowledge directory and rebuilds
their indices. With no argument, reloads every available domain.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReload,
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if len(args) == 0 {
		if err := knowledgeService.LoadAll(cmd.Context()); err != nil {
			return fmt.Errorf("reload failed: %w", err)
		}
		cmd.Println("All domains reloaded.")
		return nil
	}

	id := domain.DomainID(args[0])
	if err := knowledgeService.ReloadDomain(cmd.Context(), id); err != nil {
		return fmt.Errorf("reload %s failed: %w", id, err)
	}
	cmd.Printf("Domain %s reloaded (%d records).\n", id, knowledgeService.RecordCount(id))
	return nil
}
