package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List knowledge domains and their record counts",
	RunE:  runDomains,
}

func init() {
	rootCmd.AddCommand(domainsCmd)
}

func runDomains(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	cmd.Println("Knowledge domains:")
	cmd.Println()
	for _, capability := range knowledgeService.Capabilities() {
		count := knowledgeService.RecordCount(capability.Domain)
		cmd.Printf("  %-14s %s (%d records)\n", capability.Domain, capability.DisplayName, count)
		cmd.Printf("  %-14s %s\n", "", capability.Description)
		cmd.Println()
	}
	return nil
}
