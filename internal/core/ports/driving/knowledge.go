package driving

import (
	"context"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

// KnowledgeService manages the lifecycle of the knowledge base:
// loading domain snapshots, rebuilding indices and reacting to
// producer refresh signals.
type KnowledgeService interface {
	// LoadAll loads every available domain snapshot. A failure in one
	// domain does not abort the others; that domain serves empty
	// results until the next successful reload.
	LoadAll(ctx context.Context) error

	// ReloadDomain reloads a single domain's snapshot, rebuilds its
	// index and invalidates affected cache entries.
	ReloadDomain(ctx context.Context, id domain.DomainID) error

	// Capabilities returns the registry's capability table.
	Capabilities() []domain.AgentCapability

	// RecordCount returns the number of indexed records for a domain.
	RecordCount(id domain.DomainID) int
}
