package driven

import (
	"context"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

// RecordSource supplies raw domain knowledge files deposited by the
// external producer. The engine does not own the files' refresh
// schedule; it only reads snapshots and reacts to change signals.
type RecordSource interface {
	// Domains lists the domains for which a snapshot file exists.
	Domains(ctx context.Context) ([]domain.DomainID, error)

	// Load returns the raw bytes of the current snapshot for a domain.
	Load(ctx context.Context, id domain.DomainID) ([]byte, error)

	// Watch invokes onChange whenever a domain's snapshot is replaced.
	// It returns once watching is established; delivery stops when ctx
	// is cancelled. Sources that cannot watch return an error.
	Watch(ctx context.Context, onChange func(domain.DomainID)) error

	// Close releases resources.
	Close() error
}
