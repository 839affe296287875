package driving

import (
	"context"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

// QueryService is the engine's single inbound query operation.
// External layers (CLI, HTTP) invoke it with a raw query string and
// receive a structured, confidence-scored result.
type QueryService interface {
	// Query answers a natural-language question over the knowledge base.
	// Data-sparsity conditions resolve to a well-formed low-confidence
	// result; only unrecoverable conditions return an error.
	Query(ctx context.Context, raw string, opts QueryOptions) (*domain.SynthesisResult, error)
}

// QueryOptions configures a single query.
type QueryOptions struct {
	// TopK is the per-domain hit budget (default 10).
	TopK int

	// BypassCache skips the cache for this request.
	BypassCache bool
}
