package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

// ResultCache memoises synthesis results keyed by a normalised query
// signature. The cache is best-effort: callers treat every failure as a
// miss and recompute; cache errors never surface to the query caller.
type ResultCache interface {
	// Get returns the cached result for key, or domain.ErrCacheMiss if
	// the key is absent or its TTL has elapsed.
	Get(ctx context.Context, key string) (*domain.SynthesisResult, error)

	// Put stores a result under key with the given TTL. The domains the
	// result was computed from are recorded for targeted invalidation.
	// Writes are last-writer-wins per key.
	Put(ctx context.Context, key string, domains []domain.DomainID, result *domain.SynthesisResult, ttl time.Duration) error

	// InvalidateDomain evicts every entry whose domain set includes id.
	// Called eagerly on knowledge reloads to prevent stale answers.
	InvalidateDomain(ctx context.Context, id domain.DomainID) error

	// Close releases resources.
	Close() error
}
