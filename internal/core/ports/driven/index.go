package driven

import (
	"context"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

// DomainIndex answers top-k relevance queries over one domain's records.
// An index is an immutable snapshot: it is built once and never mutated
// while serving queries. Reloads build a replacement and swap atomically.
type DomainIndex interface {
	// Search returns up to topK hits sorted by descending score.
	// Scores are in [0,1]. Search never fails: a domain with no
	// indexable text returns an empty slice.
	Search(ctx context.Context, query string, topK int) []domain.Hit

	// Len returns the number of indexed records.
	Len() int
}

// IndexBuilder constructs a DomainIndex from normalised records.
type IndexBuilder interface {
	// Build constructs a retrieval structure over the records.
	// A build failure for one domain must not abort others; callers
	// treat a failed domain as serving empty results.
	Build(id domain.DomainID, records []domain.KnowledgeRecord) (DomainIndex, error)
}
