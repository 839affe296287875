package driven

import (
	"context"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

// RecordNormaliser transforms raw domain files into knowledge records.
// Domain files arrive in heterogeneous shapes; the normaliser resolves
// them into the canonical KnowledgeRecord form.
type RecordNormaliser interface {
	// Normalise parses one raw domain file and returns its records.
	// Malformed entries are skipped, never fatal; the count of skipped
	// entries is reported alongside the records.
	Normalise(ctx context.Context, id domain.DomainID, raw []byte) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation for one domain file.
type NormaliseResult struct {
	// Records are the normalised knowledge records.
	Records []domain.KnowledgeRecord

	// Skipped counts entries dropped as malformed or unretrievable.
	Skipped int
}
