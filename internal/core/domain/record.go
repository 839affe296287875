package domain

import (
	"strings"
	"time"
)

// DomainID identifies a knowledge domain (category) within the corpus.
type DomainID string

// The fixed set of knowledge domains.
const (
	DomainMarket        DomainID = "market"
	DomainRegulatory    DomainID = "regulatory"
	DomainEnvironmental DomainID = "environmental"
	DomainFinancial     DomainID = "financial"
	DomainNeighborhood  DomainID = "neighborhood"
	DomainTechnology    DomainID = "technology"
)

// AllDomains returns every known domain in stable order.
func AllDomains() []DomainID {
	return []DomainID{
		DomainMarket,
		DomainRegulatory,
		DomainEnvironmental,
		DomainFinancial,
		DomainNeighborhood,
		DomainTechnology,
	}
}

// IsValidDomain reports whether id names a known knowledge domain.
func IsValidDomain(id DomainID) bool {
	for _, d := range AllDomains() {
		if d == id {
			return true
		}
	}
	return false
}

// KnowledgeRecord is a single unit of retrievable knowledge.
// It is the canonical representation after normalisation.
type KnowledgeRecord struct {
	// ID is the unique identifier, stable across reloads.
	ID string

	// Domain is the knowledge domain this record belongs to.
	// Immutable once set.
	Domain DomainID

	// Title is a short human-readable label.
	Title string

	// Summary is a one-paragraph synopsis.
	Summary string

	// KeyFindings is an ordered sequence of short factual strings.
	KeyFindings []string

	// Metrics maps metric name to a numeric or string value.
	Metrics map[string]any

	// Tags are free-text topical labels.
	Tags []string

	// GeographicScope lists location strings the record applies to.
	GeographicScope []string

	// Recommendations are explicit action items carried by the source record.
	Recommendations []string

	// ConfidenceSource is a record-level trust indicator set at ingestion (0.0-1.0).
	// It is independent of query-time relevance.
	ConfidenceSource float64

	// IsMetadata marks records synthesised from a bare metadata/summary object.
	IsMetadata bool

	// Timestamp is the creation/refresh time.
	Timestamp time.Time
}

// SearchText returns the flattened text used for indexing: title, summary,
// key findings, tags and geographic scope concatenated.
func (r *KnowledgeRecord) SearchText() string {
	parts := make([]string, 0, 2+len(r.KeyFindings)+len(r.Tags)+len(r.GeographicScope))
	if r.Title != "" {
		parts = append(parts, r.Title)
	}
	if r.Summary != "" {
		parts = append(parts, r.Summary)
	}
	parts = append(parts, r.KeyFindings...)
	parts = append(parts, r.Tags...)
	parts = append(parts, r.GeographicScope...)
	return strings.Join(parts, " ")
}

// Indexable reports whether the record carries any retrievable text.
// A record with neither title nor summary is not retrievable.
func (r *KnowledgeRecord) Indexable() bool {
	return strings.TrimSpace(r.Title) != "" || strings.TrimSpace(r.Summary) != ""
}
