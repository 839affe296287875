package domain

import "time"

// DataPoint is a single metric extracted from a source record.
type DataPoint struct {
	// Metric is the metric name.
	Metric string

	// Value is the metric value (numeric or string).
	Value any

	// Trend is an optional direction annotation (e.g. "rising", "stable").
	Trend string

	// Domain is the knowledge domain the metric came from.
	Domain DomainID
}

// SynthesisResult is the merged, confidence-scored answer for one query.
// It is created per request and not persisted by the engine.
type SynthesisResult struct {
	// Insights is the ordered, deduplicated list of extracted insight strings.
	Insights []string

	// DataPoints are the metrics extracted from contributing records.
	DataPoints []DataPoint

	// Confidence is the overall answer confidence (0.0-1.0).
	Confidence float64

	// ExecutiveSummary is the intent-specific narrative summary.
	ExecutiveSummary string

	// Recommendations are intent-specific action items.
	Recommendations []string

	// NextSteps are suggested follow-up actions.
	NextSteps []string

	// Sources lists the domains that contributed at least one hit.
	Sources []DomainID

	// Enriched is true when an external provider rephrased the summary.
	Enriched bool

	// GeneratedAt is when the result was produced.
	GeneratedAt time.Time
}

// Hit is a single retrieval match from a domain index.
type Hit struct {
	// Record is the matched knowledge record.
	Record KnowledgeRecord

	// Score is the relevance score (0.0-1.0).
	Score float64
}

// AgentCapability describes one registry entry: a knowledge domain and
// what it can answer. Read-only after startup.
type AgentCapability struct {
	// Domain is the domain identifier.
	Domain DomainID

	// DisplayName is the human-readable name.
	DisplayName string

	// Description summarises the questions this domain covers.
	Description string
}
