package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// Synthesis constants. The confidence band is load-bearing: a perfect
// match never claims certainty and an empty-but-queried domain never
// collapses confidence to zero. The blend coefficients inside the band
// are tunable heuristics.
const (
	topHitsPerDomain = 5
	findingsPerHit   = 2

	confidenceFloor    = 0.6
	confidenceCeiling  = 0.95
	noResultConfidence = 0.4

	volumeBonusPerHit   = 0.005
	volumeBonusCap      = 0.03
	duplicatePenalty    = 0.005
	duplicatePenaltyCap = 0.02
)

// Synthesizer merges per-domain hits into one ranked, confidence-scored
// answer.
type Synthesizer struct{}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize builds a SynthesisResult from the gathered hits. It never
// returns an empty insight list when any domain produced a hit, and it
// resolves the zero-hit case to a valid low-confidence result rather
// than an error.
func (s *Synthesizer) Synthesize(qc domain.QueryContext, perDomain map[domain.DomainID][]domain.Hit) *domain.SynthesisResult {
	result := &domain.SynthesisResult{GeneratedAt: time.Now()}

	// Stable domain order keeps output deterministic.
	ordered := orderedDomains(perDomain)

	var allScores []float64
	duplicates := 0
	totalHits := 0
	seenInsights := make(map[string]bool)

	for _, id := range ordered {
		hits := perDomain[id]
		if len(hits) == 0 {
			continue
		}
		result.Sources = append(result.Sources, id)
		totalHits += len(hits)

		top := hits
		if len(top) > topHitsPerDomain {
			top = top[:topHitsPerDomain]
		}

		for _, hit := range top {
			allScores = append(allScores, hit.Score)

			for _, insight := range hitInsights(hit.Record) {
				key := strings.ToLower(strings.TrimSpace(insight))
				if key == "" {
					continue
				}
				if seenInsights[key] {
					duplicates++
					continue
				}
				seenInsights[key] = true
				result.Insights = append(result.Insights, insight)
			}

			result.DataPoints = append(result.DataPoints, hitDataPoints(hit.Record)...)
			result.Recommendations = append(result.Recommendations, hit.Record.Recommendations...)
		}
	}

	if totalHits == 0 {
		result.Confidence = noResultConfidence
		result.ExecutiveSummary = insufficientDataSummary(qc)
		result.NextSteps = []string{
			"Broaden the question or drop location filters.",
			"Verify the knowledge base has been loaded for the relevant domains.",
		}
		logger.Info("Synthesizer: no hits in any domain, returning insufficient-data result")
		return result
	}

	result.Confidence = s.confidence(allScores, totalHits, duplicates)
	result.ExecutiveSummary = executiveSummary(qc, result)
	result.Recommendations = append(result.Recommendations, intentRecommendations(qc)...)
	result.Recommendations = dedupeStrings(result.Recommendations)
	result.NextSteps = intentNextSteps(qc)

	logger.Debug("Synthesizer: %d insights, %d data points, confidence %.2f from %d domains",
		len(result.Insights), len(result.DataPoints), result.Confidence, len(result.Sources))

	return result
}

// confidence blends the top-3 average hit score (normalised into the
// [floor, ceiling] band) with a volume adjustment: corroborating hits
// nudge it up, near-duplicate content nudges it down.
func (s *Synthesizer) confidence(scores []float64, totalHits, duplicates int) float64 {
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	n := len(scores)
	if n > 3 {
		n = 3
	}
	var avg float64
	for _, sc := range scores[:n] {
		avg += sc
	}
	avg /= float64(n)

	conf := confidenceFloor + avg*(confidenceCeiling-confidenceFloor)

	bonus := volumeBonusPerHit * float64(totalHits-1)
	if bonus > volumeBonusCap {
		bonus = volumeBonusCap
	}
	penalty := duplicatePenalty * float64(duplicates)
	if penalty > duplicatePenaltyCap {
		penalty = duplicatePenaltyCap
	}
	conf += bonus - penalty

	if conf > confidenceCeiling {
		conf = confidenceCeiling
	}
	if conf < confidenceFloor {
		conf = confidenceFloor
	}
	return conf
}

// hitInsights extracts insight strings from one record: its summary and
// the first two key findings.
func hitInsights(rec domain.KnowledgeRecord) []string {
	insights := make([]string, 0, 1+findingsPerHit)
	if strings.TrimSpace(rec.Summary) != "" {
		insights = append(insights, rec.Summary)
	}
	findings := rec.KeyFindings
	if len(findings) > findingsPerHit {
		findings = findings[:findingsPerHit]
	}
	insights = append(insights, findings...)
	return insights
}

// hitDataPoints converts a record's metrics into data points, unwrapping
// {"value": ..., "trend": ...} objects when the record exposes a trend.
func hitDataPoints(rec domain.KnowledgeRecord) []domain.DataPoint {
	if len(rec.Metrics) == 0 {
		return nil
	}

	names := make([]string, 0, len(rec.Metrics))
	for name := range rec.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	points := make([]domain.DataPoint, 0, len(names))
	for _, name := range names {
		dp := domain.DataPoint{Metric: name, Value: rec.Metrics[name], Domain: rec.Domain}
		if obj, ok := dp.Value.(map[string]any); ok {
			if v, ok := obj["value"]; ok {
				dp.Value = v
			}
			if t, ok := obj["trend"].(string); ok {
				dp.Trend = t
			}
		}
		points = append(points, dp)
	}
	return points
}

// executiveSummary renders the intent-specific narrative.
func executiveSummary(qc domain.QueryContext, result *domain.SynthesisResult) string {
	place := qc.Location
	if place == "" {
		place = "the coverage area"
	}

	lead := leadDataPoint(qc.Intent, result.DataPoints)

	var sb strings.Builder
	switch qc.Intent {
	case domain.IntentInvestmentOpportunity:
		sb.WriteString(fmt.Sprintf("Investment outlook for %s: ", place))
		if lead != nil {
			sb.WriteString(fmt.Sprintf("%s stands at %v. ", humanMetric(lead.Metric), lead.Value))
		}
	case domain.IntentRegulatoryCompliance:
		sb.WriteString(fmt.Sprintf("Regulatory picture for %s: ", place))
		if lead != nil {
			sb.WriteString(fmt.Sprintf("%s currently reads %v. ", humanMetric(lead.Metric), lead.Value))
		}
	case domain.IntentRiskAssessment:
		sb.WriteString(fmt.Sprintf("Risk profile for %s: ", place))
		if lead != nil {
			sb.WriteString(fmt.Sprintf("%s at %v. ", humanMetric(lead.Metric), lead.Value))
		}
	case domain.IntentNeighborhoodAssessment:
		sb.WriteString(fmt.Sprintf("Neighborhood assessment for %s: ", place))
	case domain.IntentDevelopmentFeasibility:
		sb.WriteString(fmt.Sprintf("Development feasibility for %s: ", place))
		if lead != nil {
			sb.WriteString(fmt.Sprintf("%s at %v. ", humanMetric(lead.Metric), lead.Value))
		}
	case domain.IntentCompetitiveIntelligence:
		sb.WriteString(fmt.Sprintf("Competitive landscape in %s: ", place))
	case domain.IntentMarketAnalysis:
		sb.WriteString(fmt.Sprintf("Market analysis for %s: ", place))
		if lead != nil {
			sb.WriteString(fmt.Sprintf("%s at %v. ", humanMetric(lead.Metric), lead.Value))
		}
	default:
		sb.WriteString(fmt.Sprintf("Analysis for %s: ", place))
	}

	if len(result.Insights) > 0 {
		sb.WriteString(result.Insights[0])
	}
	sb.WriteString(fmt.Sprintf(" Drawn from %d insight(s) across %d domain(s).",
		len(result.Insights), len(result.Sources)))

	return sb.String()
}

// leadDataPoint picks the metric the summary should lead with:
// investment intents prefer ROI/price metrics, regulatory intents
// prefer permit/zoning metrics, then first available.
func leadDataPoint(intent domain.Intent, points []domain.DataPoint) *domain.DataPoint {
	if len(points) == 0 {
		return nil
	}

	var preferred []string
	switch intent {
	case domain.IntentInvestmentOpportunity, domain.IntentMarketAnalysis:
		preferred = []string{"roi", "return", "appreciation", "median", "price"}
	case domain.IntentRegulatoryCompliance, domain.IntentDevelopmentFeasibility:
		preferred = []string{"permit", "zoning", "approval"}
	case domain.IntentRiskAssessment:
		preferred = []string{"flood", "risk", "exposure"}
	}

	for _, key := range preferred {
		for i := range points {
			if strings.Contains(strings.ToLower(points[i].Metric), key) {
				return &points[i]
			}
		}
	}
	return &points[0]
}

// insufficientDataSummary is the distinguishable zero-hit state.
func insufficientDataSummary(qc domain.QueryContext) string {
	place := qc.Location
	if place == "" {
		place = "the requested area"
	}
	return fmt.Sprintf(
		"Insufficient data: no knowledge records matched the question about %s. "+
			"The knowledge base may not cover this topic yet.", place)
}

// intentRecommendations returns intent-specific action templates
// parameterised by the query's location and entities.
func intentRecommendations(qc domain.QueryContext) []string {
	place := qc.Location
	if place == "" {
		place = "the coverage area"
	}
	subject := "properties"
	if len(qc.SubjectEntities) > 0 {
		subject = strings.Join(qc.SubjectEntities, ", ") + " properties"
	}

	switch qc.Intent {
	case domain.IntentInvestmentOpportunity:
		return []string{
			fmt.Sprintf("Shortlist %s in %s with above-median appreciation.", subject, place),
			"Model cash flow against current financing conditions.",
		}
	case domain.IntentRegulatoryCompliance:
		return []string{
			fmt.Sprintf("Confirm current zoning designations for target parcels in %s.", place),
			"Review pending ordinance changes before committing capital.",
		}
	case domain.IntentRiskAssessment:
		return []string{
			fmt.Sprintf("Pull FEMA flood-zone determinations for %s parcels.", place),
			"Price insurance and mitigation costs into underwriting.",
		}
	case domain.IntentDevelopmentFeasibility:
		return []string{
			fmt.Sprintf("Commission a feasibility study for %s in %s.", subject, place),
			"Sequence entitlement work ahead of site acquisition.",
		}
	case domain.IntentNeighborhoodAssessment:
		return []string{
			fmt.Sprintf("Tour %s and compare school ratings block by block.", place),
		}
	case domain.IntentCompetitiveIntelligence:
		return []string{
			fmt.Sprintf("Track competitor acquisitions and listings in %s quarterly.", place),
		}
	default:
		return []string{
			fmt.Sprintf("Review the full domain reports for %s for deeper context.", place),
		}
	}
}

// intentNextSteps returns suggested follow-ups per intent.
func intentNextSteps(qc domain.QueryContext) []string {
	steps := []string{"Ask a follow-up question to drill into any domain."}
	switch qc.Intent {
	case domain.IntentInvestmentOpportunity:
		steps = append(steps, "Request a financial breakdown for a specific property type.")
	case domain.IntentRiskAssessment:
		steps = append(steps, "Request the environmental domain report for parcel-level detail.")
	case domain.IntentDevelopmentFeasibility:
		steps = append(steps, "Compare regulatory timelines across neighboring jurisdictions.")
	}
	return steps
}

// humanMetric renders a metric key for prose ("current_median" ->
// "current median").
func humanMetric(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "_", " "), "-", " ")
}

// orderedDomains returns map keys in stable sorted order.
func orderedDomains(m map[domain.DomainID][]domain.Hit) []domain.DomainID {
	ids := make([]domain.DomainID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// dedupeStrings removes duplicates preserving first occurrence.
func dedupeStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
