package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// Interpreter parses a raw query string into a structured QueryContext
// using keyword rules. Interpretation is pure and deterministic: the
// same query always yields the same context.
type Interpreter struct{}

// NewInterpreter creates a query interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// intentRule maps trigger keywords to an intent. Rules are evaluated in
// order; the first match wins.
type intentRule struct {
	intent   domain.Intent
	keywords []string
}

// intentRules is evaluated top to bottom. More specific intents come
// first so that e.g. "investment" wins over the generic "market".
var intentRules = []intentRule{
	{domain.IntentInvestmentOpportunity, []string{"invest", "roi", "return on", "cash flow", "yield", "opportunity"}},
	{domain.IntentRegulatoryCompliance, []string{"zoning", "permit", "regulation", "compliance", "ordinance", "code requirement"}},
	{domain.IntentRiskAssessment, []string{"risk", "flood", "hazard", "exposure", "liability", "insurance"}},
	{domain.IntentDevelopmentFeasibility, []string{"develop", "feasibility", "construction cost", "buildable", "entitlement"}},
	{domain.IntentCompetitiveIntelligence, []string{"competitor", "competition", "competitive", "market share"}},
	{domain.IntentNeighborhoodAssessment, []string{"neighborhood", "school", "community", "livability", "amenities", "walkability"}},
	{domain.IntentMarketAnalysis, []string{"market", "price", "trend", "demand", "supply", "inventory", "appreciation"}},
}

// expansionTerms broaden the retrieval query per intent. Sparse domain
// vocabularies need the extra recall; the same expansion applies to
// every domain queried in a request so relative confidence stays
// comparable.
var expansionTerms = map[domain.Intent][]string{
	domain.IntentInvestmentOpportunity:   {"investment", "roi", "return", "opportunity"},
	domain.IntentRegulatoryCompliance:    {"zoning", "permits", "regulations", "compliance"},
	domain.IntentRiskAssessment:          {"risk", "flood", "exposure", "mitigation"},
	domain.IntentDevelopmentFeasibility:  {"development", "feasibility", "construction", "costs"},
	domain.IntentCompetitiveIntelligence: {"competition", "competitors", "positioning"},
	domain.IntentNeighborhoodAssessment:  {"neighborhood", "schools", "community", "amenities"},
	domain.IntentMarketAnalysis:          {"market", "trends", "prices", "inventory"},
	domain.IntentComprehensiveAnalysis:   {"analysis", "overview"},
}

// knownLocations are recognised place names in the coverage area.
// Matched longest-first.
var knownLocations = []string{
	"fort bend county",
	"missouri city",
	"sugar land",
	"first colony",
	"new territory",
	"sienna plantation",
	"riverstone",
	"greatwood",
	"telfair",
	"stafford",
	"richmond",
	"rosenberg",
	"pearland",
	"houston",
	"katy",
}

// subjectEntities are property and topic types a query may mention.
var subjectEntities = []string{
	"single family",
	"single-family",
	"townhome",
	"townhouse",
	"condo",
	"apartment",
	"multifamily",
	"commercial",
	"retail",
	"office",
	"industrial",
	"mixed-use",
	"vacant land",
	"school district",
	"infrastructure",
}

// actionVerbs maps trigger verbs to an action type.
var actionVerbs = []struct {
	action   domain.ActionType
	keywords []string
}{
	{domain.ActionInvest, []string{"invest", "buy", "purchase", "acquire"}},
	{domain.ActionDevelop, []string{"develop", "build", "construct"}},
	{domain.ActionRent, []string{"rent", "lease"}},
	{domain.ActionCompare, []string{"compare", "versus", " vs "}},
}

// Interpret classifies a raw query into intent, location, subject
// entities and action type, and produces the enhanced retrieval query.
func (in *Interpreter) Interpret(raw string) domain.QueryContext {
	lower := strings.ToLower(strings.TrimSpace(raw))

	qc := domain.QueryContext{
		RawQuery: raw,
		Intent:   domain.IntentComprehensiveAnalysis,
	}

	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			qc.Intent = rule.intent
			break
		}
	}

	qc.Location = matchLocation(lower)

	// Strip the location before entity matching so that "sugar land"
	// does not register a "vacant land" entity.
	remainder := lower
	if qc.Location != "" {
		remainder = strings.ReplaceAll(remainder, qc.Location, " ")
	}
	for _, entity := range subjectEntities {
		if strings.Contains(remainder, entity) {
			qc.SubjectEntities = append(qc.SubjectEntities, entity)
		}
	}
	sort.Strings(qc.SubjectEntities)

	for _, verb := range actionVerbs {
		if containsAny(lower, verb.keywords) {
			qc.ActionType = verb.action
			break
		}
	}

	qc.EnhancedQuery = buildEnhancedQuery(raw, qc)

	logger.Debug("Interpreter: intent=%s location=%q entities=%v action=%s",
		qc.Intent, qc.Location, qc.SubjectEntities, qc.ActionType)

	return qc
}

// matchLocation returns the longest known place name present in the query.
func matchLocation(lower string) string {
	best := ""
	for _, loc := range knownLocations {
		if strings.Contains(lower, loc) && len(loc) > len(best) {
			best = loc
		}
	}
	return best
}

// buildEnhancedQuery expands the original text with location, entities
// and intent-specific terms, skipping words the query already carries.
func buildEnhancedQuery(raw string, qc domain.QueryContext) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(raw))

	lower := strings.ToLower(raw)
	appendTerm := func(term string) {
		if term == "" || strings.Contains(lower, term) {
			return
		}
		sb.WriteString(" ")
		sb.WriteString(term)
		lower += " " + term
	}

	appendTerm(qc.Location)
	for _, entity := range qc.SubjectEntities {
		appendTerm(entity)
	}
	for _, term := range expansionTerms[qc.Intent] {
		appendTerm(term)
	}

	return sb.String()
}

// containsAny reports whether s contains any of the needles.
func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
