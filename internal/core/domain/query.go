package domain

// Intent is the classified purpose of a query.
type Intent string

// The closed set of query intents.
const (
	IntentMarketAnalysis          Intent = "market_analysis"
	IntentNeighborhoodAssessment  Intent = "neighborhood_assessment"
	IntentInvestmentOpportunity   Intent = "investment_opportunity"
	IntentRegulatoryCompliance    Intent = "regulatory_compliance"
	IntentRiskAssessment          Intent = "risk_assessment"
	IntentDevelopmentFeasibility  Intent = "development_feasibility"
	IntentCompetitiveIntelligence Intent = "competitive_intelligence"
	IntentComprehensiveAnalysis   Intent = "comprehensive_analysis"
)

// ActionType is the action verb detected in a query, if any.
type ActionType string

// Recognised action types.
const (
	ActionInvest  ActionType = "invest"
	ActionDevelop ActionType = "develop"
	ActionRent    ActionType = "rent"
	ActionCompare ActionType = "compare"
)

// QueryContext is the structured interpretation of one raw query.
// It is created fresh per request and never persisted.
type QueryContext struct {
	// RawQuery is the original query text.
	RawQuery string

	// Intent is the classified purpose of the query.
	Intent Intent

	// Location is the recognised place name, if any.
	Location string

	// SubjectEntities are mentioned property/topic types.
	SubjectEntities []string

	// ActionType is the detected action verb, if any.
	ActionType ActionType

	// EnhancedQuery is the retrieval query: original text expanded with
	// location, entities and intent-specific terms. It is applied
	// identically for every domain queried in this request.
	EnhancedQuery string
}
