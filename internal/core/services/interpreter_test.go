package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

func TestInterpret_IntentClassification(t *testing.T) {
	in := NewInterpreter()

	tests := []struct {
		name  string
		query string
		want  domain.Intent
	}{
		{"investment", "Should I invest in Sugar Land townhomes?", domain.IntentInvestmentOpportunity},
		{"roi beats market", "What is the ROI on rental properties given market trends?", domain.IntentInvestmentOpportunity},
		{"regulatory", "What zoning rules apply to commercial lots?", domain.IntentRegulatoryCompliance},
		{"risk", "How bad is the flood risk in Riverstone?", domain.IntentRiskAssessment},
		{"development", "Is this parcel buildable for a development project?", domain.IntentDevelopmentFeasibility},
		{"competitive", "Who are the main competitors in the area?", domain.IntentCompetitiveIntelligence},
		{"neighborhood", "How good are the schools in First Colony?", domain.IntentNeighborhoodAssessment},
		{"market", "What are current home price trends?", domain.IntentMarketAnalysis},
		{"default", "Tell me everything about the area", domain.IntentComprehensiveAnalysis},
		{"empty", "", domain.IntentComprehensiveAnalysis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc := in.Interpret(tt.query)
			assert.Equal(t, tt.want, qc.Intent)
			assert.Equal(t, tt.query, qc.RawQuery)
		})
	}
}

func TestInterpret_LocationLongestMatch(t *testing.T) {
	in := NewInterpreter()

	qc := in.Interpret("Compare prices in Fort Bend County")
	assert.Equal(t, "fort bend county", qc.Location)

	qc = in.Interpret("homes near sugar land")
	assert.Equal(t, "sugar land", qc.Location)

	qc = in.Interpret("no place mentioned here")
	assert.Empty(t, qc.Location)
}

func TestInterpret_LocationDoesNotLeakIntoEntities(t *testing.T) {
	in := NewInterpreter()

	// "sugar land" must not register a "vacant land" style entity.
	qc := in.Interpret("What do homes cost in Sugar Land?")
	assert.Equal(t, "sugar land", qc.Location)
	assert.NotContains(t, qc.SubjectEntities, "vacant land")

	qc = in.Interpret("vacant land parcels in sugar land")
	assert.Equal(t, "sugar land", qc.Location)
	assert.Contains(t, qc.SubjectEntities, "vacant land")
}

func TestInterpret_ActionType(t *testing.T) {
	in := NewInterpreter()

	assert.Equal(t, domain.ActionInvest, in.Interpret("should I buy here").ActionType)
	assert.Equal(t, domain.ActionDevelop, in.Interpret("planning to construct a strip mall").ActionType)
	assert.Equal(t, domain.ActionRent, in.Interpret("is it better to lease an office").ActionType)
	assert.Equal(t, domain.ActionCompare, in.Interpret("Telfair versus Riverstone").ActionType)
	assert.Empty(t, in.Interpret("tell me about schools").ActionType)
}

func TestInterpret_EnhancedQueryExpansion(t *testing.T) {
	in := NewInterpreter()

	qc := in.Interpret("Should I invest in Sugar Land?")
	lower := strings.ToLower(qc.EnhancedQuery)

	assert.True(t, strings.HasPrefix(qc.EnhancedQuery, "Should I invest in Sugar Land?"))
	assert.Contains(t, lower, "roi")
	assert.Contains(t, lower, "return")
	// Terms already present are not duplicated.
	assert.Equal(t, 1, strings.Count(lower, "invest in"), "original text appears once")
}

func TestInterpret_Deterministic(t *testing.T) {
	in := NewInterpreter()

	first := in.Interpret("flood risk for single family homes in Riverstone")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, in.Interpret("flood risk for single family homes in Riverstone"))
	}
}
