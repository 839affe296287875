package cli

import (
	"context"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driving"
)

// fakeQueryService implements driving.QueryService for CLI tests.
type fakeQueryService struct {
	result   *domain.SynthesisResult
	err      error
	lastOpts driving.QueryOptions
}

func (f *fakeQueryService) Query(_ context.Context, _ string, opts driving.QueryOptions) (*domain.SynthesisResult, error) {
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeKnowledgeService implements driving.KnowledgeService for CLI tests.
type fakeKnowledgeService struct {
	counts    map[domain.DomainID]int
	loadErr   error
	reloadErr error
	reloaded  []domain.DomainID
	loadedAll bool
}

func (f *fakeKnowledgeService) LoadAll(_ context.Context) error {
	f.loadedAll = true
	return f.loadErr
}

func (f *fakeKnowledgeService) ReloadDomain(_ context.Context, id domain.DomainID) error {
	if f.reloadErr != nil {
		return f.reloadErr
	}
	f.reloaded = append(f.reloaded, id)
	return nil
}

func (f *fakeKnowledgeService) Capabilities() []domain.AgentCapability {
	return []domain.AgentCapability{
		{Domain: domain.DomainMarket, DisplayName: "Market Intelligence", Description: "Pricing and demand trends."},
		{Domain: domain.DomainRegulatory, DisplayName: "Regulatory & Zoning", Description: "Zoning and permitting."},
	}
}

func (f *fakeKnowledgeService) RecordCount(id domain.DomainID) int {
	return f.counts[id]
}

func sampleSynthesis() *domain.SynthesisResult {
	return &domain.SynthesisResult{
		Insights: []string{"Median prices keep climbing."},
		DataPoints: []domain.DataPoint{
			{Metric: "median_price", Value: 425000.0, Trend: "rising", Domain: domain.DomainMarket},
		},
		Confidence:       0.82,
		ExecutiveSummary: "Market analysis for sugar land.",
		Recommendations:  []string{"Target master-planned communities."},
		Sources:          []domain.DomainID{domain.DomainMarket},
	}
}

// setupTestServices installs fake services and returns a cleanup that
// restores the previous wiring.
func setupTestServices(query *fakeQueryService, knowledge *fakeKnowledgeService) func() {
	prevQuery, prevKnowledge := queryService, knowledgeService
	queryService = query
	knowledgeService = knowledge
	return func() {
		queryService = prevQuery
		knowledgeService = prevKnowledge
	}
}
