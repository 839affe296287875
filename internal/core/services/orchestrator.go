package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// Orchestrator defaults.
const (
	DefaultTopK              = 10
	DefaultDomainTimeout     = 3 * time.Second
	defaultGatherConcurrency = 4
)

// routingTable maps each intent to a priority-ordered list of domains
// judged relevant.
var routingTable = map[domain.Intent][]domain.DomainID{
	domain.IntentMarketAnalysis:          {domain.DomainMarket, domain.DomainFinancial, domain.DomainNeighborhood},
	domain.IntentNeighborhoodAssessment:  {domain.DomainNeighborhood, domain.DomainMarket, domain.DomainEnvironmental},
	domain.IntentInvestmentOpportunity:   {domain.DomainFinancial, domain.DomainMarket, domain.DomainNeighborhood},
	domain.IntentRegulatoryCompliance:    {domain.DomainRegulatory, domain.DomainEnvironmental},
	domain.IntentRiskAssessment:          {domain.DomainEnvironmental, domain.DomainRegulatory, domain.DomainMarket},
	domain.IntentDevelopmentFeasibility:  {domain.DomainRegulatory, domain.DomainEnvironmental, domain.DomainMarket, domain.DomainFinancial},
	domain.IntentCompetitiveIntelligence: {domain.DomainMarket, domain.DomainTechnology},
	domain.IntentComprehensiveAnalysis:   nil, // all domains
}

// Orchestrator selects relevant domains for a query and fans the
// enhanced query out to their indices.
type Orchestrator struct {
	registry      *Registry
	topK          int
	domainTimeout time.Duration
	concurrency   int
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithTopK sets the per-domain hit budget.
func WithTopK(k int) OrchestratorOption {
	return func(o *Orchestrator) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithDomainTimeout sets the per-domain search budget.
func WithDomainTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.domainTimeout = d
		}
	}
}

// NewOrchestrator creates an orchestrator over the registry.
func NewOrchestrator(registry *Registry, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:      registry,
		topK:          DefaultTopK,
		domainTimeout: DefaultDomainTimeout,
		concurrency:   defaultGatherConcurrency,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Route selects the domains relevant to a query context. At least one
// domain is always queried: unrecognised intents fall back to all
// domains. A query with a location always includes the neighborhood
// domain.
func (o *Orchestrator) Route(qc domain.QueryContext) []domain.DomainID {
	selected := routingTable[qc.Intent]
	if len(selected) == 0 {
		selected = domain.AllDomains()
	}

	result := make([]domain.DomainID, 0, len(selected)+1)
	seen := make(map[domain.DomainID]bool, len(selected)+1)
	for _, id := range selected {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}

	if qc.Location != "" && !seen[domain.DomainNeighborhood] {
		result = append(result, domain.DomainNeighborhood)
	}

	logger.Debug("Orchestrator: intent %s routed to %v", qc.Intent, result)
	return result
}

// Gather queries each selected domain with the enhanced query under a
// bounded worker pool. topK overrides the configured per-domain hit
// budget when positive. Per-domain failures and timeouts yield empty
// results for that domain only; partial results are valid and expected.
func (o *Orchestrator) Gather(ctx context.Context, qc domain.QueryContext, domains []domain.DomainID, topK int) map[domain.DomainID][]domain.Hit {
	if topK <= 0 {
		topK = o.topK
	}

	results := make(map[domain.DomainID][]domain.Hit, len(domains))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, id := range domains {
		id := id
		g.Go(func() error {
			hits := o.searchDomain(ctx, id, qc.EnhancedQuery, topK)
			mu.Lock()
			results[id] = hits
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; degradation is recorded per domain.
	_ = g.Wait()

	return results
}

// searchDomain runs one domain search under the per-domain timeout.
// A timeout counts as zero hits for that domain.
func (o *Orchestrator) searchDomain(ctx context.Context, id domain.DomainID, query string, topK int) []domain.Hit {
	idx, ok := o.registry.Index(id)
	if !ok {
		logger.Warn("Orchestrator: domain %s has no index, serving empty results", id)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.domainTimeout)
	defer cancel()

	done := make(chan []domain.Hit, 1)
	go func() {
		done <- idx.Search(ctx, query, topK)
	}()

	select {
	case hits := <-done:
		logger.Debug("Orchestrator: domain %s returned %d hits", id, len(hits))
		return hits
	case <-ctx.Done():
		logger.Warn("Orchestrator: domain %s search timed out after %v", id, o.domainTimeout)
		return nil
	}
}
