package services

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// capabilities is the static registry table: what each knowledge domain
// can answer. Read-only after startup.
var capabilities = []domain.AgentCapability{
	{Domain: domain.DomainMarket, DisplayName: "Market Intelligence", Description: "Pricing, inventory, absorption and demand trends across the coverage area."},
	{Domain: domain.DomainRegulatory, DisplayName: "Regulatory & Zoning", Description: "Zoning districts, permitting activity, ordinances and compliance requirements."},
	{Domain: domain.DomainEnvironmental, DisplayName: "Environmental Factors", Description: "Floodplain exposure, drainage, soil and environmental risk indicators."},
	{Domain: domain.DomainFinancial, DisplayName: "Financial Analysis", Description: "Financing conditions, tax rates, ROI models and investment economics."},
	{Domain: domain.DomainNeighborhood, DisplayName: "Neighborhood Profiles", Description: "Schools, amenities, demographics and community-level quality indicators."},
	{Domain: domain.DomainTechnology, DisplayName: "Technology & Infrastructure", Description: "Connectivity, smart-home adoption and infrastructure modernisation."},
}

// snapshot pairs an immutable index with its generation number.
// A reload builds a new snapshot and swaps the pointer atomically, so
// in-flight queries keep the prior snapshot and no reader ever sees a
// half-built index.
type snapshot struct {
	index      driven.DomainIndex
	generation uint64
}

// registryEntry holds the current snapshot for one domain.
type registryEntry struct {
	current atomic.Pointer[snapshot]
}

// Registry maps domain identifiers to capabilities and their current
// index snapshots.
type Registry struct {
	builder driven.IndexBuilder
	entries map[domain.DomainID]*registryEntry
}

// NewRegistry creates a registry over the fixed domain set.
// Every domain starts without an index and serves empty results until
// its first successful reload.
func NewRegistry(builder driven.IndexBuilder) *Registry {
	entries := make(map[domain.DomainID]*registryEntry, len(capabilities))
	for _, c := range capabilities {
		entries[c.Domain] = &registryEntry{}
	}
	return &Registry{builder: builder, entries: entries}
}

// Capabilities returns the capability table in stable order.
func (r *Registry) Capabilities() []domain.AgentCapability {
	out := make([]domain.AgentCapability, len(capabilities))
	copy(out, capabilities)
	return out
}

// Reload builds a fresh index over records and swaps it in atomically.
// A build failure leaves the previous snapshot serving.
func (r *Registry) Reload(id domain.DomainID, records []domain.KnowledgeRecord) error {
	entry, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("reload %s: %w", id, domain.ErrUnknownDomain)
	}

	idx, err := r.builder.Build(id, records)
	if err != nil {
		logger.Error("Registry: index build failed for %s: %v", id, err)
		return fmt.Errorf("build index %s: %w", id, err)
	}

	// Publish with a CAS loop so concurrent reloads of the same domain
	// can never leave an older snapshot current: each publish increments
	// the generation of whatever snapshot it actually replaces.
	next := &snapshot{index: idx}
	for {
		prev := entry.current.Load()
		next.generation = 1
		if prev != nil {
			next.generation = prev.generation + 1
		}
		if entry.current.CompareAndSwap(prev, next) {
			break
		}
	}
	logger.Info("Registry: domain %s reloaded, %d records (generation %d)", id, idx.Len(), next.generation)
	return nil
}

// Index returns the current index snapshot for a domain. The boolean is
// false when the domain has never loaded successfully.
func (r *Registry) Index(id domain.DomainID) (driven.DomainIndex, bool) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	snap := entry.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap.index, true
}

// Generation returns the snapshot generation for a domain (0 before the
// first successful load). Used in cache keys so answers computed from a
// superseded snapshot can never be served.
func (r *Registry) Generation(id domain.DomainID) uint64 {
	entry, ok := r.entries[id]
	if !ok {
		return 0
	}
	snap := entry.current.Load()
	if snap == nil {
		return 0
	}
	return snap.generation
}

// RecordCount returns the number of indexed records for a domain.
func (r *Registry) RecordCount(id domain.DomainID) int {
	idx, ok := r.Index(id)
	if !ok {
		return 0
	}
	return idx.Len()
}

// VersionStamp renders the generations of a sorted domain set as a
// stable string for cache-key hashing.
func (r *Registry) VersionStamp(domains []domain.DomainID) string {
	sorted := make([]domain.DomainID, len(domains))
	copy(sorted, domains)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	stamp := ""
	for _, id := range sorted {
		stamp += fmt.Sprintf("%s:%d;", id, r.Generation(id))
	}
	return stamp
}
