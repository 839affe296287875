package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// KnowledgeManager loads domain snapshots from a record source,
// normalises them, rebuilds registry indices and invalidates affected
// cache entries. The producer owns the files' refresh schedule; this
// service only reads snapshots and reacts to change signals.
type KnowledgeManager struct {
	source     driven.RecordSource
	normaliser driven.RecordNormaliser
	registry   *Registry
	cache      driven.ResultCache // optional
}

var _ driving.KnowledgeService = (*KnowledgeManager)(nil)

// NewKnowledgeManager wires the knowledge lifecycle. cache may be nil.
func NewKnowledgeManager(source driven.RecordSource, normaliser driven.RecordNormaliser, registry *Registry, cache driven.ResultCache) *KnowledgeManager {
	return &KnowledgeManager{
		source:     source,
		normaliser: normaliser,
		registry:   registry,
		cache:      cache,
	}
}

// LoadAll loads every available domain snapshot. A failure in one
// domain does not abort the others; that domain keeps serving whatever
// it had before (nothing, on first load).
func (k *KnowledgeManager) LoadAll(ctx context.Context) error {
	logger.Section("Loading knowledge base")

	ids, err := k.source.Domains(ctx)
	if err != nil {
		return fmt.Errorf("list domains: %w", err)
	}
	if len(ids) == 0 {
		logger.Warn("Knowledge: no domain snapshots found, all domains serve empty results")
		return nil
	}

	failures := 0
	for _, id := range ids {
		if err := k.ReloadDomain(ctx, id); err != nil {
			logger.Error("Knowledge: load failed for %s: %v", id, err)
			failures++
		}
	}

	if failures == len(ids) {
		return fmt.Errorf("load knowledge: all %d domains failed", failures)
	}
	logger.Info("Knowledge: %d/%d domains loaded", len(ids)-failures, len(ids))
	return nil
}

// ReloadDomain reloads one domain's snapshot, rebuilds its index and
// invalidates cache entries computed from it. Cache invalidation is
// best-effort; the swap itself already version-stamps new answers.
func (k *KnowledgeManager) ReloadDomain(ctx context.Context, id domain.DomainID) error {
	if !domain.IsValidDomain(id) {
		return fmt.Errorf("reload %s: %w", id, domain.ErrUnknownDomain)
	}

	raw, err := k.source.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", id, err)
	}

	res, err := k.normaliser.Normalise(ctx, id, raw)
	if err != nil {
		return fmt.Errorf("normalise %s: %w", id, err)
	}
	if res.Skipped > 0 {
		logger.Warn("Knowledge: %s: %d unusable record(s) skipped", id, res.Skipped)
	}

	if err := k.registry.Reload(id, res.Records); err != nil {
		return err
	}

	if k.cache != nil {
		if err := k.cache.InvalidateDomain(ctx, id); err != nil {
			logger.Warn("Knowledge: cache invalidation failed for %s: %v", id, err)
		}
	}
	return nil
}

// WatchSource subscribes to producer refresh signals and reloads the
// changed domain. Returns once watching is established.
func (k *KnowledgeManager) WatchSource(ctx context.Context) error {
	return k.source.Watch(ctx, func(id domain.DomainID) {
		logger.Info("Knowledge: change signal for %s, reloading", id)
		if err := k.ReloadDomain(ctx, id); err != nil {
			logger.Error("Knowledge: reload on change failed for %s: %v", id, err)
		}
	})
}

// Capabilities returns the registry's capability table.
func (k *KnowledgeManager) Capabilities() []domain.AgentCapability {
	return k.registry.Capabilities()
}

// RecordCount returns the number of indexed records for a domain.
func (k *KnowledgeManager) RecordCount(id domain.DomainID) int {
	return k.registry.RecordCount(id)
}
