package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// Query pipeline defaults.
const (
	DefaultCacheTTL      = 15 * time.Minute
	DefaultEnrichTimeout = 5 * time.Second
)

// QueryEngine runs the full query pipeline: interpret, route, gather,
// synthesise, optionally enrich, cache. It degrades gracefully: a nil
// cache disables memoisation and a nil LLM disables enrichment, neither
// affects correctness.
type QueryEngine struct {
	interpreter  *Interpreter
	orchestrator *Orchestrator
	synthesizer  *Synthesizer
	registry     *Registry

	cache driven.ResultCache // optional
	llm   driven.LLMService  // optional

	cacheTTL      time.Duration
	enrichTimeout time.Duration
}

var _ driving.QueryService = (*QueryEngine)(nil)

// QueryEngineOption configures a QueryEngine.
type QueryEngineOption func(*QueryEngine)

// WithCache enables result caching.
func WithCache(cache driven.ResultCache, ttl time.Duration) QueryEngineOption {
	return func(e *QueryEngine) {
		e.cache = cache
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// WithLLM enables answer enrichment.
func WithLLM(llm driven.LLMService) QueryEngineOption {
	return func(e *QueryEngine) {
		e.llm = llm
	}
}

// WithEnrichTimeout bounds the enrichment call.
func WithEnrichTimeout(d time.Duration) QueryEngineOption {
	return func(e *QueryEngine) {
		if d > 0 {
			e.enrichTimeout = d
		}
	}
}

// NewQueryEngine wires the pipeline over a registry.
func NewQueryEngine(registry *Registry, orchestrator *Orchestrator, opts ...QueryEngineOption) *QueryEngine {
	e := &QueryEngine{
		interpreter:   NewInterpreter(),
		orchestrator:  orchestrator,
		synthesizer:   NewSynthesizer(),
		registry:      registry,
		cacheTTL:      DefaultCacheTTL,
		enrichTimeout: DefaultEnrichTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query answers a natural-language question over the knowledge base.
func (e *QueryEngine) Query(ctx context.Context, raw string, opts driving.QueryOptions) (*domain.SynthesisResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("query: %w", domain.ErrInvalidInput)
	}

	requestID := uuid.NewString()
	logger.Section("Query %s", requestID)
	logger.Debug("Query %s: %q", requestID, raw)

	qc := e.interpreter.Interpret(raw)
	domains := e.orchestrator.Route(qc)

	key := e.cacheKey(qc, domains, opts.TopK)

	if e.cache != nil && !opts.BypassCache {
		if cached, err := e.cache.Get(ctx, key); err == nil {
			logger.Info("Query %s: cache hit", requestID)
			return cached, nil
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("Query %s: cache read failed, recomputing: %v", requestID, err)
		}
	}

	hits := e.orchestrator.Gather(ctx, qc, domains, opts.TopK)
	result := e.synthesizer.Synthesize(qc, hits)

	e.enrich(ctx, requestID, raw, result)

	if e.cache != nil {
		if err := e.cache.Put(ctx, key, domains, result, e.cacheTTL); err != nil {
			logger.Warn("Query %s: cache write failed: %v", requestID, err)
		}
	}

	return result, nil
}

// enrich asks the optional LLM to rephrase the executive summary. It is
// bounded by a hard timeout and never fails the query: errors leave the
// synthesised summary in place.
func (e *QueryEngine) enrich(ctx context.Context, requestID, raw string, result *domain.SynthesisResult) {
	if e.llm == nil || len(result.Sources) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, e.enrichTimeout)
	defer cancel()

	answer, err := e.llm.RephraseAnswer(ctx, raw, result)
	if err != nil {
		logger.Warn("Query %s: enrichment failed, keeping synthesised summary: %v", requestID, err)
		return
	}
	if strings.TrimSpace(answer) == "" {
		return
	}

	result.ExecutiveSummary = answer
	result.Enriched = true
	logger.Debug("Query %s: summary enriched by %s", requestID, e.llm.ModelName())
}

// cacheKey hashes the normalised enhanced query, the sorted domain set,
// the hit budget and the registry version stamp. Including the stamp
// means a reload naturally orphans keys computed from older snapshots.
func (e *QueryEngine) cacheKey(qc domain.QueryContext, domains []domain.DomainID, topK int) string {
	if topK <= 0 {
		topK = DefaultTopK
	}

	sorted := make([]string, len(domains))
	for i, id := range domains {
		sorted[i] = string(id)
	}
	sort.Strings(sorted)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s",
		strings.ToLower(strings.Join(strings.Fields(qc.EnhancedQuery), " ")),
		strings.Join(sorted, ","),
		topK,
		e.registry.VersionStamp(domains),
	)
	return hex.EncodeToString(h.Sum(nil))
}
