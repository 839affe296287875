// Command insight answers natural-language questions over a
// domain-partitioned real-estate knowledge base.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/insight-cli/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/insight-cli/internal/adapters/driven/cache/sqlite"
	configfile "github.com/custodia-labs/insight-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/insight-cli/internal/adapters/driven/llm/ollama"
	storagefile "github.com/custodia-labs/insight-cli/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/insight-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/insight-cli/internal/core/services"
	"github.com/custodia-labs/insight-cli/internal/index/tfidf"
	"github.com/custodia-labs/insight-cli/internal/logger"
	"github.com/custodia-labs/insight-cli/internal/normalisers/records"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return err
	}

	registry := services.NewRegistry(tfidf.NewBuilder())

	cache := buildCache(cfg)
	if cache != nil {
		defer cache.Close()
	}

	orchestrator := services.NewOrchestrator(registry, orchestratorOptions(cfg)...)

	engineOpts := []services.QueryEngineOption{}
	if cache != nil {
		engineOpts = append(engineOpts, services.WithCache(cache, cacheTTL(cfg)))
	}
	if llm := buildLLM(ctx, cfg); llm != nil {
		defer llm.Close()
		engineOpts = append(engineOpts, services.WithLLM(llm))
	}
	engine := services.NewQueryEngine(registry, orchestrator, engineOpts...)

	// Knowledge wiring waits for flag parsing: --knowledge-dir overrides
	// the configured directory.
	var closeSource func() error
	cli.SetInitializer(func(ctx context.Context, flagDir string) error {
		knowledge, closeFn := buildKnowledge(ctx, cfg, flagDir, registry, cache)
		closeSource = closeFn
		cli.SetServices(engine, knowledge)
		return nil
	})
	defer func() {
		if closeSource != nil {
			closeSource()
		}
	}()

	cli.SetVersion(version)
	return cli.Execute(ctx)
}

// buildCache selects the cache backend from config. A broken persistent
// cache degrades to in-memory rather than failing startup.
func buildCache(cfg driven.ConfigStore) driven.ResultCache {
	if cfg.GetString(driven.ConfigCacheBackend) == "sqlite" {
		cache, err := sqlite.NewCache("")
		if err == nil {
			return cache
		}
		logger.Warn("Persistent cache unavailable, using in-memory cache: %v", err)
	}
	return memory.NewCache()
}

// buildKnowledge wires the record source and knowledge manager. The
// directory resolves flag over config over ~/.insight/knowledge. A
// missing knowledge directory is not fatal: every domain serves empty
// results until snapshots appear and a reload runs.
func buildKnowledge(ctx context.Context, cfg driven.ConfigStore, flagDir string, registry *services.Registry, cache driven.ResultCache) (*services.KnowledgeManager, func() error) {
	dir := flagDir
	if dir == "" {
		dir = cfg.GetString(driven.ConfigKnowledgeDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			dir = home + "/.insight/knowledge"
		}
	}

	source, err := storagefile.NewSource(dir)
	if err != nil {
		logger.Warn("Knowledge directory unavailable (%v); queries will report insufficient data", err)
		return services.NewKnowledgeManager(emptySource{}, records.New(), registry, cache), nil
	}

	knowledge := services.NewKnowledgeManager(source, records.New(), registry, cache)
	if err := knowledge.LoadAll(ctx); err != nil {
		logger.Error("Loading knowledge base: %v", err)
	}
	if err := knowledge.WatchSource(ctx); err != nil {
		logger.Warn("Snapshot watching disabled: %v", err)
	}
	return knowledge, source.Close
}

// buildLLM returns the enrichment service when enabled in config. An
// unreachable provider only warns: enrichment failures already degrade
// to the synthesised answer, and the provider may come up later.
func buildLLM(ctx context.Context, cfg driven.ConfigStore) *ollama.LLMService {
	if !cfg.GetBool(driven.ConfigLLMEnabled) {
		return nil
	}

	llm := ollama.NewLLMService(ollama.LLMConfig{
		BaseURL: cfg.GetString(driven.ConfigLLMBaseURL),
		Model:   cfg.GetString(driven.ConfigLLMModel),
	})
	if store, err := configfile.NewPromptStore(""); err == nil {
		llm.SetPromptStore(store)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := llm.Ping(pingCtx); err != nil {
		logger.Warn("Enrichment provider unreachable, answers will use synthesised text: %v", err)
	}
	return llm
}

func orchestratorOptions(cfg driven.ConfigStore) []services.OrchestratorOption {
	var opts []services.OrchestratorOption
	if k := cfg.GetInt(driven.ConfigQueryTopK); k > 0 {
		opts = append(opts, services.WithTopK(k))
	}
	if ms := cfg.GetInt(driven.ConfigDomainTimeoutMS); ms > 0 {
		opts = append(opts, services.WithDomainTimeout(time.Duration(ms)*time.Millisecond))
	}
	return opts
}

func cacheTTL(cfg driven.ConfigStore) time.Duration {
	if minutes := cfg.GetInt(driven.ConfigCacheTTLMinutes); minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return services.DefaultCacheTTL
}

// emptySource stands in when no knowledge directory exists yet.
type emptySource struct{}

func (emptySource) Domains(context.Context) ([]domain.DomainID, error) { return nil, nil }
func (emptySource) Load(_ context.Context, id domain.DomainID) ([]byte, error) {
	return nil, domain.ErrNotFound
}
func (emptySource) Watch(context.Context, func(domain.DomainID)) error { return nil }
func (emptySource) Close() error                                       { return nil }
