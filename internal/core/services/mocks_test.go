package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockIndex implements driven.DomainIndex for testing.
type mockIndex struct {
	hits  []domain.Hit
	delay time.Duration // simulates a slow search
}

func (m *mockIndex) Search(ctx context.Context, _ string, topK int) []domain.Hit {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil
		}
	}
	if topK > 0 && topK < len(m.hits) {
		return m.hits[:topK]
	}
	return m.hits
}

func (m *mockIndex) Len() int {
	return len(m.hits)
}

// mockBuilder implements driven.IndexBuilder for testing.
// Safe for concurrent Build calls.
type mockBuilder struct {
	mu       sync.Mutex
	indices  map[domain.DomainID]*mockIndex
	buildErr error
	builds   int
}

func (m *mockBuilder) Build(id domain.DomainID, records []domain.KnowledgeRecord) (driven.DomainIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds++
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	if idx, ok := m.indices[id]; ok {
		return idx, nil
	}
	hits := make([]domain.Hit, len(records))
	for i, rec := range records {
		hits[i] = domain.Hit{Record: rec, Score: 0.8}
	}
	return &mockIndex{hits: hits}, nil
}

// mockCache implements driven.ResultCache for testing.
type mockCache struct {
	entries     map[string]*domain.SynthesisResult
	getErr      error
	putErr      error
	invalidated []domain.DomainID
	puts        int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*domain.SynthesisResult)}
}

func (m *mockCache) Get(_ context.Context, key string) (*domain.SynthesisResult, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if res, ok := m.entries[key]; ok {
		return res, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCache) Put(_ context.Context, key string, _ []domain.DomainID, result *domain.SynthesisResult, _ time.Duration) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[key] = result
	return nil
}

func (m *mockCache) InvalidateDomain(_ context.Context, id domain.DomainID) error {
	m.invalidated = append(m.invalidated, id)
	for k := range m.entries {
		delete(m.entries, k)
	}
	return nil
}

func (m *mockCache) Close() error {
	return nil
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	answer      string
	rephraseErr error
	delay       time.Duration
}

func (m *mockLLM) RephraseAnswer(ctx context.Context, _ string, _ *domain.SynthesisResult) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.rephraseErr != nil {
		return "", m.rephraseErr
	}
	return m.answer, nil
}

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return m.answer, nil
}

func (m *mockLLM) ModelName() string {
	return "mock-llm"
}

func (m *mockLLM) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLM) Close() error {
	return nil
}

// mockSource implements driven.RecordSource for testing.
type mockSource struct {
	snapshots map[domain.DomainID][]byte
	loadErr   error
	onChange  func(domain.DomainID)
}

func (m *mockSource) Domains(_ context.Context) ([]domain.DomainID, error) {
	ids := make([]domain.DomainID, 0, len(m.snapshots))
	for _, id := range domain.AllDomains() {
		if _, ok := m.snapshots[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockSource) Load(_ context.Context, id domain.DomainID) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	raw, ok := m.snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return raw, nil
}

func (m *mockSource) Watch(_ context.Context, onChange func(domain.DomainID)) error {
	m.onChange = onChange
	return nil
}

func (m *mockSource) Close() error {
	return nil
}
