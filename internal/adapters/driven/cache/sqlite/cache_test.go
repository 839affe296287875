package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleResult() *domain.SynthesisResult {
	return &domain.SynthesisResult{
		Insights:         []string{"Prices keep rising."},
		Confidence:       0.82,
		ExecutiveSummary: "Market analysis for sugar land.",
		Sources:          []domain.DomainID{domain.DomainMarket},
		GeneratedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k1", []domain.DomainID{domain.DomainMarket}, sampleResult(), time.Minute))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "Market analysis for sugar land.", got.ExecutiveSummary)
	assert.Equal(t, 0.82, got.Confidence)
	assert.Equal(t, []domain.DomainID{domain.DomainMarket}, got.Sources)
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, "k1", nil, sampleResult(), time.Minute))

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCache_LastWriterWins(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	first := sampleResult()
	first.ExecutiveSummary = "first"
	second := sampleResult()
	second.ExecutiveSummary = "second"

	require.NoError(t, c.Put(ctx, "k1", nil, first, time.Minute))
	require.NoError(t, c.Put(ctx, "k1", []domain.DomainID{domain.DomainFinancial}, second, time.Minute))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.ExecutiveSummary)
}

func TestCache_InvalidateDomainEvictsTaggedEntriesOnly(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "tagged",
		[]domain.DomainID{domain.DomainMarket, domain.DomainFinancial}, sampleResult(), time.Minute))
	require.NoError(t, c.Put(ctx, "other",
		[]domain.DomainID{domain.DomainRegulatory}, sampleResult(), time.Minute))

	require.NoError(t, c.InvalidateDomain(ctx, domain.DomainMarket))

	_, err := c.Get(ctx, "tagged")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	_, err = c.Get(ctx, "other")
	assert.NoError(t, err)
}

func TestCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := NewCache(dir)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "k1", []domain.DomainID{domain.DomainMarket}, sampleResult(), time.Hour))
	require.NoError(t, c.Close())

	reopened, err := NewCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 0.82, got.Confidence)
}

func TestCache_ClosedBackendReportsUnavailable(t *testing.T) {
	c, err := NewCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Get(context.Background(), "k1")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)

	err = c.Put(context.Background(), "k1", nil, sampleResult(), time.Minute)
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

func TestCache_Purge(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, "old", nil, sampleResult(), time.Minute))
	require.NoError(t, c.Put(ctx, "fresh", nil, sampleResult(), time.Hour))

	c.now = func() time.Time { return now.Add(10 * time.Minute) }
	require.NoError(t, c.Purge(ctx))

	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = c.Get(ctx, "fresh")
	assert.NoError(t, err)
}
