package tfidf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

func buildIndex(t *testing.T, records []domain.KnowledgeRecord) *Index {
	t.Helper()
	idx, err := NewBuilder().Build(domain.DomainMarket, records)
	require.NoError(t, err)
	return idx.(*Index)
}

func marketRecords() []domain.KnowledgeRecord {
	return []domain.KnowledgeRecord{
		{
			ID:          "price-trajectory",
			Domain:      domain.DomainMarket,
			Title:       "Sugar Land Price Trajectory Model",
			Summary:     "Median home prices continue to climb across master-planned communities.",
			KeyFindings: []string{"Inventory remains tight", "Buyer demand outpaces new supply"},
			Tags:        []string{"pricing", "forecast"},
		},
		{
			ID:      "absorption",
			Domain:  domain.DomainMarket,
			Title:   "New Construction Absorption",
			Summary: "New builds in Riverstone sell within 45 days on average.",
			Tags:    []string{"construction"},
		},
		{
			ID:      "office-vacancy",
			Domain:  domain.DomainMarket,
			Title:   "Office Vacancy Watch",
			Summary: "Class A office vacancy holds near 18 percent along Highway 59.",
		},
	}
}

func TestSearch_RelevantRecordFirst(t *testing.T) {
	idx := buildIndex(t, marketRecords())

	hits := idx.Search(context.Background(), "home price trajectory in Sugar Land", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "price-trajectory", hits[0].Record.ID)
	assert.Greater(t, hits[0].Score, 0.1)
	assert.LessOrEqual(t, hits[0].Score, 1.0)
}

func TestSearch_Idempotent(t *testing.T) {
	idx := buildIndex(t, marketRecords())

	first := idx.Search(context.Background(), "office vacancy", 10)
	for i := 0; i < 5; i++ {
		again := idx.Search(context.Background(), "office vacancy", 10)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Record.ID, again[j].Record.ID)
			assert.Equal(t, first[j].Score, again[j].Score)
		}
	}
}

func TestSearch_ScoresDescending(t *testing.T) {
	idx := buildIndex(t, marketRecords())

	hits := idx.Search(context.Background(), "new construction prices", 10)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearch_TopKLimit(t *testing.T) {
	idx := buildIndex(t, marketRecords())

	hits := idx.Search(context.Background(), "sugar land office construction prices vacancy", 1)
	assert.LessOrEqual(t, len(hits), 1)
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := buildIndex(t, nil)

	assert.NotPanics(t, func() {
		hits := idx.Search(context.Background(), "anything", 10)
		assert.Empty(t, hits)
	})
	assert.Zero(t, idx.Len())
}

func TestSearch_DegenerateCorpus_SubstringFallback(t *testing.T) {
	// All-stop-word content produces no vocabulary; the index must
	// degrade to substring containment instead of failing.
	records := []domain.KnowledgeRecord{
		{ID: "a", Domain: domain.DomainMarket, Title: "of the", Summary: "and or to"},
	}
	idx := buildIndex(t, records)

	assert.NotPanics(t, func() {
		hits := idx.Search(context.Background(), "the", 10)
		require.Len(t, hits, 1)
		assert.Equal(t, "a", hits[0].Record.ID)
	})
}

func TestSearch_StopWordQueryFallsBackToSubstring(t *testing.T) {
	idx := buildIndex(t, marketRecords())

	// Query reduces to nothing after stop-word removal; substring
	// containment still matches raw text.
	hits := idx.Search(context.Background(), "is", 10)
	assert.NotNil(t, hits)
}

func TestSearch_NoiseFiltered(t *testing.T) {
	idx := buildIndex(t, marketRecords())

	hits := idx.Search(context.Background(), "submarine volcanic eruption", 10)
	assert.Empty(t, hits, "irrelevant queries score below the relevance floor")
}

func TestSearch_EmptyTextFieldsDoNotPanic(t *testing.T) {
	records := []domain.KnowledgeRecord{
		{ID: "x", Domain: domain.DomainMarket, Title: "Flood Map Update"},
		{ID: "y", Domain: domain.DomainMarket, Summary: ""},
	}
	idx := buildIndex(t, records)

	assert.NotPanics(t, func() {
		idx.Search(context.Background(), "flood map", 10)
	})
}

func TestPhraseCounts_IncludesNGrams(t *testing.T) {
	counts := phraseCounts("sugar land market report")
	assert.Contains(t, counts, "sugar")
	assert.Contains(t, counts, "sugar land")
	assert.Contains(t, counts, "sugar land market")
	assert.NotContains(t, counts, "sugar land market report", "phrases cap at three words")
}

func TestTokenize_RemovesStopWordsAndShortTokens(t *testing.T) {
	tokens := tokenize("The price of a home in Sugar Land")
	assert.Equal(t, []string{"price", "home", "sugar", "land"}, tokens)
}
