// Package tfidf provides the per-domain retrieval index. Records are
// scored by cosine similarity over term-frequency/inverse-document-
// frequency weighted vectors built from 1-3 word phrases. A degenerate
// corpus (no usable vocabulary) degrades to case-insensitive substring
// containment so small or sparse domains still answer queries.
package tfidf

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// Ensure the types implement their ports.
var (
	_ driven.IndexBuilder = (*Builder)(nil)
	_ driven.DomainIndex  = (*Index)(nil)
)

const (
	// relevanceFloor discards noise matches on small corpora.
	relevanceFloor = 0.1

	// maxPhraseLen is the longest phrase (in words) added to the vocabulary.
	maxPhraseLen = 3

	// defaultTopK applies when a caller passes a non-positive limit.
	defaultTopK = 10
)

// Builder constructs immutable TF-IDF indices.
type Builder struct{}

// NewBuilder creates an index builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Index is an immutable retrieval snapshot for one domain.
// It is never mutated after Build; reloads construct a replacement.
type Index struct {
	id      domain.DomainID
	records []domain.KnowledgeRecord

	// vectors holds one unit-length weighted term vector per record.
	vectors []map[string]float64

	// idf is the shared inverse-document-frequency table.
	idf map[string]float64

	// texts holds lowercased search text per record for the
	// substring fallback path.
	texts []string

	// fallback is true when the corpus produced no usable vocabulary.
	fallback bool
}

// Build constructs a retrieval structure over the records.
func (b *Builder) Build(id domain.DomainID, records []domain.KnowledgeRecord) (driven.DomainIndex, error) {
	idx := &Index{
		id:      id,
		records: records,
		texts:   make([]string, len(records)),
	}

	termCounts := make([]map[string]int, len(records))
	df := make(map[string]int)

	for i := range records {
		text := records[i].SearchText()
		idx.texts[i] = strings.ToLower(text)

		counts := phraseCounts(text)
		termCounts[i] = counts
		for term := range counts {
			df[term]++
		}
	}

	if len(df) == 0 {
		// All-stop-word or empty content: serve substring containment
		// instead of failing the whole domain.
		idx.fallback = true
		logger.Warn("Index %s: empty vocabulary over %d records, using substring fallback", id, len(records))
		return idx, nil
	}

	n := float64(len(records))
	idx.idf = make(map[string]float64, len(df))
	for term, count := range df {
		idx.idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	idx.vectors = make([]map[string]float64, len(records))
	for i, counts := range termCounts {
		idx.vectors[i] = weightedVector(counts, idx.idf)
	}

	logger.Debug("Index %s: built over %d records, vocabulary %d terms", id, len(records), len(df))
	return idx, nil
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Search returns up to topK hits sorted by descending score.
// It never fails; an empty or degenerate index returns what it can.
func (idx *Index) Search(_ context.Context, query string, topK int) []domain.Hit {
	if topK <= 0 {
		topK = defaultTopK
	}
	if len(idx.records) == 0 {
		return nil
	}

	queryVec := weightedVector(phraseCounts(query), idx.idf)

	if idx.fallback || len(queryVec) == 0 {
		return idx.substringSearch(query, topK)
	}

	hits := make([]domain.Hit, 0, topK)
	for i, vec := range idx.vectors {
		score := dot(queryVec, vec)
		if score < relevanceFloor {
			continue
		}
		if score > 1 {
			score = 1
		}
		hits = append(hits, domain.Hit{Record: idx.records[i], Score: score})
	}

	sortHits(hits)
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// substringSearch scores by case-insensitive containment: binary
// relevance, ranked by the number of matched query words.
func (idx *Index) substringSearch(query string, topK int) []domain.Hit {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(words) == 0 {
		return nil
	}

	hits := make([]domain.Hit, 0, topK)
	for i, text := range idx.texts {
		if text == "" {
			continue
		}
		matched := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, domain.Hit{
			Record: idx.records[i],
			Score:  float64(matched) / float64(len(words)),
		})
	}

	sortHits(hits)
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// sortHits orders by descending score, breaking ties by record ID so
// repeated identical queries return identical ordered results.
func sortHits(hits []domain.Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})
}

// weightedVector converts raw phrase counts into a unit-length TF-IDF
// vector. Terms outside the idf table are dropped. When idf is nil
// (fallback index) the result is empty.
func weightedVector(counts map[string]int, idf map[string]float64) map[string]float64 {
	if len(counts) == 0 || len(idf) == 0 {
		return nil
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	vec := make(map[string]float64, len(counts))
	var norm float64
	for term, count := range counts {
		weight, ok := idf[term]
		if !ok {
			continue
		}
		w := (float64(count) / float64(total)) * weight
		vec[term] = w
		norm += w * w
	}

	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	for term, w := range vec {
		vec[term] = w / norm
	}
	return vec
}

// dot computes the inner product of two unit vectors (cosine similarity).
func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		sum += w * b[term]
	}
	return sum
}

// phraseCounts tokenises text and counts 1-3 word phrases with stop
// words removed.
func phraseCounts(text string) map[string]int {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for i := range tokens {
		for n := 1; n <= maxPhraseLen && i+n <= len(tokens); n++ {
			counts[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return counts
}

// tokenize lowercases, splits on non-alphanumeric runes and drops stop
// words and single-letter fragments.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// stopWords are excluded from the vocabulary.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"to": true, "of": true, "in": true, "for": true, "on": true,
	"with": true, "at": true, "by": true, "from": true, "as": true,
	"and": true, "but": true, "or": true, "not": true, "no": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "has": true, "have": true, "had": true,
	"will": true, "would": true, "can": true, "could": true,
	"do": true, "does": true, "did": true, "than": true, "then": true,
	"there": true, "their": true, "they": true, "we": true, "you": true,
	"what": true, "which": true, "who": true, "how": true, "when": true,
	"where": true, "why": true, "all": true, "each": true, "more": true,
	"most": true, "other": true, "some": true, "such": true, "into": true,
	"about": true, "over": true, "under": true, "up": true, "out": true,
}
