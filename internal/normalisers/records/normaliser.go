// Package records normalises raw domain knowledge files into canonical
// KnowledgeRecord form. Domain files arrive in one of three shapes:
// a map of record-id to record, a wrapped list under an "insights" or
// "records" field, or a bare metadata object. The shape is resolved up
// front and dispatched to a dedicated handler.
package records

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// defaultConfidence is the record-level trust indicator applied when the
// source file carries none.
const defaultConfidence = 0.7

// shape identifies the top-level structure of a domain file.
type shape int

const (
	shapeMapOfRecords shape = iota
	shapeWrappedList
	shapeMetadata
)

// Normaliser resolves heterogeneous domain files into knowledge records.
type Normaliser struct{}

// New creates a new record normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise parses one raw domain file into knowledge records.
// Malformed entries are skipped and counted, never fatal. A record
// missing both title and summary is dropped: it carries no retrievable
// text.
func (n *Normaliser) Normalise(_ context.Context, id domain.DomainID, raw []byte) (*driven.NormaliseResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("normalise %s: %w", id, domain.ErrInvalidInput)
	}

	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("normalise %s: parse: %w", id, err)
	}

	result := &driven.NormaliseResult{}

	switch detectShape(top) {
	case shapeMapOfRecords:
		obj := top.(map[string]any)
		keys := sortedKeys(obj)
		for _, key := range keys {
			entry, ok := obj[key].(map[string]any)
			if !ok {
				result.Skipped++
				continue
			}
			rec, ok := parseRecord(id, entry)
			if !ok {
				logger.Warn("Normaliser: dropped unretrievable record %q in domain %s", key, id)
				result.Skipped++
				continue
			}
			result.Records = append(result.Records, rec)
		}

	case shapeWrappedList:
		obj := top.(map[string]any)
		for _, item := range wrappedList(obj) {
			entry, ok := item.(map[string]any)
			if !ok {
				result.Skipped++
				continue
			}
			rec, ok := parseRecord(id, entry)
			if !ok {
				logger.Warn("Normaliser: dropped unretrievable list entry in domain %s", id)
				result.Skipped++
				continue
			}
			result.Records = append(result.Records, rec)
		}

	case shapeMetadata:
		rec, ok := parseMetadata(id, top)
		if !ok {
			logger.Warn("Normaliser: metadata object in domain %s carries no retrievable text", id)
			result.Skipped++
			break
		}
		result.Records = append(result.Records, rec)
	}

	logger.Debug("Normaliser: domain %s -> %d records, %d skipped", id, len(result.Records), result.Skipped)
	return result, nil
}

// detectShape classifies the top-level value of a domain file.
func detectShape(top any) shape {
	obj, ok := top.(map[string]any)
	if !ok {
		return shapeMetadata
	}

	// Map-of-records: a non-empty object whose every value is itself an
	// object containing an "id" field.
	if len(obj) > 0 {
		allRecords := true
		for _, v := range obj {
			entry, ok := v.(map[string]any)
			if !ok {
				allRecords = false
				break
			}
			if _, hasID := entry["id"]; !hasID {
				allRecords = false
				break
			}
		}
		if allRecords {
			return shapeMapOfRecords
		}
	}

	if wrappedList(obj) != nil {
		return shapeWrappedList
	}

	return shapeMetadata
}

// wrappedList returns the record sequence held under an "insights" or
// "records" field, or nil if neither holds a sequence.
func wrappedList(obj map[string]any) []any {
	for _, field := range []string{"insights", "records"} {
		if seq, ok := obj[field].([]any); ok {
			return seq
		}
	}
	return nil
}

// parseRecord maps one JSON object onto a KnowledgeRecord. The second
// return value is false when the record carries no retrievable text.
func parseRecord(id domain.DomainID, entry map[string]any) (domain.KnowledgeRecord, bool) {
	rec := domain.KnowledgeRecord{
		Domain:           id,
		ID:               stringField(entry, "id"),
		Title:            firstStringField(entry, "title", "name"),
		Summary:          firstStringField(entry, "summary", "description", "overview"),
		KeyFindings:      stringSliceField(entry, "key_findings", "findings"),
		Metrics:          mapField(entry, "metrics", "key_metrics"),
		Tags:             stringSliceField(entry, "tags", "topics"),
		GeographicScope:  stringSliceField(entry, "geographic_scope", "locations"),
		Recommendations:  stringSliceField(entry, "recommendations"),
		ConfidenceSource: floatField(entry, defaultConfidence, "confidence_source", "confidence"),
		Timestamp:        timeField(entry, "timestamp", "updated_at"),
	}

	if rec.ID == "" {
		rec.ID = contentHash(entry)
	}
	if rec.Metrics == nil {
		rec.Metrics = map[string]any{}
	}

	return rec, rec.Indexable()
}

// parseMetadata wraps an entire top-level value as a single record with
// a synthesised ID. The record is flagged IsMetadata and still
// participates in retrieval.
func parseMetadata(id domain.DomainID, top any) (domain.KnowledgeRecord, bool) {
	obj, ok := top.(map[string]any)
	if !ok {
		// Scalar or array top level: nothing retrievable to index.
		return domain.KnowledgeRecord{}, false
	}

	rec, _ := parseRecord(id, obj)
	rec.ID = contentHash(obj)
	rec.IsMetadata = true

	// A metadata object often has no title/summary keys; fall back to
	// flattening its scalar string fields so the content stays
	// retrievable.
	if !rec.Indexable() {
		rec.Title = firstStringField(obj, "report_title", "domain", "category")
		if rec.Title == "" {
			rec.Title = string(id) + " overview"
		}
		rec.Summary = flattenStrings(obj)
	}

	return rec, rec.Indexable()
}

// contentHash derives a stable identifier from the canonical serialised
// form of an entry. Stable across reloads as long as the content is
// unchanged.
func contentHash(v any) string {
	data, err := canonicalJSON(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", v))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// canonicalJSON serialises with sorted keys (encoding/json sorts map
// keys, which is what makes the hash stable).
func canonicalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// flattenStrings joins the scalar string values of an object in key
// order, recursing one level into nested objects.
func flattenStrings(obj map[string]any) string {
	var parts []string
	for _, key := range sortedKeys(obj) {
		switch v := obj[key].(type) {
		case string:
			parts = append(parts, v)
		case map[string]any:
			if nested := flattenStrings(v); nested != "" {
				parts = append(parts, nested)
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- field extraction helpers ---

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
	default:
		return ""
	}
}

func firstStringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func stringSliceField(m map[string]any, keys ...string) []string {
	for _, key := range keys {
		seq, ok := m[key].([]any)
		if !ok {
			continue
		}
		result := make([]string, 0, len(seq))
		for _, item := range seq {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return nil
}

func mapField(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if nested, ok := m[key].(map[string]any); ok {
			return nested
		}
	}
	return nil
}

func floatField(m map[string]any, fallback float64, keys ...string) float64 {
	for _, key := range keys {
		if f, ok := m[key].(float64); ok && f >= 0 && f <= 1 {
			return f
		}
	}
	return fallback
}

func timeField(m map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		s, ok := m[key].(string)
		if !ok {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Now()
}
