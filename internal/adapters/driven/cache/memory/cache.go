// Package memory provides an in-memory implementation of the result
// cache for tests and cache-less fallback operation.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
)

// entry is one cached result with its expiry and domain tags.
type entry struct {
	result    *domain.SynthesisResult
	domains   map[domain.DomainID]bool
	expiresAt time.Time
}

// Cache is an in-memory TTL result cache. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

var _ driven.ResultCache = (*Cache)(nil)

// NewCache creates an empty in-memory cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached result for key, or domain.ErrCacheMiss when
// absent or expired. Expired entries are evicted lazily on read.
func (c *Cache) Get(_ context.Context, key string) (*domain.SynthesisResult, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have
		// refreshed the key.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, domain.ErrCacheMiss
	}
	return e.result, nil
}

// Put stores a result under key. Last writer wins.
func (c *Cache) Put(_ context.Context, key string, domains []domain.DomainID, result *domain.SynthesisResult, ttl time.Duration) error {
	tags := make(map[domain.DomainID]bool, len(domains))
	for _, id := range domains {
		tags[id] = true
	}

	c.mu.Lock()
	c.entries[key] = entry{
		result:    result,
		domains:   tags,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// InvalidateDomain evicts every entry tagged with the domain.
func (c *Cache) InvalidateDomain(_ context.Context, id domain.DomainID) error {
	c.mu.Lock()
	for key, e := range c.entries {
		if e.domains[id] {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of live entries, counting expired ones not yet
// evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close releases resources. No-op for the in-memory cache.
func (c *Cache) Close() error {
	return nil
}
