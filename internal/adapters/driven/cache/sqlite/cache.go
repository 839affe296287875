// Package sqlite provides a persistent SQLite-backed result cache so
// cached answers survive process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/insight-cli/internal/adapters/driven/cache/sqlite/migrations"
	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
)

// Cache is a SQLite-backed TTL result cache. Entries are tagged with
// the domains they were computed from so reloads can evict them.
type Cache struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ driven.ResultCache = (*Cache)(nil)

// NewCache opens (or creates) the cache database under dataDir. If
// dataDir is empty, defaults to ~/.insight/data/cache.db.
func NewCache(dataDir string) (*Cache, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".insight", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// WAL mode keeps concurrent readers off the writer's back.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	c := &Cache{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := c.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached result for key, or domain.ErrCacheMiss when
// absent or expired. Expired rows are deleted on read.
func (c *Cache) Get(ctx context.Context, key string) (*domain.SynthesisResult, error) {
	var payload string
	var expiresAt int64

	row := c.db.QueryRowContext(ctx,
		"SELECT result, expires_at FROM query_cache WHERE key = ?", key)
	if err := row.Scan(&payload, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: reading entry: %v", domain.ErrCacheUnavailable, err)
	}

	if c.now().Unix() > expiresAt {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM query_cache WHERE key = ?", key); err != nil {
			return nil, fmt.Errorf("evicting expired entry: %w", err)
		}
		return nil, domain.ErrCacheMiss
	}

	var result domain.SynthesisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("unmarshalling cached result: %w", err)
	}
	return &result, nil
}

// Put stores a result under key with its domain tags. Last writer wins.
func (c *Cache) Put(ctx context.Context, key string, domains []domain.DomainID, result *domain.SynthesisResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrCacheUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO query_cache (key, result, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET result = excluded.result, expires_at = excluded.expires_at
	`, key, string(payload), c.now().Add(ttl).Unix()); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cache_domains WHERE key = ?", key); err != nil {
		return fmt.Errorf("clearing domain tags: %w", err)
	}
	for _, id := range domains {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO cache_domains (key, domain) VALUES (?, ?)", key, string(id)); err != nil {
			return fmt.Errorf("writing domain tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing entry: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// InvalidateDomain evicts every entry tagged with the domain.
func (c *Cache) InvalidateDomain(ctx context.Context, id domain.DomainID) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM query_cache
		WHERE key IN (SELECT key FROM cache_domains WHERE domain = ?)
	`, string(id))
	if err != nil {
		return fmt.Errorf("invalidating domain %s: %w", id, err)
	}
	return nil
}

// Purge removes all expired entries. Called opportunistically; the
// cache stays correct without it since Get checks expiry itself.
func (c *Cache) Purge(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM query_cache WHERE expires_at < ?", c.now().Unix())
	if err != nil {
		return fmt.Errorf("purging expired entries: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (c *Cache) migrate(fsys embed.FS) error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := c.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := c.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
