// Package file provides a filesystem-backed record source. The external
// producer deposits one JSON snapshot per domain (<dir>/<domain>.json);
// this adapter reads them and watches for replacements.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
	"github.com/custodia-labs/insight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/insight-cli/internal/logger"
)

// debounceWindow coalesces the burst of filesystem events a single
// atomic-rename or rewrite produces into one change signal.
const debounceWindow = 250 * time.Millisecond

// Source reads domain snapshots from a directory.
type Source struct {
	dir string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

var _ driven.RecordSource = (*Source)(nil)

// NewSource creates a source over dir. The directory must exist.
func NewSource(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("knowledge directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("knowledge directory %s: %w", dir, domain.ErrInvalidInput)
	}
	return &Source{dir: dir}, nil
}

// Domains lists the valid domains for which a snapshot file exists.
// Files that do not name a known domain are ignored.
func (s *Source) Domains(_ context.Context) ([]domain.DomainID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge directory: %w", err)
	}

	var ids []domain.DomainID
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := domainFromFilename(entry.Name())
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Load returns the raw bytes of a domain's snapshot file.
func (s *Source) Load(_ context.Context, id domain.DomainID) ([]byte, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", id, err)
	}
	return raw, nil
}

// Watch starts watching the directory and invokes onChange for each
// replaced or rewritten snapshot, debounced per domain. Returns once
// the watch is established; delivery stops when ctx is cancelled.
func (s *Source) Watch(ctx context.Context, onChange func(domain.DomainID)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	go s.deliver(ctx, watcher, onChange)

	logger.Debug("Source: watching %s for snapshot changes", s.dir)
	return nil
}

// deliver pumps watcher events until ctx is cancelled, debouncing one
// timer per domain.
func (s *Source) deliver(ctx context.Context, watcher *fsnotify.Watcher, onChange func(domain.DomainID)) {
	var mu sync.Mutex
	pending := make(map[domain.DomainID]*time.Timer)

	defer func() {
		mu.Lock()
		for _, timer := range pending {
			timer.Stop()
		}
		mu.Unlock()
		watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			id, valid := domainFromFilename(filepath.Base(event.Name))
			if !valid {
				continue
			}

			mu.Lock()
			if timer, exists := pending[id]; exists {
				timer.Reset(debounceWindow)
			} else {
				pending[id] = time.AfterFunc(debounceWindow, func() {
					mu.Lock()
					delete(pending, id)
					mu.Unlock()
					if ctx.Err() == nil {
						onChange(id)
					}
				})
			}
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Source: watch error: %v", err)
		}
	}
}

// Close stops any active watcher.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}

func (s *Source) path(id domain.DomainID) string {
	return filepath.Join(s.dir, string(id)+".json")
}

// domainFromFilename maps "market.json" to DomainMarket; unknown names
// report false.
func domainFromFilename(name string) (domain.DomainID, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return "", false
	}
	id := domain.DomainID(base)
	if !domain.IsValidDomain(id) {
		return "", false
	}
	return id, true
}
