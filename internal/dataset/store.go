// Package dataset serves the activity catalog the demo front end picks
// candidates from. The catalog is a JSON file; reads are served from memory
// and the file can be edited while the server runs.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tripcast/api/internal/models"
)

// Store is the in-memory view of the dataset file.
type Store struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	items []models.Activity
}

// Open loads the dataset file or fails if it is missing or malformed.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}

	var items []models.Activity
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.logger.Info("dataset loaded",
		zap.String("path", s.path),
		zap.Int("activities", len(items)))
	return nil
}

// Activities returns a snapshot of the catalog, optionally narrowed to one
// category (case insensitive).
func (s *Store) Activities(category string) []models.Activity {
	s.mu.RLock()
	items := s.items
	s.mu.RUnlock()

	if category == "" {
		return append([]models.Activity(nil), items...)
	}
	return lo.Filter(items, func(a models.Activity, _ int) bool {
		return strings.EqualFold(a.Type, category)
	})
}

// Categories returns the distinct activity types, sorted.
func (s *Store) Categories() []string {
	s.mu.RLock()
	items := s.items
	s.mu.RUnlock()

	categories := lo.Uniq(lo.Map(items, func(a models.Activity, _ int) string {
		return a.Type
	}))
	sort.Strings(categories)
	return categories
}

// Len reports how many activities are loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Watch reloads the dataset whenever its file is rewritten, until ctx is
// canceled. A reload that fails leaves the previous snapshot in place.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// watch the directory: editors and deploy tools replace files by
	// rename+create, which a file-level watch misses
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.reload(); err != nil {
					s.logger.Warn("dataset reload failed, keeping previous data", zap.Error(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("dataset watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
