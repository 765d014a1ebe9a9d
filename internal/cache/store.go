// Package cache persists catalog entities locally and reconciles them with
// the built-in seed set.
//
// The whole cache is one JSON array under a fixed path on an injected
// filesystem. Reads never fail: when the file is missing, unreadable, or
// corrupted, GetAll degrades to exactly the seed set. Degraded reads are
// not silent; they are logged, counted, and exposed through Snapshot so a
// caller can tell defaults apart from live data.
package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
	"github.com/Avinash9608/Furniture-sub006/internal/logging"
	"github.com/Avinash9608/Furniture-sub006/internal/metrics"
)

// DefaultPath is the fixed storage key for the cached entity list.
const DefaultPath = "catalog/categories.json"

// Snapshot is one materialized read of the cache.
type Snapshot struct {
	Entities []catalog.Entity
	// Degraded is set when the stored list could not be read and the
	// snapshot holds only the seed set.
	Degraded bool
	// Err is the cause of the degradation, nil otherwise.
	Err error
}

// Store owns cache persistence. No other component writes to the backing
// file. Reads and writes are safe for concurrent use.
type Store struct {
	fs     afero.Fs
	path   string
	seeds  []catalog.Entity
	clock  catalog.Clock
	logger *zap.Logger

	mu sync.RWMutex
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// New builds a Store over fs. An empty path uses DefaultPath; a nil clock
// uses the system clock.
func New(fs afero.Fs, path string, clock catalog.Clock, logger *zap.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Store{
		fs:     fs,
		path:   path,
		seeds:  catalog.SeedCategories(),
		clock:  clock,
		logger: logging.Or(logger),
	}
}

// GetAll returns the union of the seed set and every stored entity whose id
// is not a seed id. Seed fields always win on read, even when a stored
// record shares a seed id. GetAll never fails.
func (s *Store) GetAll() []catalog.Entity {
	return s.Get().Entities
}

// Get returns a Snapshot, including whether the read was degraded.
func (s *Store) Get() Snapshot {
	s.mu.RLock()
	records, err := s.load()
	s.mu.RUnlock()

	out := catalog.SeedCategories()
	if err != nil {
		metrics.ObserveDegradedRead()
		s.logger.Warn("cache unreadable, serving seed set only",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return Snapshot{Entities: out, Degraded: true, Err: err}
	}

	for _, r := range records {
		if catalog.IsSeedID(r.ID) {
			continue
		}
		out = append(out, r.Entity)
	}
	return Snapshot{Entities: out}
}

// Put upserts the entity by id, last write wins. Writing a record with a
// seed id is accepted, but GetAll keeps reporting the canonical seed fields
// for that id.
func (s *Store) Put(e catalog.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		// A corrupt list is replaced rather than crashed on; the seeds
		// are the durable source of defaults.
		s.logger.Warn("cache unreadable on write, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		records = nil
	}

	rec := catalog.CacheRecord{Entity: e, UpdatedAt: s.clock.Now()}
	replaced := false
	for i := range records {
		if records[i].ID == e.ID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}
	return s.save(records)
}

// Remove deletes the entity with the given id. Seed ids are not deletable;
// removing one is a no-op.
func (s *Store) Remove(id string) error {
	if catalog.IsSeedID(id) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil
	}

	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.save(kept)
}

func (s *Store) load() ([]catalog.CacheRecord, error) {
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if exists, statErr := afero.Exists(s.fs, s.path); statErr == nil && !exists {
			// An empty cache is the normal first-run state, not a failure.
			return nil, nil
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}

	var records []catalog.CacheRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	return records, nil
}

func (s *Store) save(records []catalog.CacheRecord) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}
