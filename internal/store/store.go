// Package store loads the persisted embedding collection and serves it
// read-only for the lifetime of the process.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hyperjump/joshu/internal/models"
	"go.uber.org/zap"
)

// Store is the in-memory document collection. It is built once, either from
// the store file at startup or from records directly, and never mutated
// afterwards; concurrent readers need no locking.
type Store struct {
	records  []models.DocumentRecord
	dims     int
	bySource map[string]int
	skipped  int
	path     string
}

// Option configures store loading.
type Option func(*loadState)

type loadState struct {
	logger *zap.Logger
}

// WithLogger sets a logger for per-record load diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *loadState) { s.logger = l }
}

// Load reads the JSON array of document records at path and builds the store.
// A file that cannot be read or parsed is a fatal error; individual records
// with a missing embedding, or with a dimensionality differing from the rest
// of the store, are skipped with a diagnostic. A store with no usable records
// is an error: no query can be served without one.
func Load(path string, opts ...Option) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	var records []models.DocumentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse store file %s: %w", path, err)
	}
	st, err := New(records, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	st.path = path
	return st, nil
}

// New builds a store from records, applying the same per-record validation
// as Load. The records slice is not retained; valid records are copied.
func New(records []models.DocumentRecord, opts ...Option) (*Store, error) {
	ls := &loadState{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ls)
	}

	st := &Store{
		records:  make([]models.DocumentRecord, 0, len(records)),
		bySource: make(map[string]int),
	}
	for i := range records {
		rec := records[i]
		if len(rec.Embedding) == 0 {
			ls.logger.Warn("skipping record with missing embedding",
				zap.Int("index", i),
				zap.String("source", rec.Source))
			st.skipped++
			continue
		}
		if st.dims == 0 {
			st.dims = len(rec.Embedding)
		} else if len(rec.Embedding) != st.dims {
			ls.logger.Warn("skipping record with mismatched dimensions",
				zap.Int("index", i),
				zap.Int("got", len(rec.Embedding)),
				zap.Int("want", st.dims))
			st.skipped++
			continue
		}
		rec.ParseMeta()
		st.records = append(st.records, rec)
		st.bySource[rec.Source]++
	}
	if len(st.records) == 0 {
		return nil, fmt.Errorf("store has no usable records")
	}
	return st, nil
}

// Len returns the number of records in the store.
func (s *Store) Len() int { return len(s.records) }

// Dimensions returns the embedding dimensionality shared by every record.
func (s *Store) Dimensions() int { return s.dims }

// Records returns the store's records. The slice and the records it holds
// are shared and must be treated as read-only.
func (s *Store) Records() []models.DocumentRecord { return s.records }

// Head returns the first n records in store order (fewer if the store is
// smaller). Used by the no-retrieval mode.
func (s *Store) Head(n int) []models.DocumentRecord {
	if n > len(s.records) {
		n = len(s.records)
	}
	if n < 0 {
		n = 0
	}
	return s.records[:n]
}

// CountBySource returns record counts keyed by source tag.
func (s *Store) CountBySource() map[string]int {
	out := make(map[string]int, len(s.bySource))
	for k, v := range s.bySource {
		out[k] = v
	}
	return out
}

// Skipped returns how many records were dropped during load.
func (s *Store) Skipped() int { return s.skipped }

// Path returns the file the store was loaded from, or "" when built from
// records directly.
func (s *Store) Path() string { return s.path }
