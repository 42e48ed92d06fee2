// Package memory provides the in-process implementation of
// storage.Storage.
//
// All state lives in one map plus an ID counter, guarded by a single
// sync.RWMutex: writes (Create, Update, Delete) take the write lock, reads
// take the read lock. Every operation is a bounded map lookup/insert/delete
// except List, which sorts a copy.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/types"
)

// Store is the in-memory record store.
type Store struct {
	mu      sync.RWMutex
	records map[int64]types.Record
	// lastID only ever grows, so deleted IDs are never handed out again.
	lastID int64
}

var _ storage.Storage = (*Store)(nil)

// New returns an empty Store. The first record created gets ID 1.
func New() *Store {
	return &Store{
		records: make(map[int64]types.Record),
	}
}

// Create validates the input, then inserts a record under the next ID.
// Validation happens before the lock is taken, so a rejected call never
// advances the counter.
func (s *Store) Create(_ context.Context, name string, age int) (types.Record, error) {
	if err := storage.ValidateName(name); err != nil {
		return types.Record{}, err
	}
	if err := storage.ValidateAge(age); err != nil {
		return types.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	rec := types.Record{ID: s.lastID, Name: name, Age: age}
	s.records[rec.ID] = rec

	return rec, nil
}

// Get returns a copy of the record.
func (s *Store) Get(_ context.Context, id int64) (types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return types.Record{}, storage.NotFound(id)
	}
	return rec, nil
}

// List returns all records sorted by ID.
func (s *Store) List(_ context.Context) ([]types.Record, error) {
	s.mu.RLock()
	out := make([]types.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b types.Record) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// Update sets the age of an existing record.
func (s *Store) Update(_ context.Context, id int64, age int) (types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return types.Record{}, storage.NotFound(id)
	}
	if err := storage.ValidateAge(age); err != nil {
		return types.Record{}, err
	}

	rec.Age = age
	s.records[id] = rec
	return rec, nil
}

// Delete removes the record.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return storage.NotFound(id)
	}
	delete(s.records, id)
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op; the store holds no external resources.
func (s *Store) Close() error { return nil }
