package objectstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/brewdb/internal/database"
)

// EventKind identifies a cache notification.
type EventKind int

const (
	// EventInserted fires after an insert commits.
	EventInserted EventKind = iota
	// EventDeleted carries the object evicted from the cache.
	EventDeleted
	// EventPropertyChanged fires after UpdateProperty commits.
	EventPropertyChanged
)

// Event is delivered to subscribers after the cache has changed.
type Event[T Entity] struct {
	Kind     EventKind
	Key      int
	Property string
	Object   T
}

// Store is the persistence engine for one entity type.
//
// The store is not meant to share one connection across goroutines that
// mutate concurrently; the cache itself is guarded so reads are safe.
type Store[T Entity] struct {
	db      *sql.DB
	dialect database.Dialect
	mapping Mapping[T]

	mu    sync.RWMutex
	cache map[int]T

	listenersMu  sync.Mutex
	listeners    map[int]func(Event[T])
	nextListener int
}

// New creates a store for the entity described by m.
func New[T Entity](db *sql.DB, d database.Dialect, m Mapping[T]) (*Store[T], error) {
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}
	return &Store[T]{
		db:        db,
		dialect:   d,
		mapping:   m,
		cache:     make(map[int]T),
		listeners: make(map[int]func(Event[T])),
	}, nil
}

// TableName is the primary table of the store.
func (s *Store[T]) TableName() string { return s.mapping.Table.Name }

// Subscribe registers fn for every future event and returns a function
// that removes it.
func (s *Store[T]) Subscribe(fn func(Event[T])) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store[T]) emit(ev Event[T]) {
	s.listenersMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event[T]), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Contains reports whether id is cached.
func (s *Store[T]) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[id]
	return ok
}

// GetByID returns the cached object with key id.
func (s *Store[T]) GetByID(id int) (T, bool) {
	s.mu.RLock()
	obj, ok := s.cache[id]
	s.mu.RUnlock()
	if !ok {
		slog.Warn("object not found", "table", s.TableName(), "id", id)
	}
	return obj, ok
}

// GetByIDs returns the cached objects for ids in the same order, skipping
// any that are missing.
func (s *Store[T]) GetByIDs(ids []int) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0, len(ids))
	for _, id := range ids {
		obj, ok := s.cache[id]
		if !ok {
			slog.Warn("skipping missing object", "table", s.TableName(), "id", id)
			continue
		}
		result = append(result, obj)
	}
	return result
}

// FindFirstMatching returns the lowest-keyed object accepted by pred.
func (s *Store[T]) FindFirstMatching(pred func(T) bool) (T, bool) {
	for _, obj := range s.GetAll() {
		if pred(obj) {
			return obj, true
		}
	}
	var zero T
	return zero, false
}

// FindAllMatching returns every object accepted by pred in key order.
func (s *Store[T]) FindAllMatching(pred func(T) bool) []T {
	var result []T
	for _, obj := range s.GetAll() {
		if pred(obj) {
			result = append(result, obj)
		}
	}
	if result == nil {
		result = []T{}
	}
	return result
}

// GetAll returns every cached object in key order.
func (s *Store[T]) GetAll() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.cache))
	for id := range s.cache {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	result := make([]T, len(ids))
	for i, id := range ids {
		result[i] = s.cache[id]
	}
	return result
}

// GetAllRaw returns a copy of the cache keyed by primary key.
func (s *Store[T]) GetAllRaw() map[int]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int]T, len(s.cache))
	for id, obj := range s.cache {
		result[id] = obj
	}
	return result
}

// Len is the number of cached objects.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// exec runs one statement, logging the SQL and driver error on failure.
func (s *Store[T]) exec(ctx context.Context, q database.Querier, query string, args ...any) (sql.Result, error) {
	query = database.Rebind(s.dialect, query)
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Error("sql statement failed", "table", s.TableName(), "sql", query, "error", err)
		return nil, err
	}
	return res, nil
}

func (s *Store[T]) query(ctx context.Context, q database.Querier, query string, args ...any) (*sql.Rows, error) {
	query = database.Rebind(s.dialect, query)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("sql query failed", "table", s.TableName(), "sql", query, "error", err)
		return nil, err
	}
	return rows, nil
}
