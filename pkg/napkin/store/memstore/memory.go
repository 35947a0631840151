package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/store"
)

type entry struct {
	count int64
	seq   int64
}

// Store is an in-memory implementation of store.Store for tests and dry runs.
type Store struct {
	mu     sync.RWMutex
	seq    int64
	tables map[category.Category]map[string]*entry
	stats  map[string]int64
	runs   []store.Run

	// PingErr, when set, is returned by Ping to simulate an unreachable store.
	PingErr error
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		tables: make(map[category.Category]map[string]*entry),
		stats:  make(map[string]int64),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error { return s.PingErr }

// Increment adds one to the count of term in the table of cat.
func (s *Store) Increment(ctx context.Context, cat category.Category, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[cat]
	if !ok {
		table = make(map[string]*entry)
		s.tables[cat] = table
	}
	e, ok := table[term]
	if !ok {
		s.seq++
		e = &entry{seq: s.seq}
		table[term] = e
	}
	e.count++
	return nil
}

// TopN returns up to n entries by count descending; ties keep first-insertion
// order.
func (s *Store) TopN(ctx context.Context, cat category.Category, n int) ([]store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n == 0 {
		return nil, nil
	}

	type ranked struct {
		term string
		e    entry
	}
	table := s.tables[cat]
	all := make([]ranked, 0, len(table))
	for term, e := range table {
		all = append(all, ranked{term: term, e: *e})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].e.count != all[j].e.count {
			return all[i].e.count > all[j].e.count
		}
		return all[i].e.seq < all[j].e.seq
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}

	out := make([]store.Entry, len(all))
	for i, r := range all {
		out[i] = store.Entry{Term: r.term, Count: r.e.count}
	}
	return out, nil
}

// IncrementStat adds one to the named counter.
func (s *Store) IncrementStat(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[name]++
	return nil
}

// SetTokenCount overwrites the total token counter.
func (s *Store) SetTokenCount(ctx context.Context, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[category.TokenStat] = n
	return nil
}

// Stats returns a copy of the counters.
func (s *Store) Stats(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out, nil
}

// Reset clears tables and counters.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[category.Category]map[string]*entry)
	s.stats = make(map[string]int64)
	return nil
}

// RecordRun appends a run record.
func (s *Store) RecordRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, r)
	return nil
}

// Runs returns the most recent runs first.
func (s *Store) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Run
	for i := len(s.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.runs[i])
	}
	return out, nil
}
