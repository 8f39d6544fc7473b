// Package memory provides an in-memory vector store using brute-force
// cosine search. Suitable for catalogs up to a few tens of thousands of
// chunks.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/smartshopper/agent/internal/vectorstore"
)

// Store holds entries in a map keyed by entry ID.
type Store struct {
	mu      sync.RWMutex
	entries map[string]vectorstore.Entry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]vectorstore.Entry)}
}

// Upsert inserts entries, replacing any with the same ID.
func (s *Store) Upsert(ctx context.Context, entries []vectorstore.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return nil
}

// Search scans every entry and returns the topK closest matches.
func (s *Store) Search(ctx context.Context, vector []float64, topK int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	matches := make([]vectorstore.Match, 0, len(s.entries))
	for _, e := range s.entries {
		if !filter.Matches(e.Meta) {
			continue
		}
		matches = append(matches, vectorstore.Match{
			Entry:    e,
			Distance: vectorstore.Distance(vector, e.Vector),
		})
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count returns the number of indexed entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Clear removes all entries.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]vectorstore.Entry)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
