// Package memory provides an in-memory audit store for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"

	"banklink/internal/audit"
)

// Store keeps audit entries in memory. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

// NewStore creates an empty in-memory audit store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *Store) List(_ context.Context, filters audit.Filters, limit, offset int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]audit.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if matches(e, filters) {
			matched = append(matched, e)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// All returns every stored entry in insertion order. Test helper.
func (s *Store) All() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func matches(e audit.Entry, f audit.Filters) bool {
	if f.Module != "" && e.Module != f.Module {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.ActorID != "" && (e.ActorID == nil || *e.ActorID != f.ActorID) {
		return false
	}
	if f.ReferenceID != "" && (e.ReferenceID == nil || *e.ReferenceID != f.ReferenceID) {
		return false
	}
	if f.DateFrom != nil && e.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && e.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}
