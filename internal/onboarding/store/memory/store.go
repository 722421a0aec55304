// Package memory provides an in-memory onboarding store used in tests and
// local development.
package memory

import (
	"context"
	"sync"

	"banklink/internal/onboarding"
	dErrors "banklink/pkg/domain-errors"
)

// Store keeps onboarding records in memory, keyed by reference id.
type Store struct {
	mu      sync.Mutex
	records map[string]onboarding.Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]onboarding.Record)}
}

func (s *Store) Create(_ context.Context, rec onboarding.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ReferenceID]; exists {
		return dErrors.New(dErrors.CodeBadRequest, "onboarding record already exists")
	}
	s.records[rec.ReferenceID] = rec
	return nil
}

func (s *Store) FindByReferenceID(_ context.Context, referenceID string) (*onboarding.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[referenceID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "onboarding record not found")
	}
	return &rec, nil
}

func (s *Store) Update(_ context.Context, rec onboarding.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ReferenceID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "onboarding record not found")
	}
	s.records[rec.ReferenceID] = rec
	return nil
}
