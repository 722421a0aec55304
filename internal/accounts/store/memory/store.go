// Package memory provides an in-memory accounts store used in tests and
// local development.
package memory

import (
	"context"
	"sync"

	"banklink/internal/accounts"
	dErrors "banklink/pkg/domain-errors"
)

// Store keeps verification and linking records in memory, newest last.
type Store struct {
	mu            sync.Mutex
	verifications []accounts.VerificationRecord
	linkings      []accounts.LinkingRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) CreateVerification(_ context.Context, rec accounts.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications = append(s.verifications, rec)
	return nil
}

// FindVerificationByTraceNo returns the most recent attempt for a trace
// number.
func (s *Store) FindVerificationByTraceNo(_ context.Context, traceNo string) (*accounts.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.verifications) - 1; i >= 0; i-- {
		if s.verifications[i].TraceNo == traceNo {
			rec := s.verifications[i]
			return &rec, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "verification record not found")
}

func (s *Store) CreateLinking(_ context.Context, rec accounts.LinkingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkings = append(s.linkings, rec)
	return nil
}

// FindLinkingByTraceNo returns the most recent attempt for a trace number.
func (s *Store) FindLinkingByTraceNo(_ context.Context, traceNo string) (*accounts.LinkingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.linkings) - 1; i >= 0; i-- {
		if s.linkings[i].TraceNo == traceNo {
			rec := s.linkings[i]
			return &rec, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "linking record not found")
}

// Verifications returns a copy of all verification records. Test helper.
func (s *Store) Verifications() []accounts.VerificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]accounts.VerificationRecord, len(s.verifications))
	copy(out, s.verifications)
	return out
}

// Linkings returns a copy of all linking records. Test helper.
func (s *Store) Linkings() []accounts.LinkingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]accounts.LinkingRecord, len(s.linkings))
	copy(out, s.linkings)
	return out
}
