// Package events defines the domain events emitted after successful bank
// operations and the sink interface they are published through. Sinks are
// invoked synchronously by the orchestrators; there is no implicit event bus.
package events

import (
	"context"
	"sync"
	"time"
)

// Type names a domain event.
type Type string

const (
	TypeOnboardingInitiated Type = "onboarding_initiated"
	TypeOnboardingVerified  Type = "onboarding_verified"
	TypeOnboardingCompleted Type = "onboarding_completed"
	TypeAccountVerified     Type = "account_verified"
	TypeAccountLinked       Type = "account_linked"
)

// Event carries the persisted record and response data for one successful
// operation. ReferenceID is set for onboarding events, TraceNo for account
// verification/linking events; both are the external system's correlation
// keys.
type Event struct {
	Type        Type      `json:"type"`
	OccurredAt  time.Time `json:"occurred_at"`
	ReferenceID string    `json:"reference_id,omitempty"`
	TraceNo     string    `json:"trace_no,omitempty"`
	Payload     any       `json:"payload"`
}

// Sink receives domain events. Implementations must be safe for concurrent
// use.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// MemorySink collects events in memory. Used in tests and as the default sink
// when Kafka is not configured.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
