// Package audit records an immutable trail of significant business
// operations: every bank API call, onboarding step, and account
// verification/linking attempt.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only audit record. Actor and reference ids are nullable:
// system-initiated calls have no actor, and token refreshes have no
// correlation key.
type Entry struct {
	ID          uuid.UUID
	Action      string
	Module      string
	Payload     map[string]any
	ActorID     *string
	ReferenceID *string
	ClientIP    string
	UserAgent   string
	CreatedAt   time.Time
}

// Filters narrows a GetLogs query. Zero values mean "no filter"; the date
// range is inclusive on both ends.
type Filters struct {
	Module      string
	Action      string
	ActorID     string
	ReferenceID string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// Store persists audit entries. Implementations must treat entries as
// append-only.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filters Filters, limit, offset int) ([]Entry, error)
}
