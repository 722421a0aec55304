package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"banklink/internal/platform/metrics"
	"banklink/pkg/requestcontext"
)

// Module names used by the recorder's callers.
const (
	ModuleGateway    = "gateway"
	ModuleOnboarding = "onboarding"
	ModuleAccounts   = "accounts"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Recorder writes audit entries when auditing is enabled. Client IP and
// user agent come from the request context, populated by the transport
// middleware; callers never compute them.
type Recorder struct {
	store   Store
	enabled bool
	metrics *metrics.Metrics
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithMetrics enables the audit entry counter.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// NewRecorder builds a Recorder. A disabled recorder turns Log into a no-op
// while keeping GetLogs functional.
func NewRecorder(store Store, enabled bool, opts ...Option) (*Recorder, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	r := &Recorder{store: store, enabled: enabled}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Log persists one audit entry. actorID falls back to the ambient actor from
// the context; empty actor and reference ids are stored as null.
func (r *Recorder) Log(ctx context.Context, action, module string, payload map[string]any, actorID, referenceID string) error {
	if !r.enabled {
		return nil
	}

	if actorID == "" {
		actorID = requestcontext.ActorID(ctx)
	}

	entry := Entry{
		ID:          uuid.New(),
		Action:      action,
		Module:      module,
		Payload:     payload,
		ActorID:     nullable(actorID),
		ReferenceID: nullable(referenceID),
		ClientIP:    requestcontext.ClientIP(ctx),
		UserAgent:   requestcontext.UserAgent(ctx),
		CreatedAt:   requestcontext.Now(ctx),
	}

	if err := r.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	r.metrics.IncrementAuditEntry(module, action)
	return nil
}

// GetLogs returns matching entries newest-first. Limit is clamped to
// [1, 500] with a default of 50.
func (r *Recorder) GetLogs(ctx context.Context, filters Filters, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := r.store.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
