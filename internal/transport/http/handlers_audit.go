package httptransport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"banklink/internal/audit"
	dErrors "banklink/pkg/domain-errors"
)

var errInvalidDate = dErrors.New(dErrors.CodeBadRequest, "invalid date filter, use RFC3339 or YYYY-MM-DD")

// AuditService is the read side of the audit recorder.
type AuditService interface {
	GetLogs(ctx context.Context, filters audit.Filters, limit, offset int) ([]audit.Entry, error)
}

type AuditHandler struct {
	svc AuditService
}

func NewAuditHandler(svc AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/audit/logs", h.handleList)
}

func (h *AuditHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := audit.Filters{
		Module:      q.Get("module"),
		Action:      q.Get("action"),
		ActorID:     q.Get("user_id"),
		ReferenceID: q.Get("reference_id"),
	}
	var err error
	if filters.DateFrom, err = parseDate(q.Get("date_from")); err != nil {
		writeError(w, err)
		return
	}
	if filters.DateTo, err = parseEndDate(q.Get("date_to")); err != nil {
		writeError(w, err)
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	entries, err := h.svc.GetLogs(r.Context(), filters, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"entries": entriesJSON(entries),
	})
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errInvalidDate
}

// parseEndDate widens a date-only upper bound to the end of that day so the
// range stays inclusive. RFC3339 values are taken as-is.
func parseEndDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.Add(24*time.Hour - time.Nanosecond)
		return &t, nil
	}
	return nil, errInvalidDate
}

type entryJSON struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	Module      string         `json:"module"`
	Payload     map[string]any `json:"payload,omitempty"`
	ActorID     *string        `json:"actor_id"`
	ReferenceID *string        `json:"reference_id"`
	ClientIP    string         `json:"client_ip"`
	UserAgent   string         `json:"user_agent"`
	CreatedAt   time.Time      `json:"created_at"`
}

func entriesJSON(entries []audit.Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON{
			ID:          e.ID.String(),
			Action:      e.Action,
			Module:      e.Module,
			Payload:     e.Payload,
			ActorID:     e.ActorID,
			ReferenceID: e.ReferenceID,
			ClientIP:    e.ClientIP,
			UserAgent:   e.UserAgent,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}
