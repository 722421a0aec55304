// Package httptransport is the thin HTTP layer. Handlers delegate to the
// domain services and never embed business logic.
package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"banklink/internal/platform/middleware"
	dErrors "banklink/pkg/domain-errors"
)

// Deps carries everything the router needs.
type Deps struct {
	Onboarding OnboardingService
	Accounts   AccountsService
	Audit      AuditService
	Auth       *middleware.InboundAuth
	Log        *zap.Logger
	Health     func() error
}

// NewRouter wires the middleware chain and all public endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logging(deps.Log))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Middleware)
		}
		NewOnboardingHandler(deps.Onboarding).Register(r)
		NewAccountsHandler(deps.Accounts).Register(r)
		NewAuditHandler(deps.Audit).Register(r)
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates domain errors into the uniform failure envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		status = http.StatusBadRequest
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeUnauthorized:
		status = http.StatusUnauthorized
	case dErrors.CodeUpstream:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": err.Error(),
	})
}
