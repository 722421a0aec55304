package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"banklink/internal/onboarding"
	dErrors "banklink/pkg/domain-errors"
)

// OnboardingService is the slice of the onboarding orchestrator the
// transport needs.
type OnboardingService interface {
	Initiate(ctx context.Context, req onboarding.InitiateRequest) (*onboarding.InitiateResponse, error)
	Verify(ctx context.Context, req onboarding.VerifyRequest) (*onboarding.VerifyResponse, error)
	GetStatus(ctx context.Context, referenceID string) (*onboarding.StatusResponse, error)
	Complete(ctx context.Context, req onboarding.CompleteRequest) (*onboarding.CompleteResponse, error)
}

type OnboardingHandler struct {
	svc OnboardingService
}

func NewOnboardingHandler(svc OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

func (h *OnboardingHandler) Register(r chi.Router) {
	r.Post("/onboarding/initiate", h.handleInitiate)
	r.Post("/onboarding/verify", h.handleVerify)
	r.Get("/onboarding/status/{referenceID}", h.handleStatus)
	r.Post("/onboarding/complete", h.handleComplete)
}

func (h *OnboardingHandler) handleInitiate(w http.ResponseWriter, r *http.Request) {
	var req onboarding.InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.svc.Initiate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OnboardingHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req onboarding.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.svc.Verify(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OnboardingHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetStatus(r.Context(), chi.URLParam(r, "referenceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OnboardingHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req onboarding.CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.svc.Complete(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
