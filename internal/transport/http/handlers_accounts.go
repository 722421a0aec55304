package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"banklink/internal/accounts"
	dErrors "banklink/pkg/domain-errors"
)

// AccountsService is the slice of the accounts orchestrator the transport
// needs.
type AccountsService interface {
	VerifyAccount(ctx context.Context, req accounts.VerifyAccountRequest) (*accounts.VerifyAccountResponse, error)
	LinkAccount(ctx context.Context, req accounts.LinkAccountRequest) (*accounts.LinkAccountResponse, error)
}

type AccountsHandler struct {
	svc AccountsService
}

func NewAccountsHandler(svc AccountsService) *AccountsHandler {
	return &AccountsHandler{svc: svc}
}

func (h *AccountsHandler) Register(r chi.Router) {
	r.Post("/accounts/verify", h.handleVerify)
	r.Post("/accounts/link", h.handleLink)
}

func (h *AccountsHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req accounts.VerifyAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.svc.VerifyAccount(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AccountsHandler) handleLink(w http.ResponseWriter, r *http.Request) {
	var req accounts.LinkAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.svc.LinkAccount(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
