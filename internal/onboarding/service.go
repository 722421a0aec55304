package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"

	"github.com/google/uuid"

	"banklink/internal/audit"
	"banklink/internal/events"
	"banklink/internal/logging"
	"banklink/internal/platform/config"
	dErrors "banklink/pkg/domain-errors"
	"banklink/pkg/platform/mask"
	"banklink/pkg/requestcontext"
)

// Gateway is the shared authenticated HTTP client the onboarding flow calls
// the bank through.
type Gateway interface {
	Get(ctx context.Context, path string, headers map[string]string) (*http.Response, error)
	Post(ctx context.Context, path string, payload any, headers map[string]string) (*http.Response, error)
}

// Auditor records flow outcomes for the audit trail.
type Auditor interface {
	Log(ctx context.Context, action, module string, payload map[string]any, actorID, referenceID string) error
}

// Service orchestrates the onboarding lifecycle. Transport and upstream
// failures resolve to success:false responses at this boundary; only local
// validation and missing-record lookups surface as errors. Failure paths
// leave the stored record untouched.
type Service struct {
	gw     Gateway
	store  Store
	audit  Auditor
	events events.Sink
	logs   *logging.Gateway

	initiatePath string
	verifyPath   string
	statusPath   string
	completePath string
}

// New builds the onboarding service from bank config and its collaborators.
func New(cfg config.Bank, gw Gateway, store Store, auditor Auditor, sink events.Sink, logs *logging.Gateway) (*Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("auditor is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("event sink is required")
	}
	if logs == nil {
		return nil, fmt.Errorf("logging gateway is required")
	}

	return &Service{
		gw:           gw,
		store:        store,
		audit:        auditor,
		events:       sink,
		logs:         logs,
		initiatePath: pathOr(cfg.OnboardingInitiate, "/onboarding/initiate"),
		verifyPath:   pathOr(cfg.OnboardingVerify, "/onboarding/verify"),
		statusPath:   pathOr(cfg.OnboardingStatus, "/onboarding/status"),
		completePath: pathOr(cfg.OnboardingComplete, "/onboarding/complete"),
	}, nil
}

// Initiate opens an onboarding case for a customer. On a successful bank
// response a record is created under the bank-assigned reference id.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	s.logs.LogInfo("onboarding initiation started", map[string]any{
		"cnic":   mask.Value(req.CNIC),
		"mobile": mask.Value(req.MobileNo),
	})

	if err := validateInitiate(req); err != nil {
		return nil, err
	}

	raw, failMsg := s.call(ctx, s.initiatePath, req, "onboarding initiation failed")
	if failMsg != "" {
		return &InitiateResponse{Success: false, Message: failMsg}, nil
	}

	resp := &InitiateResponse{
		Success:     boolField(raw, "success"),
		ReferenceID: stringField(raw, "referenceId"),
		Message:     stringField(raw, "message"),
		Raw:         raw,
	}
	if !resp.Success || resp.ReferenceID == "" {
		return resp, nil
	}

	now := requestcontext.Now(ctx)
	rec := Record{
		ID:              uuid.New(),
		ReferenceID:     resp.ReferenceID,
		CNIC:            req.CNIC,
		FullName:        req.FullName,
		MobileNo:        req.MobileNo,
		Email:           req.Email,
		Status:          StatusInitiated,
		RequestPayload:  toPayload(req),
		ResponsePayload: raw,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		s.logs.LogError("onboarding initiation failed", map[string]any{"reference_id": resp.ReferenceID}, err)
		return &InitiateResponse{Success: false, Message: fmt.Sprintf("initiation failed: %v", err)}, nil
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeOnboardingInitiated,
		OccurredAt:  now,
		ReferenceID: rec.ReferenceID,
		Payload:     resp,
	})
	s.auditLog(ctx, "onboarding_initiated", map[string]any{
		"reference_id": rec.ReferenceID,
		"status":       string(rec.Status),
	}, rec.ReferenceID)

	return resp, nil
}

// Verify confirms the customer's identity for an initiated case. The stored
// record transitions to verified only on a successful bank response.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	s.logs.LogInfo("onboarding verification started", map[string]any{
		"reference_id": req.ReferenceID,
	})

	if req.ReferenceID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reference id is required")
	}
	if req.OTP == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "otp is required")
	}

	rec, err := s.store.FindByReferenceID(ctx, req.ReferenceID)
	if err != nil {
		return nil, err
	}

	raw, failMsg := s.call(ctx, s.verifyPath, req, "onboarding verification failed")
	if failMsg != "" {
		return &VerifyResponse{Success: false, ReferenceID: req.ReferenceID, Message: failMsg}, nil
	}

	resp := &VerifyResponse{
		Success:     boolField(raw, "success"),
		ReferenceID: req.ReferenceID,
		Message:     stringField(raw, "message"),
		Raw:         raw,
	}
	if !resp.Success {
		return resp, nil
	}

	now := requestcontext.Now(ctx)
	rec.Status = StatusVerified
	rec.VerificationPayload = raw
	rec.UpdatedAt = now
	if err := s.store.Update(ctx, *rec); err != nil {
		s.logs.LogError("onboarding verification failed", map[string]any{"reference_id": req.ReferenceID}, err)
		return &VerifyResponse{Success: false, ReferenceID: req.ReferenceID, Message: fmt.Sprintf("verification failed: %v", err)}, nil
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeOnboardingVerified,
		OccurredAt:  now,
		ReferenceID: rec.ReferenceID,
		Payload:     resp,
	})
	s.auditLog(ctx, "onboarding_verified", map[string]any{
		"reference_id": rec.ReferenceID,
		"status":       string(rec.Status),
	}, rec.ReferenceID)

	return resp, nil
}

// GetStatus returns the locally tracked status alongside the bank's view of
// the case. Read-only; the stored record is never mutated here.
func (s *Service) GetStatus(ctx context.Context, referenceID string) (*StatusResponse, error) {
	if referenceID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reference id is required")
	}

	rec, err := s.store.FindByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	httpResp, err := s.gw.Get(ctx, s.statusPath+"/"+referenceID, nil)
	if err != nil {
		s.logs.LogError("onboarding status lookup failed", map[string]any{"reference_id": referenceID}, err)
		return &StatusResponse{
			Success:     false,
			ReferenceID: referenceID,
			Status:      rec.Status,
			Message:     fmt.Sprintf("status lookup failed: %v", err),
		}, nil
	}
	raw, err := decodeBody(httpResp)
	if err != nil {
		s.logs.LogError("onboarding status lookup failed", map[string]any{"reference_id": referenceID}, err)
		return &StatusResponse{
			Success:     false,
			ReferenceID: referenceID,
			Status:      rec.Status,
			Message:     fmt.Sprintf("status lookup failed: %v", err),
		}, nil
	}

	return &StatusResponse{
		Success:     true,
		ReferenceID: referenceID,
		Status:      rec.Status,
		Message:     stringField(raw, "message"),
		Raw:         raw,
	}, nil
}

// Complete finalizes a verified case. Sets the completion timestamp and
// transitions the record to completed on a successful bank response.
func (s *Service) Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error) {
	s.logs.LogInfo("onboarding completion started", map[string]any{
		"reference_id": req.ReferenceID,
	})

	if req.ReferenceID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reference id is required")
	}

	rec, err := s.store.FindByReferenceID(ctx, req.ReferenceID)
	if err != nil {
		return nil, err
	}

	raw, failMsg := s.call(ctx, s.completePath, req, "onboarding completion failed")
	if failMsg != "" {
		return &CompleteResponse{Success: false, ReferenceID: req.ReferenceID, Message: failMsg}, nil
	}

	resp := &CompleteResponse{
		Success:     boolField(raw, "success"),
		ReferenceID: req.ReferenceID,
		Message:     stringField(raw, "message"),
		Raw:         raw,
	}
	if !resp.Success {
		return resp, nil
	}

	now := requestcontext.Now(ctx)
	rec.Status = StatusCompleted
	rec.CompletionPayload = raw
	rec.CompletedAt = &now
	rec.UpdatedAt = now
	if err := s.store.Update(ctx, *rec); err != nil {
		s.logs.LogError("onboarding completion failed", map[string]any{"reference_id": req.ReferenceID}, err)
		return &CompleteResponse{Success: false, ReferenceID: req.ReferenceID, Message: fmt.Sprintf("completion failed: %v", err)}, nil
	}

	s.publish(ctx, events.Event{
		Type:        events.TypeOnboardingCompleted,
		OccurredAt:  now,
		ReferenceID: rec.ReferenceID,
		Payload:     resp,
	})
	s.auditLog(ctx, "onboarding_completed", map[string]any{
		"reference_id": rec.ReferenceID,
		"status":       string(rec.Status),
	}, rec.ReferenceID)

	return resp, nil
}

// call posts payload through the gateway and decodes the response body. A
// non-empty failMsg means the caller should return a failure response.
func (s *Service) call(ctx context.Context, path string, payload any, logMsg string) (raw map[string]any, failMsg string) {
	httpResp, err := s.gw.Post(ctx, path, payload, nil)
	if err != nil {
		s.logs.LogError(logMsg, map[string]any{"endpoint": path}, err)
		return nil, fmt.Sprintf("%s: %v", logMsg, err)
	}
	raw, err = decodeBody(httpResp)
	if err != nil {
		s.logs.LogError(logMsg, map[string]any{"endpoint": path}, err)
		return nil, fmt.Sprintf("%s: %v", logMsg, err)
	}
	return raw, ""
}

func validateInitiate(req InitiateRequest) error {
	if req.CNIC == "" || !mask.ValidCNIC(req.CNIC) {
		return dErrors.New(dErrors.CodeInvalidInput, "cnic must be 13 digits")
	}
	if req.FullName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	if req.MobileNo == "" || !mask.ValidMobile(req.MobileNo) {
		return dErrors.New(dErrors.CodeInvalidInput, "mobile number must be 11 digits starting with 03")
	}
	if req.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "email is not valid")
	}
	return nil
}

func decodeBody(resp *http.Response) (map[string]any, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return raw, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logs.LogError("event publish failed", map[string]any{"type": string(event.Type)}, err)
	}
}

func (s *Service) auditLog(ctx context.Context, action string, payload map[string]any, referenceID string) {
	if err := s.audit.Log(ctx, action, audit.ModuleOnboarding, payload, "", referenceID); err != nil {
		s.logs.LogError("audit write failed", map[string]any{"action": action}, err)
	}
}

func pathOr(path, fallback string) string {
	if path != "" {
		return path
	}
	return fallback
}

func toPayload(v any) map[string]any {
	b, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolField(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
