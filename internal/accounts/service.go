package accounts

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks BankCaller,Auditor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"banklink/internal/audit"
	"banklink/internal/bank"
	"banklink/internal/events"
	"banklink/internal/logging"
	"banklink/internal/platform/config"
	dErrors "banklink/pkg/domain-errors"
	"banklink/pkg/platform/mask"
	"banklink/pkg/requestcontext"
)

// BankCaller is the dedicated low-level bank client both flows go through.
type BankCaller interface {
	Post(ctx context.Context, path string, payload any) ([]byte, int, error)
}

// Auditor records flow outcomes for the audit trail.
type Auditor interface {
	Log(ctx context.Context, action, module string, payload map[string]any, actorID, referenceID string) error
}

// Service orchestrates account verification and linking. Failures past local
// validation are converted into success:false responses at this boundary and
// never propagate as errors; the failure path performs no persistence, audit,
// or event side effects.
type Service struct {
	bank   BankCaller
	store  Store
	audit  Auditor
	events events.Sink
	logs   *logging.Gateway

	verifyEndpoint  string
	linkEndpoint    string
	merchantType    string
	companyName     string
	transactionType string
}

// New builds the accounts service from bank config and its collaborators.
func New(cfg config.Bank, caller BankCaller, store Store, auditor Auditor, sink events.Sink, logs *logging.Gateway) (*Service, error) {
	if caller == nil {
		return nil, fmt.Errorf("bank caller is required")
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

	verifyEndpoint := cfg.VerifyEndpoint
	if verifyEndpoint == "" {
		verifyEndpoint = "/api/v2/verifyacclinkacc-blb"
	}
	linkEndpoint := cfg.LinkEndpoint
	if linkEndpoint == "" {
		linkEndpoint = "/api/v2/linkacc-blb"
	}

	return &Service{
		bank:            caller,
		store:           store,
		audit:           auditor,
		events:          sink,
		logs:            logs,
		verifyEndpoint:  verifyEndpoint,
		linkEndpoint:    linkEndpoint,
		merchantType:    cfg.MerchantType,
		companyName:     cfg.CompanyName,
		transactionType: "01",
	}, nil
}

// VerifyAccount checks whether an account exists and is linkable for the
// given CNIC and mobile number. Validation failures return a typed error
// before any network call; everything after validation resolves to a typed
// response.
func (s *Service) VerifyAccount(ctx context.Context, req VerifyAccountRequest) (*VerifyAccountResponse, error) {
	s.logs.LogInfo("account verification started", map[string]any{
		"trace_no": req.TraceNo,
		"cnic":     mask.Value(req.CNIC),
	})

	req.MerchantType = s.defaultMerchantType(req.MerchantType)
	if err := s.validateCommon(req.CNIC, req.MobileNo, req.MerchantType, req.TraceNo); err != nil {
		return nil, err
	}

	wireReq := s.wireRequest(ctx, req.CNIC, req.MobileNo, req.MerchantType, req.TraceNo)
	body, _, err := s.bank.Post(ctx, s.verifyEndpoint, wireReq)
	if err != nil {
		s.logs.LogError("account verification failed", map[string]any{"trace_no": req.TraceNo}, err)
		return &VerifyAccountResponse{Success: false, Message: fmt.Sprintf("verification failed: %v", err)}, nil
	}

	// No object-shape guard here: a non-object body fails the decode and is
	// handled as a generic failure. The linking flow guards explicitly.
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		s.logs.LogError("account verification failed", map[string]any{"trace_no": req.TraceNo}, err)
		return &VerifyAccountResponse{Success: false, Message: fmt.Sprintf("verification failed: %v", err)}, nil
	}

	resp := &VerifyAccountResponse{
		Success:       boolField(raw, "success"),
		ResponseCode:  stringField(raw, "responseCode"),
		Message:       stringField(raw, "message"),
		AccountStatus: stringField(raw, "accountStatus"),
		AccountTitle:  stringField(raw, "accountTitle"),
		AccountType:   stringField(raw, "accountType"),
		PinSet:        boolField(raw, "pinSet"),
		Raw:           raw,
	}

	rec := VerificationRecord{
		ID:              uuid.New(),
		TraceNo:         req.TraceNo,
		CNIC:            req.CNIC,
		MobileNo:        req.MobileNo,
		MerchantType:    req.MerchantType,
		RequestPayload:  toPayload(wireReq),
		ResponsePayload: raw,
		ResponseCode:    resp.ResponseCode,
		AccountStatus:   resp.AccountStatus,
		AccountTitle:    resp.AccountTitle,
		AccountType:     resp.AccountType,
		PinSet:          resp.PinSet,
		Success:         resp.Success,
		CreatedAt:       requestcontext.Now(ctx),
	}
	if err := s.store.CreateVerification(ctx, rec); err != nil {
		s.logs.LogError("account verification failed", map[string]any{"trace_no": req.TraceNo}, err)
		return &VerifyAccountResponse{Success: false, Message: fmt.Sprintf("verification failed: %v", err)}, nil
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeAccountVerified,
		OccurredAt: rec.CreatedAt,
		TraceNo:    rec.TraceNo,
		Payload:    resp,
	})
	s.auditLog(ctx, "account_verified", map[string]any{
		"trace_no":      rec.TraceNo,
		"response_code": rec.ResponseCode,
		"success":       rec.Success,
	}, rec.TraceNo)

	return resp, nil
}

// LinkAccount links a verified account using the OTP pin issued to the
// customer. A response body that is valid JSON but not an object resolves to
// a graceful failure instead of a decode error.
func (s *Service) LinkAccount(ctx context.Context, req LinkAccountRequest) (*LinkAccountResponse, error) {
	s.logs.LogInfo("account linking started", map[string]any{
		"trace_no": req.TraceNo,
		"cnic":     mask.Value(req.CNIC),
	})

	req.MerchantType = s.defaultMerchantType(req.MerchantType)
	if err := s.validateCommon(req.CNIC, req.MobileNo, req.MerchantType, req.TraceNo); err != nil {
		return nil, err
	}
	if req.OTPPin == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "otp pin is required")
	}

	wireReq := s.wireRequest(ctx, req.CNIC, req.MobileNo, req.MerchantType, req.TraceNo)
	payload := toPayload(wireReq)
	payload["pin"] = req.OTPPin

	body, _, err := s.bank.Post(ctx, s.linkEndpoint, payload)
	if err != nil {
		s.logs.LogError("account linking failed", map[string]any{"trace_no": req.TraceNo}, err)
		return &LinkAccountResponse{Success: false, Message: fmt.Sprintf("linking failed: %v", err)}, nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		s.logs.LogError("account linking failed", map[string]any{"trace_no": req.TraceNo}, err)
		return &LinkAccountResponse{Success: false, Message: fmt.Sprintf("linking failed: %v", err)}, nil
	}
	raw, ok := decoded.(map[string]any)
	if !ok {
		s.logs.LogError("account linking failed", map[string]any{"trace_no": req.TraceNo},
			fmt.Errorf("unexpected response shape"))
		return &LinkAccountResponse{Success: false, Message: "linking failed: unexpected response format"}, nil
	}

	resp := &LinkAccountResponse{
		Success:      boolField(raw, "success"),
		ResponseCode: stringField(raw, "responseCode"),
		Message:      stringField(raw, "message"),
		AccountTitle: stringField(raw, "accountTitle"),
		AccountType:  stringField(raw, "accountType"),
		Raw:          raw,
	}

	rec := LinkingRecord{
		ID:              uuid.New(),
		TraceNo:         req.TraceNo,
		CNIC:            req.CNIC,
		MobileNo:        req.MobileNo,
		MerchantType:    req.MerchantType,
		RequestPayload:  payload,
		ResponsePayload: raw,
		ResponseCode:    resp.ResponseCode,
		AccountTitle:    resp.AccountTitle,
		AccountType:     resp.AccountType,
		OTPPin:          req.OTPPin,
		Success:         resp.Success,
		CreatedAt:       requestcontext.Now(ctx),
	}
	if err := s.store.CreateLinking(ctx, rec); err != nil {
		s.logs.LogError("account linking failed", map[string]any{"trace_no": req.TraceNo}, err)
		return &LinkAccountResponse{Success: false, Message: fmt.Sprintf("linking failed: %v", err)}, nil
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeAccountLinked,
		OccurredAt: rec.CreatedAt,
		TraceNo:    rec.TraceNo,
		Payload:    resp,
	})
	s.auditLog(ctx, "account_linked", map[string]any{
		"trace_no":      rec.TraceNo,
		"response_code": rec.ResponseCode,
		"success":       rec.Success,
	}, rec.TraceNo)

	return resp, nil
}

// GetVerification looks up a past verification attempt by trace number.
func (s *Service) GetVerification(ctx context.Context, traceNo string) (*VerificationRecord, error) {
	rec, err := s.store.FindVerificationByTraceNo(ctx, traceNo)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetLinking looks up a past linking attempt by trace number.
func (s *Service) GetLinking(ctx context.Context, traceNo string) (*LinkingRecord, error) {
	rec, err := s.store.FindLinkingByTraceNo(ctx, traceNo)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) defaultMerchantType(merchantType string) string {
	if merchantType != "" {
		return merchantType
	}
	if s.merchantType != "" {
		return s.merchantType
	}
	return "0088"
}

func (s *Service) validateCommon(cnic, mobileNo, merchantType, traceNo string) error {
	if !bank.FixedDigits(cnic, bank.CNICLength) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "cnic must be %d digits", bank.CNICLength)
	}
	if !mask.ValidMobile(mobileNo) || !bank.FixedWidth(mobileNo, bank.MobileLength) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "mobile number must be %d digits starting with 03", bank.MobileLength)
	}
	if !bank.FixedWidth(merchantType, bank.MerchantTypeLength) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "merchant type must be %d characters", bank.MerchantTypeLength)
	}
	if !bank.FixedDigits(traceNo, bank.TraceNoLength) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "trace number must be %d digits", bank.TraceNoLength)
	}
	return nil
}

func (s *Service) wireRequest(ctx context.Context, cnic, mobileNo, merchantType, traceNo string) bank.AccountRequest {
	return bank.AccountRequest{
		CNIC:            cnic,
		MobileNo:        mobileNo,
		MerchantType:    merchantType,
		TraceNo:         traceNo,
		DateTime:        bank.FormatDateTime(requestcontext.Now(ctx)),
		CompanyName:     s.companyName,
		TransactionType: s.transactionType,
		Reserved1:       "00",
		Reserved2:       "00",
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logs.LogError("event publish failed", map[string]any{"type": string(event.Type)}, err)
	}
}

func (s *Service) auditLog(ctx context.Context, action string, payload map[string]any, referenceID string) {
	if err := s.audit.Log(ctx, action, audit.ModuleAccounts, payload, "", referenceID); err != nil {
		s.logs.LogError("audit write failed", map[string]any{"action": action}, err)
	}
}

// toPayload round-trips a wire struct into the map shape used for logging and
// persistence.
func toPayload(req bank.AccountRequest) map[string]any {
	b, _ := json.Marshal(req)
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
