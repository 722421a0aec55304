// Package accounts implements the account verification and account linking
// flows against the bank API, with per-attempt persistence and a synchronous
// event sink.
package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VerifyAccountRequest carries the caller-supplied fields for an account
// verification attempt. TraceNo is an opaque correlation key assigned by the
// caller's bank transaction, never generated here.
type VerifyAccountRequest struct {
	CNIC         string `json:"cnic"`
	MobileNo     string `json:"mobile_no"`
	MerchantType string `json:"merchant_type"`
	TraceNo      string `json:"trace_no"`
}

// VerifyAccountResponse is the typed result of a verification attempt.
// Success reflects only the bank's response body, never local validation.
type VerifyAccountResponse struct {
	Success       bool           `json:"success"`
	ResponseCode  string         `json:"response_code"`
	Message       string         `json:"message"`
	AccountStatus string         `json:"account_status"`
	AccountTitle  string         `json:"account_title"`
	AccountType   string         `json:"account_type"`
	PinSet        bool           `json:"pin_set"`
	Raw           map[string]any `json:"-"`
}

// LinkAccountRequest carries the caller-supplied fields for an account
// linking attempt. OTPPin is sensitive and must never appear unmasked in
// logs or events.
type LinkAccountRequest struct {
	CNIC         string `json:"cnic"`
	MobileNo     string `json:"mobile_no"`
	MerchantType string `json:"merchant_type"`
	TraceNo      string `json:"trace_no"`
	OTPPin       string `json:"otp_pin"`
}

// LinkAccountResponse is the typed result of a linking attempt.
type LinkAccountResponse struct {
	Success      bool           `json:"success"`
	ResponseCode string         `json:"response_code"`
	Message      string         `json:"message"`
	AccountTitle string         `json:"account_title"`
	AccountType  string         `json:"account_type"`
	Raw          map[string]any `json:"-"`
}

// VerificationRecord is the persisted envelope of one verification attempt.
// A row is written for every attempt with a parseable response, failures
// included.
type VerificationRecord struct {
	ID              uuid.UUID
	TraceNo         string
	CNIC            string
	MobileNo        string
	MerchantType    string
	RequestPayload  map[string]any
	ResponsePayload map[string]any
	ResponseCode    string
	AccountStatus   string
	AccountTitle    string
	AccountType     string
	PinSet          bool
	Success         bool
	CreatedAt       time.Time
}

// LinkingRecord is the persisted envelope of one linking attempt. The OTP pin
// is stored in clear; masking applies only to log and event paths.
type LinkingRecord struct {
	ID              uuid.UUID
	TraceNo         string
	CNIC            string
	MobileNo        string
	MerchantType    string
	RequestPayload  map[string]any
	ResponsePayload map[string]any
	ResponseCode    string
	AccountTitle    string
	AccountType     string
	OTPPin          string
	Success         bool
	CreatedAt       time.Time
}

// Store persists verification and linking records.
type Store interface {
	CreateVerification(ctx context.Context, rec VerificationRecord) error
	FindVerificationByTraceNo(ctx context.Context, traceNo string) (*VerificationRecord, error)
	CreateLinking(ctx context.Context, rec LinkingRecord) error
	FindLinkingByTraceNo(ctx context.Context, traceNo string) (*LinkingRecord, error)
}
