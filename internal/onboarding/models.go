// Package onboarding implements the customer onboarding lifecycle against
// the bank's onboarding API: initiate, verify, status lookup, and complete.
// One record tracks the whole lifecycle, keyed by the reference id the bank
// assigns on initiation.
package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an onboarding case.
type Status string

const (
	StatusInitiated Status = "initiated"
	StatusVerified  Status = "verified"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// InitiateRequest starts an onboarding case for a customer.
type InitiateRequest struct {
	CNIC     string `json:"cnic"`
	FullName string `json:"full_name"`
	MobileNo string `json:"mobile_no"`
	Email    string `json:"email"`
}

// InitiateResponse reports the outcome of an initiation attempt. ReferenceID
// is assigned by the bank and identifies the case for all later calls.
type InitiateResponse struct {
	Success     bool           `json:"success"`
	ReferenceID string         `json:"reference_id"`
	Message     string         `json:"message"`
	Raw         map[string]any `json:"-"`
}

// VerifyRequest confirms the customer's identity for an initiated case.
type VerifyRequest struct {
	ReferenceID string `json:"reference_id"`
	OTP         string `json:"otp"`
}

// VerifyResponse reports the outcome of a verification attempt.
type VerifyResponse struct {
	Success     bool           `json:"success"`
	ReferenceID string         `json:"reference_id"`
	Message     string         `json:"message"`
	Raw         map[string]any `json:"-"`
}

// CompleteRequest finalizes a verified case.
type CompleteRequest struct {
	ReferenceID string `json:"reference_id"`
}

// CompleteResponse reports the outcome of a completion attempt.
type CompleteResponse struct {
	Success     bool           `json:"success"`
	ReferenceID string         `json:"reference_id"`
	Message     string         `json:"message"`
	Raw         map[string]any `json:"-"`
}

// StatusResponse combines the locally tracked status with the bank's view of
// the case.
type StatusResponse struct {
	Success     bool           `json:"success"`
	ReferenceID string         `json:"reference_id"`
	Status      Status         `json:"status"`
	Message     string         `json:"message"`
	Raw         map[string]any `json:"-"`
}

// Record tracks one onboarding case across its lifecycle. Created on the
// first successful initiate call and mutated in place by verify and
// complete; never deleted.
type Record struct {
	ID                  uuid.UUID
	ReferenceID         string
	CNIC                string
	FullName            string
	MobileNo            string
	Email               string
	Status              Status
	RequestPayload      map[string]any
	ResponsePayload     map[string]any
	VerificationPayload map[string]any
	CompletionPayload   map[string]any
	CompletedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Store persists onboarding records keyed by reference id.
type Store interface {
	Create(ctx context.Context, rec Record) error
	FindByReferenceID(ctx context.Context, referenceID string) (*Record, error)
	Update(ctx context.Context, rec Record) error
}
