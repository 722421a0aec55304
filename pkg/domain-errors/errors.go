// Package domainerrors provides coded errors that services return across
// module boundaries. Transport layers map codes to HTTP statuses; orchestrators
// map them to failure-shaped response DTOs.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for boundary handling.
type Code string

const (
	// CodeInvalidInput marks local validation failures. These never reach the
	// external bank API.
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest marks malformed caller requests at the transport layer.
	CodeBadRequest Code = "bad_request"

	// CodeNotFound marks lookups that matched no record.
	CodeNotFound Code = "not_found"

	// CodeUnauthorized marks failed inbound authentication.
	CodeUnauthorized Code = "unauthorized"

	// CodeUpstream marks transport-level failures talking to the bank API,
	// including the unrecoverable missing-access-token condition.
	CodeUpstream Code = "upstream"

	// CodeInternal marks persistence or other unexpected failures.
	CodeInternal Code = "internal"
)

// Error carries a code and message, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error. A nil cause returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain. Unclassified errors report
// CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
