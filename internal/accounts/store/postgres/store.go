// Package postgres persists account verification and linking records in the
// account_verifications and account_linkings tables.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"banklink/internal/accounts"
	dErrors "banklink/pkg/domain-errors"
)

// Store is the PostgreSQL accounts store.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed accounts store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateVerification(ctx context.Context, rec accounts.VerificationRecord) error {
	reqPayload, respPayload, err := marshalPayloads(rec.RequestPayload, rec.ResponsePayload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO account_verifications (
			id, trace_no, cnic, mobile_no, merchant_type,
			request_payload, response_payload, response_code,
			account_status, account_title, account_type,
			pin_set, success, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.TraceNo,
		rec.CNIC,
		rec.MobileNo,
		rec.MerchantType,
		reqPayload,
		respPayload,
		rec.ResponseCode,
		rec.AccountStatus,
		rec.AccountTitle,
		rec.AccountType,
		rec.PinSet,
		rec.Success,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification record: %w", err)
	}
	return nil
}

func (s *Store) FindVerificationByTraceNo(ctx context.Context, traceNo string) (*accounts.VerificationRecord, error) {
	query := `
		SELECT id, trace_no, cnic, mobile_no, merchant_type,
		       request_payload, response_payload, response_code,
		       account_status, account_title, account_type,
		       pin_set, success, created_at
		FROM account_verifications
		WHERE trace_no = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		rec         accounts.VerificationRecord
		reqPayload  []byte
		respPayload []byte
	)
	err := s.db.QueryRowContext(ctx, query, traceNo).Scan(
		&rec.ID,
		&rec.TraceNo,
		&rec.CNIC,
		&rec.MobileNo,
		&rec.MerchantType,
		&reqPayload,
		&respPayload,
		&rec.ResponseCode,
		&rec.AccountStatus,
		&rec.AccountTitle,
		&rec.AccountType,
		&rec.PinSet,
		&rec.Success,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query verification record: %w", err)
	}
	if err := unmarshalPayloads(reqPayload, respPayload, &rec.RequestPayload, &rec.ResponsePayload); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) CreateLinking(ctx context.Context, rec accounts.LinkingRecord) error {
	reqPayload, respPayload, err := marshalPayloads(rec.RequestPayload, rec.ResponsePayload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO account_linkings (
			id, trace_no, cnic, mobile_no, merchant_type,
			request_payload, response_payload, response_code,
			account_title, account_type, otp_pin, success, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.TraceNo,
		rec.CNIC,
		rec.MobileNo,
		rec.MerchantType,
		reqPayload,
		respPayload,
		rec.ResponseCode,
		rec.AccountTitle,
		rec.AccountType,
		rec.OTPPin,
		rec.Success,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert linking record: %w", err)
	}
	return nil
}

func (s *Store) FindLinkingByTraceNo(ctx context.Context, traceNo string) (*accounts.LinkingRecord, error) {
	query := `
		SELECT id, trace_no, cnic, mobile_no, merchant_type,
		       request_payload, response_payload, response_code,
		       account_title, account_type, otp_pin, success, created_at
		FROM account_linkings
		WHERE trace_no = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		rec         accounts.LinkingRecord
		reqPayload  []byte
		respPayload []byte
	)
	err := s.db.QueryRowContext(ctx, query, traceNo).Scan(
		&rec.ID,
		&rec.TraceNo,
		&rec.CNIC,
		&rec.MobileNo,
		&rec.MerchantType,
		&reqPayload,
		&respPayload,
		&rec.ResponseCode,
		&rec.AccountTitle,
		&rec.AccountType,
		&rec.OTPPin,
		&rec.Success,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "linking record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query linking record: %w", err)
	}
	if err := unmarshalPayloads(reqPayload, respPayload, &rec.RequestPayload, &rec.ResponsePayload); err != nil {
		return nil, err
	}
	return &rec, nil
}

func marshalPayloads(req, resp map[string]any) ([]byte, []byte, error) {
	reqPayload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal request payload: %w", err)
	}
	respPayload, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal response payload: %w", err)
	}
	return reqPayload, respPayload, nil
}

func unmarshalPayloads(reqPayload, respPayload []byte, req, resp *map[string]any) error {
	if len(reqPayload) > 0 {
		if err := json.Unmarshal(reqPayload, req); err != nil {
			return fmt.Errorf("unmarshal request payload: %w", err)
		}
	}
	if len(respPayload) > 0 {
		if err := json.Unmarshal(respPayload, resp); err != nil {
			return fmt.Errorf("unmarshal response payload: %w", err)
		}
	}
	return nil
}
