// Package postgres persists onboarding records in the onboarding_records
// table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"banklink/internal/onboarding"
	dErrors "banklink/pkg/domain-errors"
)

// Store is the PostgreSQL onboarding store.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed onboarding store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, rec onboarding.Record) error {
	payloads, err := marshalPayloads(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO onboarding_records (
			id, reference_id, cnic, full_name, mobile_no, email, status,
			request_payload, response_payload, verification_payload,
			completion_payload, completed_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.ReferenceID,
		rec.CNIC,
		rec.FullName,
		rec.MobileNo,
		rec.Email,
		string(rec.Status),
		payloads[0],
		payloads[1],
		payloads[2],
		payloads[3],
		rec.CompletedAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert onboarding record: %w", err)
	}
	return nil
}

func (s *Store) FindByReferenceID(ctx context.Context, referenceID string) (*onboarding.Record, error) {
	query := `
		SELECT id, reference_id, cnic, full_name, mobile_no, email, status,
		       request_payload, response_payload, verification_payload,
		       completion_payload, completed_at, created_at, updated_at
		FROM onboarding_records
		WHERE reference_id = $1
	`
	var (
		rec      onboarding.Record
		status   string
		payloads [4][]byte
	)
	err := s.db.QueryRowContext(ctx, query, referenceID).Scan(
		&rec.ID,
		&rec.ReferenceID,
		&rec.CNIC,
		&rec.FullName,
		&rec.MobileNo,
		&rec.Email,
		&status,
		&payloads[0],
		&payloads[1],
		&payloads[2],
		&payloads[3],
		&rec.CompletedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "onboarding record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query onboarding record: %w", err)
	}
	rec.Status = onboarding.Status(status)

	targets := []*map[string]any{
		&rec.RequestPayload, &rec.ResponsePayload,
		&rec.VerificationPayload, &rec.CompletionPayload,
	}
	for i, raw := range payloads {
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, targets[i]); err != nil {
			return nil, fmt.Errorf("unmarshal onboarding payload: %w", err)
		}
	}
	return &rec, nil
}

func (s *Store) Update(ctx context.Context, rec onboarding.Record) error {
	payloads, err := marshalPayloads(rec)
	if err != nil {
		return err
	}

	query := `
		UPDATE onboarding_records
		SET status = $2,
		    verification_payload = $3,
		    completion_payload = $4,
		    completed_at = $5,
		    updated_at = $6
		WHERE reference_id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		rec.ReferenceID,
		string(rec.Status),
		payloads[2],
		payloads[3],
		rec.CompletedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update onboarding record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update onboarding record: %w", err)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "onboarding record not found")
	}
	return nil
}

// marshalPayloads serializes the four payload columns in storage order:
// request, response, verification, completion.
func marshalPayloads(rec onboarding.Record) ([4][]byte, error) {
	var out [4][]byte
	sources := []map[string]any{
		rec.RequestPayload, rec.ResponsePayload,
		rec.VerificationPayload, rec.CompletionPayload,
	}
	for i, src := range sources {
		if src == nil {
			continue
		}
		b, err := json.Marshal(src)
		if err != nil {
			return out, fmt.Errorf("marshal onboarding payload: %w", err)
		}
		out[i] = b
	}
	return out, nil
}
