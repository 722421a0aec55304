// Package postgres persists audit entries in the audit_logs table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"banklink/internal/audit"
)

// Store is the PostgreSQL audit store. Entries are append-only; there is no
// update or delete path.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_logs (
			id, action, module, payload, actor_id, reference_id,
			client_ip, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.Module,
		payload,
		entry.ActorID,
		entry.ReferenceID,
		entry.ClientIP,
		entry.UserAgent,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, filters audit.Filters, limit, offset int) ([]audit.Entry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters.Module != "" {
		add("module = $%d", filters.Module)
	}
	if filters.Action != "" {
		add("action = $%d", filters.Action)
	}
	if filters.ActorID != "" {
		add("actor_id = $%d", filters.ActorID)
	}
	if filters.ReferenceID != "" {
		add("reference_id = $%d", filters.ReferenceID)
	}
	if filters.DateFrom != nil {
		add("created_at >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		add("created_at <= $%d", *filters.DateTo)
	}

	query := `
		SELECT id, action, module, payload, actor_id, reference_id,
		       client_ip, user_agent, created_at
		FROM audit_logs
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			entry   audit.Entry
			payload []byte
		)
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.Module,
			&payload,
			&entry.ActorID,
			&entry.ReferenceID,
			&entry.ClientIP,
			&entry.UserAgent,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &entry.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal audit payload: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
