package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresSink inserts events into the audit_events table.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink creates a PostgresSink.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Record(ctx context.Context, ev Event) error {
	const q = `
		INSERT INTO audit_events (id, document_id, operation, actor_id, description, success, error_message, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.RequestID == "" {
		ev.RequestID = RequestID(ctx)
	}
	if _, err := s.db.ExecContext(ctx, q,
		ev.ID,
		ev.DocumentID,
		string(ev.Operation),
		ev.ActorID,
		ev.Description,
		ev.Success,
		sql.NullString{String: ev.ErrorMessage, Valid: ev.ErrorMessage != ""},
		sql.NullString{String: ev.RequestID, Valid: ev.RequestID != ""},
		ev.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
