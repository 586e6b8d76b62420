// Package audit records an append-only trail of document operations.
// Sinks only ever add events; there is no update or delete path.
package audit

import (
	"context"
	"time"
)

// Operation names the audited document operation.
type Operation string

const (
	OpInitiateUpload Operation = "InitiateUpload"
	OpCompleteUpload Operation = "CompleteUpload"
	OpApprove        Operation = "Approve"
	OpReject         Operation = "Reject"
	OpDownload       Operation = "Download"
	OpDelete         Operation = "Delete"
)

// Event is one audit record.
type Event struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	Operation    Operation `json:"operation"`
	ActorID      string    `json:"actor_id"`
	Description  string    `json:"description"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Sink persists audit events.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

type requestIDKey struct{}

// WithRequestID stores the request id so sinks can attach it to events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
