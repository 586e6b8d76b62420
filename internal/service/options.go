package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docflow/internal/audit"
)

// Option customises a service at construction time.
type Option func(*base)

// WithAuditSink sets where operation events are recorded. Defaults to audit.Nop.
func WithAuditSink(s audit.Sink) Option {
	return func(b *base) {
		if s != nil {
			b.audit = s
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator overrides how new record ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(b *base) {
		if gen != nil {
			b.newID = gen
		}
	}
}

type base struct {
	audit  audit.Sink
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func newBase(opts []Option) base {
	b := base{
		audit:  audit.Nop{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// record writes an audit event. A failing sink is logged and otherwise ignored:
// the operation it describes has already happened.
func (b *base) record(ctx context.Context, op audit.Operation, documentID, actorID, description string, opErr error) {
	ev := audit.Event{
		ID:          b.newID(),
		DocumentID:  documentID,
		Operation:   op,
		ActorID:     actorID,
		Description: description,
		Success:     opErr == nil,
		RequestID:   audit.RequestID(ctx),
		CreatedAt:   b.now(),
	}
	if opErr != nil {
		ev.ErrorMessage = opErr.Error()
	}
	if err := b.audit.Record(ctx, ev); err != nil {
		b.logger.WarnContext(ctx, "audit_record_failed",
			"operation", string(op),
			"document_id", documentID,
			"error", err.Error(),
		)
	}
}
