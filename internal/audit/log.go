package audit

import (
	"context"
	"log/slog"
)

// LogSink writes events as structured log records.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink on logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "audit")}
}

func (s *LogSink) Record(ctx context.Context, ev Event) error {
	if ev.RequestID == "" {
		ev.RequestID = RequestID(ctx)
	}
	level := slog.LevelInfo
	if !ev.Success {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, "audit event",
		slog.String("document_id", ev.DocumentID),
		slog.String("operation", string(ev.Operation)),
		slog.String("actor_id", ev.ActorID),
		slog.String("description", ev.Description),
		slog.Bool("success", ev.Success),
		slog.String("error_message", ev.ErrorMessage),
		slog.String("request_id", ev.RequestID),
	)
	return nil
}
