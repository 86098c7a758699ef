// Package audit records operator-visible actions (imports, SOP actions)
// as structured log entries.
package audit

import (
	"context"
	"log/slog"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With("channel", "audit")}
}

type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	Metadata   map[string]any
}

func (l *Logger) Log(ctx context.Context, entry Entry) {
	attrs := []any{
		"action", entry.Action,
		"entity_type", entry.EntityType,
	}
	if entry.EntityID != "" {
		attrs = append(attrs, "entity_id", entry.EntityID)
	}
	if entry.RequestID != "" {
		attrs = append(attrs, "request_id", entry.RequestID)
	}
	for key, value := range entry.Metadata {
		attrs = append(attrs, key, value)
	}
	l.logger.InfoContext(ctx, "audit", attrs...)
}
