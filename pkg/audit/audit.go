// Package audit records tool invocations for later review.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is one recorded tool invocation.
type Event struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	DurationMS   int64          `json:"duration_ms"`
	RequestID    string         `json:"request_id"`
	SessionID    string         `json:"session_id"`
	ToolName     string         `json:"tool_name"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// NewEvent creates an audit event for a tool call.
func NewEvent(toolName string) Event {
	return Event{
		ID:        uuid.NewString(),
		RequestID: uuid.NewString(),
		Timestamp: time.Now(),
		ToolName:  toolName,
	}
}

// Logger records audit events.
type Logger interface {
	Log(ctx context.Context, event Event) error
	Close() error
}

// SlogLogger writes audit events to the process log. It is the default sink
// when no Postgres store is configured.
type SlogLogger struct{}

// Log writes the event at info level.
func (SlogLogger) Log(_ context.Context, event Event) error {
	slog.Info("audit",
		"id", event.ID,
		"session_id", event.SessionID,
		"tool", event.ToolName,
		"success", event.Success,
		"duration_ms", event.DurationMS,
		"error", event.ErrorMessage)
	return nil
}

// Close is a no-op.
func (SlogLogger) Close() error { return nil }

var _ Logger = (*SlogLogger)(nil)
