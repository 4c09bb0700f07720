package events

import (
	"context"
	"log/slog"
	"trip-planner-service/internal/ports"
)

// LogPublisher writes events to a structured logger. It is the fallback
// when no message broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e ports.Event) error {
	level := slog.LevelDebug
	if e.Kind == ports.EventNotification {
		level = slog.LevelInfo
	}

	p.logger.Log(ctx, level, "planner event",
		"kind", e.Kind,
		"session_id", e.SessionID,
		"version", e.Version,
		"message", e.Message,
	)
	return nil
}
