// Package events delivers memory pipeline events to logs and Redis Streams.
package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// LogObserver writes every event to a zap logger. Per-search events go to
// Debug; user-visible state changes go to Info.
type LogObserver struct {
	logger *zap.Logger
}

var _ memory.Observer = (*LogObserver)(nil)

// NewLogObserver logs under the "events" name of logger.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{logger: logger.Named("events")}
}

// Observe logs ev at the level for its kind.
func (o *LogObserver) Observe(ctx context.Context, ev memory.Event) {
	fields := []zap.Field{
		zap.String("kind", string(ev.Kind)),
		zap.String("user", ev.UserID),
	}
	if ev.MemoryID != "" {
		fields = append(fields, zap.String("memory", ev.MemoryID))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	if ev.Count != 0 {
		fields = append(fields, zap.Int("count", ev.Count))
	}
	if ev.Value != 0 {
		fields = append(fields, zap.Float64("value", ev.Value))
	}

	switch ev.Kind {
	case memory.EventModeChanged, memory.EventFocusActivated, memory.EventFocusDeactivated:
		o.logger.Info("memory event", fields...)
	case memory.EventIndexUnavailable:
		o.logger.Warn("memory event", fields...)
	default:
		o.logger.Debug("memory event", fields...)
	}
}
