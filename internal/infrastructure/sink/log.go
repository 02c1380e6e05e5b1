package sink

import (
	"context"
	"log/slog"

	"historycal/internal/domain"
	"historycal/internal/ports"
)

// LogSink records deliveries instead of posting them. Used for dry
// runs and when calendar credentials are absent.
type LogSink struct {
	logger *slog.Logger
}

var _ ports.Sink = (*LogSink)(nil)

// NewLogSink wraps a logger as a delivery target.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Deliver logs the event and succeeds.
func (s *LogSink) Deliver(_ context.Context, calendarID string, event domain.Event) error {
	if s.logger != nil {
		s.logger.Info("dry-run delivery", "calendar", calendarID, "id", event.ID, "summary", event.Summary)
	}
	return nil
}
