package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"historycal/internal/domain"
	"historycal/internal/ports"
)

// CalendarSink inserts events into Google Calendar. Quota handling and
// backoff are left to the API client.
type CalendarSink struct {
	service *calendar.Service
	logger  *slog.Logger
}

var _ ports.Sink = (*CalendarSink)(nil)

// NewCalendarSink builds an authenticated calendar client from a
// service-account credentials file.
func NewCalendarSink(ctx context.Context, credentialsFile string, logger *slog.Logger) (*CalendarSink, error) {
	service, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}
	return &CalendarSink{service: service, logger: logger}, nil
}

// Deliver inserts one event into the given calendar.
func (s *CalendarSink) Deliver(ctx context.Context, calendarID string, event domain.Event) error {
	inserted, err := s.service.Events.Insert(calendarID, toAPIEvent(event)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("posted event", "summary", inserted.Summary, "start", startOf(inserted))
	}
	return nil
}

func toAPIEvent(event domain.Event) *calendar.Event {
	out := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
	}

	switch w := event.When.(type) {
	case domain.Span:
		out.Start = &calendar.EventDateTime{DateTime: w.Start.Format(time.RFC3339)}
		out.End = &calendar.EventDateTime{DateTime: w.End.Format(time.RFC3339)}
	case domain.AllDay:
		date := w.Date.Format("2006-01-02")
		out.Start = &calendar.EventDateTime{Date: date}
		out.End = &calendar.EventDateTime{Date: date}
	}

	return out
}

func startOf(event *calendar.Event) string {
	if event.Start == nil {
		return "[no start time]"
	}
	if event.Start.Date != "" {
		return event.Start.Date
	}
	return event.Start.DateTime
}
