package filter

import (
	"log/slog"
	"time"

	"historycal/internal/domain"
)

const (
	// closeGrace is how long after its end an event must sit before it
	// counts as safely closed. Sources revise recent entries.
	closeGrace = time.Hour

	// minSpan is the shortest span worth a calendar entry.
	minSpan = 5 * time.Minute
)

// Options hold the per-source suppression switches.
type Options struct {
	SuppressInProgress bool
	SuppressShort      bool
}

// DefaultOptions enable both suppression rules.
func DefaultOptions() Options {
	return Options{SuppressInProgress: true, SuppressShort: true}
}

// Apply drops in-progress and too-short events, honoring the source's
// opt-outs. It is a pure predicate over already-normalized events and
// never touches dedup state.
func Apply(events []domain.Event, now time.Time, opts Options, logger *slog.Logger) []domain.Event {
	kept := make([]domain.Event, 0, len(events))
	for _, event := range events {
		if opts.SuppressInProgress && !closed(event.When, now) {
			info(logger, "event seems to be ongoing, filtered", "summary", event.Summary)
			continue
		}
		if opts.SuppressShort && tooShort(event.When) {
			info(logger, "event doesn't last long enough, ignored", "summary", event.Summary)
			continue
		}
		kept = append(kept, event)
	}
	return kept
}

// closed reports whether the event window ended long enough ago that
// the source will no longer revise it.
func closed(when domain.When, now time.Time) bool {
	switch w := when.(type) {
	case domain.Span:
		return w.End.Before(now.Add(-closeGrace))
	case domain.AllDay:
		return w.Date.Before(domain.Day(now))
	default:
		return false
	}
}

func tooShort(when domain.When) bool {
	span, ok := when.(domain.Span)
	if !ok {
		return false
	}
	return span.End.Sub(span.Start) <= minSpan
}

func info(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}
