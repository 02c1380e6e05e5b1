package filter

import (
	"testing"
	"time"

	"historycal/internal/domain"
)

func span(summary string, start, end time.Time) domain.Event {
	return domain.Event{Summary: summary, When: domain.Span{Start: start, End: end}}
}

func allDay(summary string, date time.Time) domain.Event {
	return domain.Event{Summary: summary, When: domain.AllDay{Date: domain.Day(date)}}
}

func summaries(events []domain.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Summary)
	}
	return out
}

func TestInProgressBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	events := []domain.Event{
		span("passes", now.Add(-2*time.Hour), now.Add(-61*time.Minute)),
		span("dropped", now.Add(-2*time.Hour), now.Add(-59*time.Minute)),
		span("boundary", now.Add(-2*time.Hour), now.Add(-60*time.Minute)),
	}

	kept := Apply(events, now, DefaultOptions(), nil)
	if len(kept) != 1 || kept[0].Summary != "passes" {
		t.Fatalf("unexpected survivors: %v", summaries(kept))
	}
}

func TestWholeDayBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	events := []domain.Event{
		allDay("today", now),
		allDay("yesterday", now.AddDate(0, 0, -1)),
		allDay("tomorrow", now.AddDate(0, 0, 1)),
	}

	kept := Apply(events, now, DefaultOptions(), nil)
	if len(kept) != 1 || kept[0].Summary != "yesterday" {
		t.Fatalf("unexpected survivors: %v", summaries(kept))
	}
}

func TestMinimumDurationBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-3 * time.Hour)
	events := []domain.Event{
		span("exactly five", start, start.Add(5*time.Minute)),
		span("five and one", start, start.Add(5*time.Minute+time.Second)),
	}

	kept := Apply(events, now, DefaultOptions(), nil)
	if len(kept) != 1 || kept[0].Summary != "five and one" {
		t.Fatalf("unexpected survivors: %v", summaries(kept))
	}
}

func TestShortSuppressionOptOut(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-3 * time.Hour)
	events := []domain.Event{span("blip", start, start.Add(10*time.Second))}

	opts := Options{SuppressInProgress: true, SuppressShort: false}
	kept := Apply(events, now, opts, nil)
	if len(kept) != 1 {
		t.Fatalf("opted-out source lost its short event: %v", summaries(kept))
	}

	kept = Apply(events, now, DefaultOptions(), nil)
	if len(kept) != 0 {
		t.Fatalf("default source kept a short event: %v", summaries(kept))
	}
}

func TestInProgressSuppressionOptOut(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	events := []domain.Event{span("future seminar", now.Add(24*time.Hour), now.Add(25*time.Hour))}

	opts := Options{SuppressInProgress: false, SuppressShort: true}
	kept := Apply(events, now, opts, nil)
	if len(kept) != 1 {
		t.Fatalf("opted-out source lost its future event: %v", summaries(kept))
	}
}

func TestEndToEndScenario(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	events := []domain.Event{
		span("1", now.Add(-2*time.Hour), now.Add(-90*time.Minute)),
		span("2", now.Add(-3*time.Hour), now.Add(-30*time.Minute)),
		span("3", now.Add(-40*time.Minute), now.Add(30*time.Minute)),
		allDay("4", now),
		allDay("5", now.AddDate(0, 0, -1)),
		allDay("6", now.AddDate(0, 0, 1)),
	}

	kept := Apply(events, now, DefaultOptions(), nil)
	got := summaries(kept)
	if len(got) != 2 || got[0] != "1" || got[1] != "5" {
		t.Fatalf("expected [1 5], got %v", got)
	}
}
