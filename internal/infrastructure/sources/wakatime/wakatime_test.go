package wakatime

import (
	"context"
	"testing"
	"time"

	"historycal/internal/domain"
	"historycal/internal/source"
)

type memStore struct{}

func (memStore) Load(context.Context, string) (map[string]struct{}, error) { return nil, nil }
func (memStore) Save(context.Context, string, map[string]struct{}) error   { return nil }

func newTestSource(t *testing.T, url string) *Source {
	t.Helper()
	src, err := New(source.Config{URL: url, CalendarID: "primary"}, memStore{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return src.(*Source)
}

func TestRequestURLSubstitutesDate(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, "https://wakatime.com/api/v1/users/current/durations?date={date}")
	src.now = func() time.Time {
		return time.Date(2026, time.March, 1, 23, 30, 0, 0, time.UTC)
	}

	want := "https://wakatime.com/api/v1/users/current/durations?date=2026-03-01"
	if got := src.RequestURL(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseDurations(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, "https://wakatime.com/api/v1/durations")
	events, err := src.Parse([]string{`{
		"data": [
			{"duration": 1800.5, "project": "historycal", "time": 1767222000.0},
			{"duration": 90.0, "project": "dotfiles", "time": 1767229200.0}
		],
		"start": "2026-01-01T00:00:00Z",
		"end": "2026-01-02T00:00:00Z",
		"timezone": "UTC"
	}`})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.ID != "wakatime|1767222000" {
		t.Fatalf("unexpected id: %s", first.ID)
	}
	if first.Summary != "[Wakatime] historycal" {
		t.Fatalf("unexpected summary: %s", first.Summary)
	}

	span, ok := first.When.(domain.Span)
	if !ok {
		t.Fatalf("expected a span, got %T", first.When)
	}
	if span.Start != time.Unix(1767222000, 0).UTC() {
		t.Fatalf("unexpected start: %v", span.Start)
	}
	if span.End.Sub(span.Start) != 1800*time.Second {
		t.Fatalf("unexpected duration: %v", span.End.Sub(span.Start))
	}
}

func TestParseRejectsMalformedResponse(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, "https://wakatime.com/api/v1/durations")
	if _, err := src.Parse([]string{"<html>not json</html>"}); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}
