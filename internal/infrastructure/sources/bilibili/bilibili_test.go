package bilibili

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

const fixture = `{
	"code": 0,
	"data": [
		{
			"aid": 1,
			"bvid": "BV1xx411c7mD",
			"page": {"cid": 10, "page": 1, "part": "p1", "duration": 600},
			"progress": 120,
			"redirect_link": "https://www.bilibili.com/video/BV1xx411c7mD",
			"title": "First video",
			"view_at": 1767222000
		},
		{
			"aid": 2,
			"bvid": "BV1yy411c7mE",
			"page": {"cid": 20, "page": 2, "part": "p2", "duration": 900},
			"progress": -1,
			"redirect_link": "https://www.bilibili.com/video/BV1yy411c7mE",
			"title": "Finished video",
			"view_at": 1767225600
		}
	]
}`

func TestParseWatchHistory(t *testing.T) {
	t.Parallel()

	src, err := New(source.Config{URL: "https://api.bilibili.com/x/v2/history"}, memStore{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	events, err := src.Parse([]string{fixture})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	if events[0].ID != "bilibili|BV1xx411c7mD|1|1767222000" {
		t.Fatalf("unexpected id: %s", events[0].ID)
	}
	span := events[0].When.(domain.Span)
	if span.End.Sub(span.Start) != 120*time.Second {
		t.Fatalf("expected watch duration from progress, got %v", span.End.Sub(span.Start))
	}

	// Progress -1 falls back to the full page duration.
	span = events[1].When.(domain.Span)
	if span.End.Sub(span.Start) != 900*time.Second {
		t.Fatalf("expected full-page duration, got %v", span.End.Sub(span.Start))
	}
}

func TestShortSuppressionDisabled(t *testing.T) {
	t.Parallel()

	src, err := New(source.Config{URL: "https://api.bilibili.com/x/v2/history"}, memStore{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if src.Suppression().SuppressShort {
		t.Fatal("bilibili must keep short watch spans")
	}
	if !src.Suppression().SuppressInProgress {
		t.Fatal("bilibili still suppresses in-progress spans")
	}
}

func TestParseRejectsMalformedResponse(t *testing.T) {
	t.Parallel()

	src, err := New(source.Config{URL: "https://api.bilibili.com/x/v2/history"}, memStore{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := src.Parse([]string{"<!DOCTYPE html><html></html>"}); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}
