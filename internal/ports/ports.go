package ports

import (
	"context"
	"time"

	"historycal/internal/domain"
)

// Fetcher performs a plain text GET with per-request headers.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (string, error)
}

// Sink receives finalized events, one at a time.
type Sink interface {
	Deliver(ctx context.Context, calendarID string, event domain.Event) error
}

// StateStore persists the per-source set of delivered event IDs.
// Load returns an empty set for a source that was never persisted.
type StateStore interface {
	Load(ctx context.Context, source string) (map[string]struct{}, error)
	Save(ctx context.Context, source string, ids map[string]struct{}) error
}

// Scheduler controls when cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
