package source

import (
	"context"
	"fmt"
	"log/slog"

	"historycal/internal/dedup"
	"historycal/internal/domain"
	"historycal/internal/filter"
	"historycal/internal/ports"
)

// Config is the resolved per-source request configuration.
type Config struct {
	URL        string
	CalendarID string
	Headers    map[string]string
}

// Source is the contract every history provider implements.
type Source interface {
	// Name returns the stable source identifier used for ID
	// namespacing and for locating persisted state.
	Name() string

	// RequestURL returns the fully resolved URL for the index fetch.
	RequestURL() string

	Headers() map[string]string
	CalendarID() string

	// NeedsDetail inspects the raw index response. ok=false means the
	// index response alone is sufficient; ok=true means every returned
	// URL (possibly none this cycle) must be fetched and parsed instead.
	NeedsDetail(index string) (urls []string, ok bool)

	// Parse turns raw responses into normalized events. Per-item
	// failures are logged and skipped; the call errors only when the
	// input is not recognizable as this source's format at all.
	Parse(responses []string) ([]domain.Event, error)

	// Seen exposes the delivered-ID set for the dedup gate.
	Seen() *dedup.Set

	// PersistSeen writes the delivered-ID set to durable storage.
	// Called only after a full successful cycle.
	PersistSeen(ctx context.Context) error

	// Suppression returns this source's filter switches.
	Suppression() filter.Options
}

// Base carries the pieces shared by every adapter: resolved config,
// the delivered-ID set and its storage, and the suppression switches.
// Concrete adapters embed it and add Name, Parse and any overrides.
type Base struct {
	name  string
	cfg   Config
	seen  *dedup.Set
	store ports.StateStore
	opts  filter.Options
}

// NewBase loads persisted state and validates the source config.
// A missing or unreadable state file yields an empty set, not an error.
func NewBase(name string, cfg Config, store ports.StateStore, opts filter.Options, logger *slog.Logger) (Base, error) {
	if cfg.URL == "" {
		return Base{}, fmt.Errorf("source %s: request url is not configured", name)
	}

	ids, err := store.Load(context.Background(), name)
	if err != nil {
		if logger != nil {
			logger.Warn("cannot load delivered ids, starting empty", "source", name, "error", err)
		}
		ids = nil
	}

	return Base{
		name:  name,
		cfg:   cfg,
		seen:  dedup.NewSet(ids),
		store: store,
		opts:  opts,
	}, nil
}

// Config returns the resolved request configuration.
func (b *Base) Config() Config {
	return b.cfg
}

// RequestURL returns the configured URL verbatim; adapters that embed
// computed values (such as today's date) override this.
func (b *Base) RequestURL() string {
	return b.cfg.URL
}

// Headers returns the configured request headers.
func (b *Base) Headers() map[string]string {
	return b.cfg.Headers
}

// CalendarID returns the sink calendar for this source.
func (b *Base) CalendarID() string {
	return b.cfg.CalendarID
}

// NeedsDetail defaults to "no detail stage exists".
func (b *Base) NeedsDetail(string) ([]string, bool) {
	return nil, false
}

// Seen returns the delivered-ID set.
func (b *Base) Seen() *dedup.Set {
	return b.seen
}

// PersistSeen writes the delivered-ID set through the state store.
func (b *Base) PersistSeen(ctx context.Context) error {
	return b.store.Save(ctx, b.name, b.seen.Snapshot())
}

// Suppression returns the source's filter switches.
func (b *Base) Suppression() filter.Options {
	return b.opts
}
