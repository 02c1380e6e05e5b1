package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"historycal/internal/dedup"
	"historycal/internal/domain"
	"historycal/internal/filter"
	"historycal/internal/ports"
	"historycal/internal/source"
)

// PipelineDeps wires all driven adapters into the forwarding pipeline.
type PipelineDeps struct {
	Fetcher ports.Fetcher
	Sink    ports.Sink
	Logger  *slog.Logger
	Now     func() time.Time
}

// Pipeline implements the fetch → filter → dedup → deliver workflow.
type Pipeline struct {
	fetcher ports.Fetcher
	sink    ports.Sink
	logger  *slog.Logger
	now     func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		fetcher: deps.Fetcher,
		sink:    deps.Sink,
		logger:  deps.Logger,
		now:     now,
	}
}

// FetchEvents drives the two-stage fetch protocol for one source: the
// index fetch, the optional detail fetches in adapter order, and parse.
// Any transport failure is fatal for this cycle; the source is retried
// from scratch on the next tick.
func (p *Pipeline) FetchEvents(ctx context.Context, src source.Source) ([]domain.Event, error) {
	index, err := p.fetcher.Get(ctx, src.RequestURL(), src.Headers())
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	urls, ok := src.NeedsDetail(index)
	if !ok {
		return src.Parse([]string{index})
	}

	responses := make([]string, 0, len(urls))
	for _, url := range urls {
		body, err := p.fetcher.Get(ctx, url, src.Headers())
		if err != nil {
			return nil, fmt.Errorf("fetch detail %s: %w", url, err)
		}
		responses = append(responses, body)
	}

	return src.Parse(responses)
}

// RunSource executes one full cycle for a source. Dedup state is
// persisted only when every step, delivery included, succeeded.
func (p *Pipeline) RunSource(ctx context.Context, src source.Source) error {
	events, err := p.FetchEvents(ctx, src)
	if err != nil {
		return err
	}

	events = filter.Apply(events, p.now(), src.Suppression(), p.logger)
	events = dedup.Accept(src.Seen(), events, p.logger)

	for _, event := range events {
		if err := p.sink.Deliver(ctx, src.CalendarID(), event); err != nil {
			return fmt.Errorf("deliver event %s: %w", event.ID, err)
		}
	}

	if err := src.PersistSeen(ctx); err != nil {
		return fmt.Errorf("persist delivered ids: %w", err)
	}

	p.debug("cycle complete", "source", src.Name(), "delivered", len(events))
	return nil
}

// RunAll processes every source sequentially. A failure in one source's
// cycle is logged and the loop proceeds to the next source.
func (p *Pipeline) RunAll(ctx context.Context, sources []source.Source) {
	for _, src := range sources {
		if err := p.RunSource(ctx, src); err != nil {
			if p.logger != nil {
				p.logger.Error("source cycle failed", "source", src.Name(), "error", err)
			}
		}
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
