package bilibili

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"historycal/internal/domain"
	"historycal/internal/filter"
	"historycal/internal/ports"
	"historycal/internal/source"
)

// Name is the stable source identifier.
const Name = "bilibili"

type page struct {
	Page     int64  `json:"page"`
	Part     string `json:"part"`
	Duration int64  `json:"duration"`
}

type historyItem struct {
	Bvid         string `json:"bvid"`
	Page         page   `json:"page"`
	Progress     int64  `json:"progress"`
	RedirectLink string `json:"redirect_link"`
	Title        string `json:"title"`
	ViewAt       int64  `json:"view_at"`
}

type response struct {
	Code int64         `json:"code"`
	Data []historyItem `json:"data"`
}

// Source turns Bilibili watch-history records into viewing-span events.
// Watch spans are often brief, so short-event suppression is off.
type Source struct {
	source.Base
}

var _ source.Source = (*Source)(nil)

// New builds the adapter.
func New(cfg source.Config, store ports.StateStore, logger *slog.Logger) (source.Source, error) {
	opts := filter.Options{SuppressInProgress: true, SuppressShort: false}
	base, err := source.NewBase(Name, cfg, store, opts, logger)
	if err != nil {
		return nil, err
	}
	return &Source{Base: base}, nil
}

func (s *Source) Name() string {
	return Name
}

func (s *Source) Parse(responses []string) ([]domain.Event, error) {
	var parsed response
	if err := json.Unmarshal([]byte(responses[0]), &parsed); err != nil {
		return nil, fmt.Errorf("decode bilibili response: %w", err)
	}

	events := make([]domain.Event, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		// Progress -1 means the video was watched to the end.
		viewDuration := item.Progress
		if viewDuration == -1 {
			viewDuration = item.Page.Duration
		}

		id := fmt.Sprintf("%s|%s|%d|%d", Name, item.Bvid, item.Page.Page, item.ViewAt)
		start := time.Unix(item.ViewAt, 0).UTC()
		events = append(events, domain.Event{
			ID:      id,
			Summary: fmt.Sprintf("[Bilibili] %s", item.Title),
			Description: fmt.Sprintf("[link] %s\n[bvid] %s\n[hash] %s",
				item.RedirectLink, item.Bvid, id),
			When: domain.Span{
				Start: start,
				End:   start.Add(time.Duration(viewDuration) * time.Second),
			},
		})
	}
	return events, nil
}
