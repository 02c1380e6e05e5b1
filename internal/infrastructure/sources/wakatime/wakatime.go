package wakatime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"historycal/internal/domain"
	"historycal/internal/filter"
	"historycal/internal/ports"
	"historycal/internal/source"
)

// Name is the stable source identifier.
const Name = "wakatime"

type item struct {
	Duration float64 `json:"duration"`
	Project  string  `json:"project"`
	Time     float64 `json:"time"`
}

type response struct {
	Data []item `json:"data"`
}

// Source turns WakaTime duration records into coding-span events.
type Source struct {
	source.Base
	now func() time.Time
}

var _ source.Source = (*Source)(nil)

// New builds the adapter; the configured URL may carry a {date}
// placeholder substituted at fetch time.
func New(cfg source.Config, store ports.StateStore, logger *slog.Logger) (source.Source, error) {
	base, err := source.NewBase(Name, cfg, store, filter.DefaultOptions(), logger)
	if err != nil {
		return nil, err
	}
	return &Source{Base: base, now: time.Now}, nil
}

func (s *Source) Name() string {
	return Name
}

// RequestURL substitutes today's UTC date into the URL template.
func (s *Source) RequestURL() string {
	return strings.ReplaceAll(s.Config().URL, "{date}", s.now().UTC().Format("2006-01-02"))
}

func (s *Source) Parse(responses []string) ([]domain.Event, error) {
	var parsed response
	if err := json.Unmarshal([]byte(responses[0]), &parsed); err != nil {
		return nil, fmt.Errorf("decode wakatime response: %w", err)
	}

	events := make([]domain.Event, 0, len(parsed.Data))
	for _, entry := range parsed.Data {
		start := time.Unix(int64(entry.Time), 0).UTC()
		events = append(events, domain.Event{
			ID:          fmt.Sprintf("%s|%d", Name, int64(entry.Time)),
			Summary:     fmt.Sprintf("[Wakatime] %s", entry.Project),
			Description: fmt.Sprintf("[link] https://wakatime.com/projects/%s", entry.Project),
			When: domain.Span{
				Start: start,
				End:   start.Add(time.Duration(entry.Duration) * time.Second),
			},
		})
	}
	return events, nil
}
