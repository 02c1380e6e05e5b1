package leagueofgraphs

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"historycal/internal/domain"
	"historycal/internal/filter"
	"historycal/internal/ports"
	"historycal/internal/source"
)

// Name is the stable source identifier.
const Name = "leagueofgraphs"

var (
	durationExpr  = regexp.MustCompile(`(\d+)min (\d+)s`)
	matchIDExpr   = regexp.MustCompile(`match-(\d+)`)
	matchDateExpr = regexp.MustCompile(`new Date\((\d+)`)
)

type game struct {
	id       uint64
	creation time.Time
	duration time.Duration
	mode     string
}

func (g game) eventID() string {
	return fmt.Sprintf("%s|%d", Name, g.id)
}

// Source scrapes the League of Graphs recent-games table into
// match-span events.
type Source struct {
	source.Base
	logger *slog.Logger
}

var _ source.Source = (*Source)(nil)

// New builds the adapter.
func New(cfg source.Config, store ports.StateStore, logger *slog.Logger) (source.Source, error) {
	base, err := source.NewBase(Name, cfg, store, filter.DefaultOptions(), logger)
	if err != nil {
		return nil, err
	}
	return &Source{Base: base, logger: logger}, nil
}

func (s *Source) Name() string {
	return Name
}

func (s *Source) Parse(responses []string) ([]domain.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(responses[0]))
	if err != nil {
		return nil, fmt.Errorf("parse leagueofgraphs page: %w", err)
	}

	var events []domain.Event
	doc.Find(`tr[class=""]`).Each(func(_ int, row *goquery.Selection) {
		g, err := parseRow(row)
		if err != nil {
			if s.logger != nil {
				s.logger.Info("skipping match row", "error", err)
			}
			return
		}

		events = append(events, domain.Event{
			ID:      g.eventID(),
			Summary: fmt.Sprintf("[League of Legends] %s", g.mode),
			Description: fmt.Sprintf("[link] https://www.leagueofgraphs.com/match/na/%d\n[mode] %s\n[hash] %s",
				g.id, g.mode, g.eventID()),
			When: domain.Span{Start: g.creation, End: g.creation.Add(g.duration)},
		})
	})

	return events, nil
}

// parseRow extracts a game from one table row: the inline tooltip
// script carries the match id and epoch millis, the result cell the
// mode and duration.
func parseRow(row *goquery.Selection) (game, error) {
	script := row.Find("script").First().Text()
	mode := strings.TrimSpace(row.Find("div.gameMode").First().Text())
	durationText := strings.TrimSpace(row.Find("div.gameDuration").First().Text())

	idMatch := matchIDExpr.FindStringSubmatch(script)
	if idMatch == nil {
		return game{}, fmt.Errorf("no match id in row script")
	}
	id, err := strconv.ParseUint(idMatch[1], 10, 64)
	if err != nil {
		return game{}, fmt.Errorf("match id %q: %w", idMatch[1], err)
	}

	dateMatch := matchDateExpr.FindStringSubmatch(script)
	if dateMatch == nil {
		return game{}, fmt.Errorf("no match date in row script")
	}
	millis, err := strconv.ParseInt(dateMatch[1], 10, 64)
	if err != nil {
		return game{}, fmt.Errorf("match date %q: %w", dateMatch[1], err)
	}

	duration, err := parseDuration(durationText)
	if err != nil {
		return game{}, err
	}

	return game{
		id:       id,
		creation: time.UnixMilli(millis).UTC(),
		duration: duration,
		mode:     mode,
	}, nil
}

func parseDuration(text string) (time.Duration, error) {
	match := durationExpr.FindStringSubmatch(text)
	if match == nil {
		return 0, fmt.Errorf("unrecognized game duration %q", text)
	}

	minutes, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("duration minutes %q: %w", match[1], err)
	}
	seconds, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, fmt.Errorf("duration seconds %q: %w", match[2], err)
	}

	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
}
