package odenseminar

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
const Name = "ut_oden_seminar"

// Seminar times are published in US Central daylight time.
var centralTime = time.FixedZone("UTC-5", -5*60*60)

var (
	eventPathExpr = regexp.MustCompile(`/about/events/\d+`)
	hostExpr      = regexp.MustCompile(`https://[^/]*`)
	seminarIDExpr = regexp.MustCompile(`Oden Institute Event:(\d+)`)
	zoomLinkExpr  = regexp.MustCompile(`https://utexas\.zoom\.us/j/\d+`)
	dateExpr      = regexp.MustCompile(`(\w+), (\w+) (\d+), (\d+)`)
	lineBreakExpr = regexp.MustCompile(`<br\s*/?>`)
)

type seminar struct {
	link        string
	title       string
	description string
	seminarID   uint32
	start       time.Time
	end         time.Time
}

func (s seminar) eventID() string {
	return fmt.Sprintf("%s|%d|%s", Name, s.seminarID, s.start.Format("2006-01-02 15:04"))
}

// Source scrapes the Oden Institute seminar listing. The index page
// only links the per-seminar detail pages, so this is a two-stage
// source. Upcoming seminars are the whole point, so in-progress
// suppression is off.
type Source struct {
	source.Base
	logger *slog.Logger
}

var _ source.Source = (*Source)(nil)

// New builds the adapter.
func New(cfg source.Config, store ports.StateStore, logger *slog.Logger) (source.Source, error) {
	opts := filter.Options{SuppressInProgress: false, SuppressShort: true}
	base, err := source.NewBase(Name, cfg, store, opts, logger)
	if err != nil {
		return nil, err
	}
	return &Source{Base: base, logger: logger}, nil
}

func (s *Source) Name() string {
	return Name
}

// NeedsDetail collects the per-seminar page links from the index and
// resolves them against the configured host.
func (s *Source) NeedsDetail(index string) ([]string, bool) {
	base := hostExpr.FindString(s.Config().URL)
	if base == "" {
		return nil, false
	}

	paths := eventPathExpr.FindAllString(index, -1)
	urls := make([]string, 0, len(paths))
	for _, path := range paths {
		urls = append(urls, base+path)
	}
	return urls, true
}

func (s *Source) Parse(responses []string) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(responses))
	for _, response := range responses {
		item, err := parseSeminar(response)
		if err != nil {
			if s.logger != nil {
				s.logger.Info("skipping seminar page", "error", err)
			}
			continue
		}

		events = append(events, domain.Event{
			ID:          item.eventID(),
			Summary:     item.title,
			Description: fmt.Sprintf("Zoom link: %s\n%s", item.link, item.description),
			When:        domain.Span{Start: item.start, End: item.end},
		})
	}
	return events, nil
}

// parseSeminar reads one detail page: the first paragraph of the page
// body carries title, date and time separated by <br>, the second the
// abstract; the seminar id and Zoom link sit in the surrounding markup.
func parseSeminar(response string) (seminar, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(response))
	if err != nil {
		return seminar{}, fmt.Errorf("parse seminar page: %w", err)
	}

	pageBody := doc.Find("div#page-body").First()
	if pageBody.Length() == 0 {
		return seminar{}, fmt.Errorf("no page body found")
	}

	paragraphs := pageBody.Find("p")
	info, err := paragraphs.First().Html()
	if err != nil {
		return seminar{}, fmt.Errorf("read info paragraph: %w", err)
	}
	info = strings.NewReplacer("\t", "", "\n", "").Replace(info)

	lines := lineBreakExpr.Split(info, -1)
	if len(lines) < 3 {
		return seminar{}, fmt.Errorf("info paragraph has %d lines, want at least 3", len(lines))
	}
	title := strings.TrimSpace(lines[0])

	day, err := parseDate(lines[1])
	if err != nil {
		return seminar{}, err
	}

	startClock, endClock, err := parseTimeRange(lines[2])
	if err != nil {
		return seminar{}, err
	}

	description := ""
	if paragraphs.Length() > 1 {
		description, err = paragraphs.Eq(1).Html()
		if err != nil {
			return seminar{}, fmt.Errorf("read description paragraph: %w", err)
		}
	}

	bodyHTML, err := pageBody.Html()
	if err != nil {
		return seminar{}, fmt.Errorf("read page body: %w", err)
	}

	idMatch := seminarIDExpr.FindStringSubmatch(bodyHTML)
	if idMatch == nil {
		return seminar{}, fmt.Errorf("no seminar id found")
	}
	seminarID, err := strconv.ParseUint(idMatch[1], 10, 32)
	if err != nil {
		return seminar{}, fmt.Errorf("seminar id %q: %w", idMatch[1], err)
	}

	link := zoomLinkExpr.FindString(bodyHTML)
	if link == "" {
		return seminar{}, fmt.Errorf("no zoom link found")
	}

	return seminar{
		link:        link,
		title:       title,
		description: description,
		seminarID:   uint32(seminarID),
		start:       time.Date(day.Year(), day.Month(), day.Day(), startClock.hour, startClock.minute, 0, 0, centralTime),
		end:         time.Date(day.Year(), day.Month(), day.Day(), endClock.hour, endClock.minute, 0, 0, centralTime),
	}, nil
}

func parseDate(line string) (time.Time, error) {
	captures := dateExpr.FindStringSubmatch(line)
	if captures == nil {
		return time.Time{}, fmt.Errorf("unrecognized seminar date %q", strings.TrimSpace(line))
	}

	month, err := parseMonth(captures[2])
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(captures[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("seminar day %q: %w", captures[3], err)
	}
	year, err := strconv.Atoi(captures[4])
	if err != nil {
		return time.Time{}, fmt.Errorf("seminar year %q: %w", captures[4], err)
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

func parseMonth(name string) (time.Month, error) {
	parsed, err := time.Parse("January", name)
	if err != nil {
		return 0, fmt.Errorf("unknown month %q", name)
	}
	return parsed.Month(), nil
}

type clock struct {
	hour   int
	minute int
}

func parseTimeRange(line string) (clock, clock, error) {
	parts := strings.SplitN(strings.ReplaceAll(line, "&ndash;", "–"), "–", 2)
	if len(parts) != 2 {
		return clock{}, clock{}, fmt.Errorf("unrecognized time range %q", strings.TrimSpace(line))
	}

	start, err := parseClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return clock{}, clock{}, err
	}
	end, err := parseClock(strings.TrimSpace(parts[1]))
	if err != nil {
		return clock{}, clock{}, err
	}
	return start, end, nil
}

// parseClock reads 12-hour times such as "3PM" and "11:30AM".
func parseClock(text string) (clock, error) {
	trimmed := strings.TrimSpace(text)
	isPM := strings.HasSuffix(trimmed, "PM")
	hourMinute := strings.TrimSuffix(strings.TrimSuffix(trimmed, "PM"), "AM")

	var c clock
	var err error
	if before, after, found := strings.Cut(hourMinute, ":"); found {
		if c.hour, err = strconv.Atoi(before); err != nil {
			return clock{}, fmt.Errorf("seminar hour %q: %w", before, err)
		}
		if c.minute, err = strconv.Atoi(after); err != nil {
			return clock{}, fmt.Errorf("seminar minute %q: %w", after, err)
		}
	} else {
		if c.hour, err = strconv.Atoi(hourMinute); err != nil {
			return clock{}, fmt.Errorf("seminar time %q: %w", trimmed, err)
		}
	}

	if isPM {
		c.hour += 12
	}
	return c, nil
}
