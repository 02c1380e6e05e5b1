package youtube

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
const Name = "youtube"

// The watch-history page is served localized; the day headings and
// clock prefixes below match the zh-CN rendering the account uses.
const (
	headingToday     = "今天"
	headingYesterday = "昨天"
)

var (
	fullDateExpr   = regexp.MustCompile(`(\d+)年(\d+)月(\d+)日`)
	monthDayExpr   = regexp.MustCompile(`(\d+)月(\d+)日`)
	startTimeExpr  = regexp.MustCompile(`(上午|下午)(\d+):(\d+)`)
	longLengthExpr = regexp.MustCompile(`(\d+):(\d+):(\d+)`)
	lengthExpr     = regexp.MustCompile(`(\d+):(\d+)`)
	percentExpr    = regexp.MustCompile(`width:\s*(\d+)%`)
)

type watchedItem struct {
	link   string
	title  string
	author string
	length time.Duration
	start  time.Time
}

func (w watchedItem) eventID() (string, error) {
	_, videoID, found := strings.Cut(w.link, "=")
	if !found {
		return "", fmt.Errorf("no video id in link %q", w.link)
	}
	return fmt.Sprintf("%s|%s|%s", Name, videoID, w.start.Format("2006-01-02 15:04")), nil
}

// Source scrapes the YouTube watch-history page into viewing-span
// events. Day headings set the running date for the cards below them.
type Source struct {
	source.Base
	logger *slog.Logger
	now    func() time.Time
}

var _ source.Source = (*Source)(nil)

// New builds the adapter.
func New(cfg source.Config, store ports.StateStore, logger *slog.Logger) (source.Source, error) {
	base, err := source.NewBase(Name, cfg, store, filter.DefaultOptions(), logger)
	if err != nil {
		return nil, err
	}
	return &Source{Base: base, logger: logger, now: time.Now}, nil
}

func (s *Source) Name() string {
	return Name
}

func (s *Source) Parse(responses []string) ([]domain.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(responses[0]))
	if err != nil {
		return nil, fmt.Errorf("parse youtube history page: %w", err)
	}

	first := doc.Find("c-wiz[data-token]").First()
	if first.Length() == 0 {
		return nil, nil
	}

	// Day headings are calendar dates in the account's local zone, so
	// "today" must be local midnight, not the UTC day.
	n := s.now()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
	date := today

	var events []domain.Event
	first.Parent().Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "div":
			next, err := parseDayHeading(child.Find("h2").First().Text(), today)
			if err != nil {
				if s.logger != nil {
					s.logger.Info("skipping day heading", "error", err)
				}
				return
			}
			date = next
		case "c-wiz":
			item, err := parseCard(child, date)
			if err != nil {
				if s.logger != nil {
					s.logger.Info("skipping watch card", "error", err)
				}
				return
			}
			id, err := item.eventID()
			if err != nil {
				if s.logger != nil {
					s.logger.Info("skipping watch card", "error", err)
				}
				return
			}

			events = append(events, domain.Event{
				ID:      id,
				Summary: fmt.Sprintf("[Youtube] %s", item.title),
				Description: fmt.Sprintf("[link] %s\n[author] %s\n[hash] %s",
					item.link, item.author, id),
				When: domain.Span{
					Start: item.start.UTC(),
					End:   item.start.Add(item.length).UTC(),
				},
			})
		}
	})

	return events, nil
}

func parseDayHeading(text string, today time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	switch text {
	case headingToday:
		return today, nil
	case headingYesterday:
		return today.AddDate(0, 0, -1), nil
	}

	if cap := fullDateExpr.FindStringSubmatch(text); cap != nil {
		year, _ := strconv.Atoi(cap[1])
		month, _ := strconv.Atoi(cap[2])
		day, _ := strconv.Atoi(cap[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location()), nil
	}
	if cap := monthDayExpr.FindStringSubmatch(text); cap != nil {
		month, _ := strconv.Atoi(cap[1])
		day, _ := strconv.Atoi(cap[2])
		return time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, today.Location()), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized day heading %q", text)
}

// parseCard extracts one watched video: the first watch link carries
// title and video id, the next link the channel, and the card text the
// start clock and total length. A progress bar width scales the length
// down to the portion actually watched.
func parseCard(card *goquery.Selection, date time.Time) (watchedItem, error) {
	titleLink := card.Find(`a[href*="watch"]`).First()
	if titleLink.Length() == 0 {
		return watchedItem{}, fmt.Errorf("no watch link in card")
	}
	link, _ := titleLink.Attr("href")
	title := strings.TrimSpace(titleLink.Text())

	author := ""
	card.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if author == "" && !strings.Contains(href, "watch") {
			author = strings.TrimSpace(a.Text())
		}
	})

	text := card.Text()
	startCap := startTimeExpr.FindStringSubmatch(text)
	if startCap == nil {
		return watchedItem{}, fmt.Errorf("no start time in card %q", title)
	}
	hour, _ := strconv.Atoi(startCap[2])
	minute, _ := strconv.Atoi(startCap[3])
	hour %= 12
	if startCap[1] == "下午" {
		hour += 12
	}

	// The start clock matches the length pattern too, so strip it
	// before looking for the video length.
	remainder := strings.Replace(text, startCap[0], "", 1)
	total, err := parseLength(remainder)
	if err != nil {
		return watchedItem{}, fmt.Errorf("card %q: %w", title, err)
	}

	watched := total
	if style, ok := card.Find(`[style*="width"]`).First().Attr("style"); ok {
		if cap := percentExpr.FindStringSubmatch(style); cap != nil {
			percent, _ := strconv.Atoi(cap[1])
			watched = total * time.Duration(percent) / 100
		}
	}

	return watchedItem{
		link:   link,
		title:  title,
		author: author,
		length: watched,
		start:  time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()),
	}, nil
}

func parseLength(text string) (time.Duration, error) {
	if cap := longLengthExpr.FindStringSubmatch(text); cap != nil {
		hours, _ := strconv.Atoi(cap[1])
		minutes, _ := strconv.Atoi(cap[2])
		seconds, _ := strconv.Atoi(cap[3])
		return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
	}
	if cap := lengthExpr.FindStringSubmatch(text); cap != nil {
		minutes, _ := strconv.Atoi(cap[1])
		seconds, _ := strconv.Atoi(cap[2])
		return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
	}
	return 0, fmt.Errorf("no video length found")
}
