package domain

import "time"

// Event is the normalized calendar entry every source adapter produces.
// Instances live for a single cycle: created by Parse, consumed by the
// filter/dedup/sink chain, then discarded.
type Event struct {
	ID          string
	Summary     string
	Description string
	When        When
}

// When is the closed set of event time shapes.
type When interface {
	isWhen()
}

// Span is a bounded time range; End is never before Start.
type Span struct {
	Start time.Time
	End   time.Time
}

// AllDay marks a whole calendar day with no times attached.
type AllDay struct {
	Date time.Time // midnight UTC of the day
}

func (Span) isWhen()   {}
func (AllDay) isWhen() {}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
