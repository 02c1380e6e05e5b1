package dedup

import (
	"log/slog"

	"historycal/internal/domain"
)

// Set is an insert-only collection of delivered event IDs for one source.
// It is touched only by that source's single-threaded cycle, so no
// locking is required.
type Set struct {
	ids map[string]struct{}
}

// NewSet wraps a loaded ID set; a nil map yields an empty set.
func NewSet(ids map[string]struct{}) *Set {
	if ids == nil {
		ids = map[string]struct{}{}
	}
	return &Set{ids: ids}
}

// Contains reports whether id was already delivered.
func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add records id as delivered.
func (s *Set) Add(id string) {
	s.ids[id] = struct{}{}
}

// Len returns the number of recorded IDs.
func (s *Set) Len() int {
	return len(s.ids)
}

// Snapshot copies the current IDs for persistence.
func (s *Set) Snapshot() map[string]struct{} {
	out := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out
}

// Accept is the delivery gate: events whose ID is already in the set
// are dropped, survivors have their IDs recorded immediately so that
// duplicates within one batch collapse as well.
func Accept(set *Set, events []domain.Event, logger *slog.Logger) []domain.Event {
	kept := make([]domain.Event, 0, len(events))
	for _, event := range events {
		if set.Contains(event.ID) {
			debug(logger, "event already delivered, skipped", "id", event.ID)
			continue
		}
		set.Add(event.ID)
		debug(logger, "event seen for the first time", "id", event.ID)
		kept = append(kept, event)
	}
	return kept
}

func debug(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
