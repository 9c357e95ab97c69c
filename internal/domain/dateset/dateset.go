// Package dateset builds the deduplicated set of activity dates for one subject.
package dateset

import (
	"slices"

	"github.com/okian/learnstreak/internal/domain/model"
)

// Set is an immutable set of distinct calendar dates. The zero value is an
// empty set.
type Set struct {
	seen map[model.Date]struct{}
}

// New builds a set from dates, collapsing duplicates.
func New(dates ...model.Date) Set {
	seen := make(map[model.Date]struct{}, len(dates))
	for _, d := range dates {
		seen[d] = struct{}{}
	}
	return Set{seen: seen}
}

// FromEvents collapses same-day events into one date each.
func FromEvents(events []model.ActivityEvent) Set {
	seen := make(map[model.Date]struct{}, len(events))
	for _, e := range events {
		seen[e.Date] = struct{}{}
	}
	return Set{seen: seen}
}

// With returns a new set containing the receiver's dates plus d.
func (s Set) With(d model.Date) Set {
	seen := make(map[model.Date]struct{}, len(s.seen)+1)
	for k := range s.seen {
		seen[k] = struct{}{}
	}
	seen[d] = struct{}{}
	return Set{seen: seen}
}

// Len returns the number of distinct dates.
func (s Set) Len() int {
	return len(s.seen)
}

// Contains reports whether d is in the set.
func (s Set) Contains(d model.Date) bool {
	_, ok := s.seen[d]
	return ok
}

// Ascending returns the dates oldest first.
func (s Set) Ascending() []model.Date {
	out := s.dates()
	slices.SortFunc(out, func(a, b model.Date) int { return a.Sub(b) })
	return out
}

// Descending returns the dates most recent first.
func (s Set) Descending() []model.Date {
	out := s.dates()
	slices.SortFunc(out, func(a, b model.Date) int { return b.Sub(a) })
	return out
}

func (s Set) dates() []model.Date {
	out := make([]model.Date, 0, len(s.seen))
	for d := range s.seen {
		out = append(out, d)
	}
	return out
}
