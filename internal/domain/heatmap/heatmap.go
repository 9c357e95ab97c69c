// Package heatmap aggregates activity events into a fixed trailing calendar window.
package heatmap

import (
	"fmt"

	"github.com/okian/learnstreak/internal/domain/model"
)

// DefaultWindowDays covers one year of calendar cells.
const DefaultWindowDays = 365

// maxLevel is the darkest shade a calendar cell can take.
const maxLevel = 4

// Day is one calendar cell.
type Day struct {
	Date       model.Date             `json:"date"`
	Count      int                    `json:"count"`
	Categories map[model.Category]int `json:"categories"`
}

// Level buckets Count into 0..4 relative to maxCount, for calendar shading.
// Any activity maps to at least 1.
func (d Day) Level(maxCount int) int {
	if d.Count <= 0 || maxCount <= 0 {
		return 0
	}
	lvl := (d.Count*maxLevel + maxCount - 1) / maxCount
	return min(max(lvl, 1), maxLevel)
}

// Result is the aggregated window, oldest day first.
type Result struct {
	Start           model.Date `json:"start"`
	End             model.Date `json:"end"`
	Days            []Day      `json:"days"`
	TotalActivities int        `json:"total_activities"`
	MaxCount        int        `json:"max_count"`
}

// Aggregator holds the window configuration.
type Aggregator struct {
	windowDays int
}

// NewAggregator builds an Aggregator. It fails on a non-positive window.
func NewAggregator(opts ...Option) (*Aggregator, error) {
	a := &Aggregator{windowDays: DefaultWindowDays}
	for _, opt := range opts {
		opt(a)
	}
	if a.windowDays <= 0 {
		return nil, fmt.Errorf("%w: window_days must be > 0, got %d", model.ErrInvalidArgument, a.windowDays)
	}
	return a, nil
}

// WindowDays returns the configured window length.
func (a *Aggregator) WindowDays() int { return a.windowDays }

// Compute buckets events into the window ending at ref. Events outside the
// window are ignored.
func (a *Aggregator) Compute(events []model.ActivityEvent, ref model.Date) Result {
	start := ref.AddDays(-(a.windowDays - 1))
	days := make([]Day, a.windowDays)
	for i := range days {
		days[i] = Day{Date: start.AddDays(i), Categories: map[model.Category]int{}}
	}

	res := Result{Start: start, End: ref, Days: days}
	for _, e := range events {
		idx := e.Date.Sub(start)
		if idx < 0 || idx >= a.windowDays {
			continue
		}
		days[idx].Count++
		days[idx].Categories[e.Category]++
		res.TotalActivities++
		res.MaxCount = max(res.MaxCount, days[idx].Count)
	}
	return res
}

// Ignored counts the events Compute would drop for falling outside the window.
func (a *Aggregator) Ignored(events []model.ActivityEvent, ref model.Date) int {
	start := ref.AddDays(-(a.windowDays - 1))
	n := 0
	for _, e := range events {
		if e.Date.Before(start) || e.Date.After(ref) {
			n++
		}
	}
	return n
}

// Compute is a convenience wrapper for a one-off aggregation.
func Compute(events []model.ActivityEvent, windowDays int, ref model.Date) (Result, error) {
	a, err := NewAggregator(WithWindowDays(windowDays))
	if err != nil {
		return Result{}, err
	}
	return a.Compute(events, ref), nil
}
