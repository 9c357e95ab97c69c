package badge

import "github.com/okian/learnstreak/internal/domain/model"

// Metric names an achievement value a badge can watch.
type Metric string

// Built-in metrics derived from a subject's activity history.
const (
	MetricLongestStreak   Metric = "longest_streak"
	MetricCurrentStreak   Metric = "current_streak"
	MetricActiveDays      Metric = "active_days"
	MetricTotalActivities Metric = "total_activities"
)

// CategoryCount is the metric counting all events of category c.
func CategoryCount(c model.Category) Metric {
	return Metric(string(c) + "_count")
}

// Monotonic reports whether the metric can only grow as history accumulates.
// Badges keyed on a non-monotonic metric are recomputed live and may
// disappear; keeping them requires an awarded-badge ledger in storage.
func (m Metric) Monotonic() bool {
	return m != MetricCurrentStreak
}

// Metrics is a snapshot of achieved values keyed by metric.
type Metrics map[Metric]int
