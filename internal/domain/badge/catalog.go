package badge

import (
	"fmt"
	"strings"

	"github.com/okian/learnstreak/internal/domain/model"
)

// Definition unlocks badge ID once Metric reaches Threshold.
type Definition struct {
	ID        string `json:"id" koanf:"id"`
	Metric    Metric `json:"metric" koanf:"metric"`
	Threshold int    `json:"threshold" koanf:"threshold"`
}

// Catalog is an immutable, ordered list of badge definitions.
type Catalog struct {
	defs []Definition
}

// NewCatalog validates defs and freezes them into a Catalog.
func NewCatalog(defs ...Definition) (Catalog, error) {
	seen := make(map[string]struct{}, len(defs))
	frozen := make([]Definition, 0, len(defs))
	for i, d := range defs {
		d.ID = strings.TrimSpace(d.ID)
		d.Metric = Metric(strings.TrimSpace(string(d.Metric)))
		switch {
		case d.ID == "":
			return Catalog{}, fmt.Errorf("%w: badge #%d has no id", model.ErrInvalidArgument, i)
		case d.Metric == "":
			return Catalog{}, fmt.Errorf("%w: badge %q has no metric", model.ErrInvalidArgument, d.ID)
		case d.Threshold < 0:
			return Catalog{}, fmt.Errorf("%w: badge %q has negative threshold %d", model.ErrInvalidArgument, d.ID, d.Threshold)
		}
		if _, dup := seen[d.ID]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate badge id %q", model.ErrInvalidArgument, d.ID)
		}
		seen[d.ID] = struct{}{}
		frozen = append(frozen, d)
	}
	return Catalog{defs: frozen}, nil
}

// Definitions returns a copy of the catalog entries in declaration order.
func (c Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Len returns the number of definitions.
func (c Catalog) Len() int { return len(c.defs) }

// NonMonotonic returns the ids of definitions watching a metric that may
// decrease over time.
func (c Catalog) NonMonotonic() []string {
	var ids []string
	for _, d := range c.defs {
		if !d.Metric.Monotonic() {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// DefaultCatalog returns the built-in badge set.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(DefaultDefinitions()...)
	if err != nil {
		panic(err) // static table
	}
	return c
}

// DefaultDefinitions returns the built-in badge table. IDs are stable and may
// be stored by clients.
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: "streak_3", Metric: MetricLongestStreak, Threshold: 3},
		{ID: "streak_7", Metric: MetricLongestStreak, Threshold: 7},
		{ID: "streak_14", Metric: MetricLongestStreak, Threshold: 14},
		{ID: "streak_30", Metric: MetricLongestStreak, Threshold: 30},
		{ID: "streak_60", Metric: MetricLongestStreak, Threshold: 60},
		{ID: "streak_100", Metric: MetricLongestStreak, Threshold: 100},
		{ID: "streak_365", Metric: MetricLongestStreak, Threshold: 365},
		{ID: "active_days_50", Metric: MetricActiveDays, Threshold: 50},
		{ID: "first_certificate", Metric: CategoryCount(model.CategoryCertificateEarned), Threshold: 1},
		{ID: "topics_10", Metric: CategoryCount(model.CategoryTopicCompleted), Threshold: 10},
		{ID: "questions_100", Metric: CategoryCount(model.CategoryQuestionAttempted), Threshold: 100},
	}
}
