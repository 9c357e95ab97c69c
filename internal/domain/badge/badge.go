// Package badge evaluates which achievement badges a metric snapshot unlocks.
package badge

import "slices"

// Milestone is the next locked badge on a metric.
type Milestone struct {
	BadgeID   string `json:"badge_id"`
	Metric    Metric `json:"metric"`
	Threshold int    `json:"threshold"`
	Current   int    `json:"current"`
	Remaining int    `json:"remaining"`
}

// Evaluate returns the sorted ids of every definition whose metric value
// meets or exceeds its threshold. Metrics missing from the snapshot unlock
// nothing.
func Evaluate(metrics Metrics, catalog Catalog) []string {
	unlocked := make([]string, 0, len(catalog.defs))
	for _, d := range catalog.defs {
		if v, ok := metrics[d.Metric]; ok && v >= d.Threshold {
			unlocked = append(unlocked, d.ID)
		}
	}
	slices.Sort(unlocked)
	return unlocked
}

// Next returns, per metric present in the snapshot, the locked badge with the
// lowest threshold. Ties on threshold pick the smaller id. The result is
// ordered by metric name.
func Next(metrics Metrics, catalog Catalog) []Milestone {
	best := make(map[Metric]Definition)
	for _, d := range catalog.defs {
		v, ok := metrics[d.Metric]
		if !ok || v >= d.Threshold {
			continue
		}
		cur, seen := best[d.Metric]
		if !seen || d.Threshold < cur.Threshold || (d.Threshold == cur.Threshold && d.ID < cur.ID) {
			best[d.Metric] = d
		}
	}

	out := make([]Milestone, 0, len(best))
	for m, d := range best {
		out = append(out, Milestone{
			BadgeID:   d.ID,
			Metric:    m,
			Threshold: d.Threshold,
			Current:   metrics[m],
			Remaining: d.Threshold - metrics[m],
		})
	}
	slices.SortFunc(out, func(a, b Milestone) int {
		switch {
		case a.Metric < b.Metric:
			return -1
		case a.Metric > b.Metric:
			return 1
		}
		return 0
	})
	return out
}
