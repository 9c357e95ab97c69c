package sampler

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/learnstreak/internal/domain/dateset"
	"github.com/okian/learnstreak/internal/domain/model"
	"github.com/okian/learnstreak/internal/domain/streak"
	"github.com/okian/learnstreak/pkg/logger"
)

// verifySummaries checks every summary against its history and returns the
// violations found.
func verifySummaries(ctx context.Context, cfg *Config, maxSkipDays int, histories []History, summaries map[string]Summary, stats *Stats) ([]string, error) {
	calc, err := streak.NewCalculator(streak.WithMaxSkipDays(maxSkipDays))
	if err != nil {
		return nil, err
	}

	var violations []string
	for _, h := range histories {
		s, ok := summaries[h.SubjectID]
		if !ok {
			continue
		}
		stats.SummariesChecked++
		for _, v := range checkSummary(calc, h, s) {
			violations = append(violations, fmt.Sprintf("%s (%s): %s", h.SubjectID, h.Profile, v))
		}
	}
	stats.Violations = len(violations)

	if cfg.Verbose {
		for _, v := range violations {
			logger.Get().Warn(ctx, "violation", logger.String("detail", v))
		}
	}
	logger.Get().Info(ctx, "verification completed",
		logger.Int("checked", stats.SummariesChecked),
		logger.Int("violations", len(violations)),
	)
	return violations, nil
}

// checkSummary returns every property of s that disagrees with h.
func checkSummary(calc *streak.Calculator, h History, s Summary) []string {
	var out []string
	fail := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	if s.LongestStreak < s.CurrentStreak {
		fail("longest_streak %d < current_streak %d", s.LongestStreak, s.CurrentStreak)
	}
	if !s.StreakAlive && s.CurrentStreak != 0 {
		fail("streak is not alive but current_streak is %d", s.CurrentStreak)
	}

	events := make([]model.ActivityEvent, 0, len(h.Events))
	for _, e := range h.Events {
		d, err := model.ParseDate(e.Date)
		if err != nil {
			fail("generated bad date %q", e.Date)
			return out
		}
		events = append(events, model.ActivityEvent{Date: d, Category: model.Category(e.Category)})
	}
	ref, err := model.ParseDate(s.ReferenceDate)
	if err != nil {
		fail("bad reference_date %q", s.ReferenceDate)
		return out
	}
	dates := dateset.FromEvents(events)
	want := calc.Compute(dates, ref)
	if want.Current != s.CurrentStreak || want.Longest != s.LongestStreak || want.Alive != s.StreakAlive {
		fail("streak %+v, recomputed %+v", streak.Result{Current: s.CurrentStreak, Longest: s.LongestStreak, Alive: s.StreakAlive}, want)
	}

	if got := s.Metrics["active_days"]; got != dates.Len() {
		fail("active_days %d, want %d", got, dates.Len())
	}
	if got := s.Metrics["total_activities"]; got != len(events) {
		fail("total_activities %d, want %d", got, len(events))
	}

	hm := s.Heatmap
	start, errStart := model.ParseDate(hm.Start)
	end, errEnd := model.ParseDate(hm.End)
	if errStart != nil || errEnd != nil {
		fail("bad heatmap bounds %q..%q", hm.Start, hm.End)
	} else if len(hm.Days) != end.Sub(start)+1 {
		fail("heatmap has %d days for %s..%s", len(hm.Days), hm.Start, hm.End)
	}
	sum := 0
	for _, d := range hm.Days {
		sum += d.Count
	}
	if sum != hm.TotalActivities {
		fail("heatmap day counts sum to %d, total_activities is %d", sum, hm.TotalActivities)
	}
	if hm.TotalActivities+hm.IgnoredEvents != len(events) {
		fail("heatmap total %d + ignored %d != %d events", hm.TotalActivities, hm.IgnoredEvents, len(events))
	}

	if !slices.IsSorted(s.Badges) || len(slices.Compact(slices.Clone(s.Badges))) != len(s.Badges) {
		fail("badges not a sorted set: %v", s.Badges)
	}
	return out
}
