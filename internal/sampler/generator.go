package sampler

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/learnstreak/internal/domain/model"
	"github.com/okian/learnstreak/pkg/logger"
)

// Learner profiles. Each draws activity days with a different rhythm so the
// server sees perfect runs, forgiven gaps and broken streaks.
const (
	profileDaily    = "daily"
	profileWeekdays = "weekdays"
	profileLapsed   = "lapsed"
	profileSporadic = "sporadic"
	profileBinge    = "binge"
)

var profiles = []string{profileDaily, profileWeekdays, profileLapsed, profileSporadic, profileBinge}

// maxEventsPerDay bounds how many events a single active day gets.
const maxEventsPerDay = 4

// generateHistories builds cfg.Subjects histories ending at ref.
func generateHistories(ctx context.Context, cfg *Config, ref model.Date, stats *Stats) ([]History, error) {
	logger.Get().Info(ctx, "generating histories",
		logger.Int("subjects", cfg.Subjects),
		logger.Int("days", cfg.Days),
		logger.String("reference", ref.String()),
	)

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible synthetic data
	cats := model.Categories()
	out := make([]History, 0, cfg.Subjects)
	for i := 0; i < cfg.Subjects; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		profile := profiles[i%len(profiles)]
		h := History{
			SubjectID:     uuid.NewString(),
			Profile:       profile,
			ReferenceDate: ref.String(),
		}
		for back := cfg.Days - 1; back >= 0; back-- {
			day := ref.AddDays(-back)
			if !active(rng, profile, day, back, cfg.Days) {
				continue
			}
			for n := 1 + rng.Intn(maxEventsPerDay); n > 0; n-- {
				h.Events = append(h.Events, Event{
					Date:     day.String(),
					Category: string(cats[rng.Intn(len(cats))]),
				})
			}
		}
		stats.EventsGenerated += len(h.Events)
		out = append(out, h)
	}

	stats.SubjectsGenerated = len(out)
	logger.Get().Info(ctx, "generated histories", logger.Int("subjects", len(out)), logger.Int("events", stats.EventsGenerated))
	return out, nil
}

// active decides whether a learner with the given profile studied on day,
// back days before the reference date.
func active(rng *rand.Rand, profile string, day model.Date, back, span int) bool {
	switch profile {
	case profileDaily:
		return true
	case profileWeekdays:
		wd := day.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case profileLapsed:
		// Studied daily, then stopped a week ago.
		return back >= 7
	case profileBinge:
		// Bursts of a few days every couple of weeks.
		return (span-back)%14 < 4
	default:
		return rng.Intn(3) == 0
	}
}
