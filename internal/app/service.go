// Package service composes the streak, badge and heatmap engines into the
// per-subject progress summary served by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/learnstreak/internal/domain/badge"
	"github.com/okian/learnstreak/internal/domain/dateset"
	"github.com/okian/learnstreak/internal/domain/heatmap"
	"github.com/okian/learnstreak/internal/domain/model"
	"github.com/okian/learnstreak/internal/domain/streak"
	"github.com/okian/learnstreak/pkg/logger"
	"github.com/okian/learnstreak/pkg/metrics"
)

// Request is the activity history of one subject.
type Request struct {
	SubjectID string
	// ReferenceDate is "today" for the subject. Nil means today in the
	// service location.
	ReferenceDate  *model.Date
	IncludeHistory bool
	Events         []model.ActivityEvent
}

// Summary is the computed progress of one subject.
type Summary struct {
	SubjectID     string
	ReferenceDate model.Date
	Streak        streak.Result
	// History is only set when the request asked for it.
	History       []streak.Chain
	Metrics       badge.Metrics
	Badges        []string
	Next          []badge.Milestone
	Heatmap       heatmap.Result
	IgnoredEvents int
}

// Service computes progress summaries. It holds no per-subject state and is
// safe for concurrent use.
type Service struct {
	calculator *streak.Calculator
	aggregator *heatmap.Aggregator
	catalog    badge.Catalog

	// Configuration
	maxSkipDays       int
	heatmapWindowDays int
	workerCount       int
	location          *time.Location
	clock             func() time.Time

	startedAt time.Time
	summaries atomic.Int64
	batches   atomic.Int64

	logger  logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMaxSkipDays sets the streak forgiveness window. Negative values make
// New fail.
func WithMaxSkipDays(days int) Option {
	return func(s *Service) {
		s.maxSkipDays = days
	}
}

// WithHeatmapWindowDays sets the heatmap length. Non-positive values make New
// fail.
func WithHeatmapWindowDays(days int) Option {
	return func(s *Service) {
		s.heatmapWindowDays = days
	}
}

// WithCatalog replaces the built-in badge catalog.
func WithCatalog(c badge.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithWorkerCount bounds batch concurrency.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithClock overrides time.Now, used to derive the default reference date.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the zone in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// New constructs a Service. It fails when the streak or heatmap settings are
// out of range.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		catalog:           badge.DefaultCatalog(),
		maxSkipDays:       streak.DefaultMaxSkipDays,
		heatmapWindowDays: heatmap.DefaultWindowDays,
		workerCount:       runtime.NumCPU(),
		location:          time.UTC,
		clock:             time.Now,
		logger:            logger.Discard(),
		metrics:           metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	calc, err := streak.NewCalculator(streak.WithMaxSkipDays(s.maxSkipDays))
	if err != nil {
		return nil, fmt.Errorf("streak calculator: %w", err)
	}
	agg, err := heatmap.NewAggregator(heatmap.WithWindowDays(s.heatmapWindowDays))
	if err != nil {
		return nil, fmt.Errorf("heatmap aggregator: %w", err)
	}
	s.calculator = calc
	s.aggregator = agg
	s.startedAt = s.clock()

	ctx := context.Background()
	if ids := s.catalog.NonMonotonic(); len(ids) > 0 {
		s.logger.Warn(ctx, "badge catalog watches metrics that can decrease; these badges may be revoked",
			logger.String("badges", strings.Join(ids, ",")),
		)
	}
	s.metrics.UpdateWorkerCount(s.workerCount)
	s.metrics.UpdateCatalog(s.catalog.Len(), len(s.catalog.NonMonotonic()))
	s.logger.Info(ctx, "progress service ready",
		logger.Int("max_skip_days", s.maxSkipDays),
		logger.Int("heatmap_window_days", s.heatmapWindowDays),
		logger.Int("workers", s.workerCount),
		logger.Int("badges", s.catalog.Len()),
		logger.String("location", s.location.String()),
	)
	return s, nil
}

// Catalog returns the active badge catalog.
func (s *Service) Catalog() badge.Catalog {
	return s.catalog
}

// Today returns the current calendar date in the service location.
func (s *Service) Today() model.Date {
	return model.DateOf(s.clock().In(s.location))
}

// Summarize computes the streak, badges, next milestones and heatmap of one
// subject. Every event must carry a known category.
func (s *Service) Summarize(ctx context.Context, req Request) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	start := time.Now()

	for i, e := range req.Events {
		if err := e.Validate(); err != nil {
			s.metrics.RecordInvalidArgument("category")
			s.metrics.RecordComputation(metrics.ComponentSummary, false, sinceMs(start))
			return Summary{}, fmt.Errorf("event %d: %w", i, err)
		}
	}

	ref := s.Today()
	if req.ReferenceDate != nil {
		ref = *req.ReferenceDate
	}
	dates := dateset.FromEvents(req.Events)

	stepStart := time.Now()
	res := s.calculator.Compute(dates, ref)
	s.metrics.RecordComputation(metrics.ComponentStreak, true, sinceMs(stepStart))

	sum := Summary{
		SubjectID:     req.SubjectID,
		ReferenceDate: ref,
		Streak:        res,
		Metrics:       snapshot(res, dates, req.Events),
	}
	if req.IncludeHistory {
		sum.History = s.calculator.Chains(dates)
	}

	stepStart = time.Now()
	sum.Badges = badge.Evaluate(sum.Metrics, s.catalog)
	sum.Next = badge.Next(sum.Metrics, s.catalog)
	s.metrics.RecordComputation(metrics.ComponentBadge, true, sinceMs(stepStart))

	stepStart = time.Now()
	sum.Heatmap = s.aggregator.Compute(req.Events, ref)
	sum.IgnoredEvents = len(req.Events) - sum.Heatmap.TotalActivities
	s.metrics.RecordComputation(metrics.ComponentHeatmap, true, sinceMs(stepStart))

	s.summaries.Add(1)
	s.metrics.RecordComputation(metrics.ComponentSummary, true, sinceMs(start))
	s.metrics.ObserveEventsPerSummary(len(req.Events))
	s.metrics.ObserveCurrentStreak(res.Current)
	s.metrics.RecordBadgesUnlocked(sum.Badges)
	s.metrics.RecordHeatmapIgnored(sum.IgnoredEvents)

	s.logger.Debug(ctx, "summary computed",
		logger.String("subject_id", req.SubjectID),
		logger.String("reference_date", ref.String()),
		logger.Int("events", len(req.Events)),
		logger.Int("current_streak", res.Current),
		logger.Int("longest_streak", res.Longest),
		logger.Int("badges", len(sum.Badges)),
		logger.Duration("took", time.Since(start)),
	)
	return sum, nil
}

// SummarizeBatch summarizes every request with at most WorkerCount running at
// once. Results keep the input order. The first failure cancels the rest and
// is returned.
func (s *Service) SummarizeBatch(ctx context.Context, reqs []Request) ([]Summary, error) {
	s.metrics.ObserveBatchSize(len(reqs))
	s.metrics.BatchStarted()
	defer s.metrics.BatchFinished()

	out := make([]Summary, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i := range reqs {
		g.Go(func() error {
			sum, err := s.Summarize(gctx, reqs[i])
			if err != nil {
				return fmt.Errorf("request %d (subject %q): %w", i, reqs[i].SubjectID, err)
			}
			out[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn(ctx, "batch failed",
			logger.Int("size", len(reqs)),
			logger.Error(err),
		)
		return nil, err
	}
	s.batches.Add(1)
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"maxSkipDays":       s.maxSkipDays,
		"heatmapWindowDays": s.heatmapWindowDays,
		"workerCount":       s.workerCount,
		"catalogSize":       s.catalog.Len(),
		"location":          s.location.String(),
		"summaries":         s.summaries.Load(),
		"batches":           s.batches.Load(),
		"uptimeSeconds":     int64(s.clock().Sub(s.startedAt).Seconds()),
	}
}

// snapshot derives the badge metrics. Every category gets a counter, so a
// category badge with no events yet still shows up as a milestone.
func snapshot(res streak.Result, dates dateset.Set, events []model.ActivityEvent) badge.Metrics {
	m := badge.Metrics{
		badge.MetricLongestStreak:   res.Longest,
		badge.MetricCurrentStreak:   res.Current,
		badge.MetricActiveDays:      dates.Len(),
		badge.MetricTotalActivities: len(events),
	}
	for _, c := range model.Categories() {
		m[badge.CategoryCount(c)] = 0
	}
	for _, e := range events {
		m[badge.CategoryCount(e.Category)]++
	}
	return m
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}
