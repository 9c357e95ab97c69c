package sampler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/learnstreak/internal/domain/model"
	"github.com/okian/learnstreak/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrViolations is returned by Run when any summary failed a check.
var ErrViolations = errors.New("summary violations found")

// Run executes a complete sampling run.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting learnstreak sampling run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("subjects", cfg.Subjects),
		logger.Int("days", cfg.Days),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	ref, err := referenceDate(cfg.Reference)
	if err != nil {
		return stats, err
	}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health and read its forgiveness window
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	var serverStats map[string]any
	if err := client.getJSON(ctx, "/stats", &serverStats); err != nil {
		return stats, fmt.Errorf("stats retrieval failed: %w", err)
	}
	skip, ok := serverStats["maxSkipDays"].(float64)
	if !ok {
		return stats, errors.New("stats response has no maxSkipDays")
	}

	// Step 2: Generate histories
	histories, err := generateHistories(ctx, cfg, ref, stats)
	if err != nil {
		return stats, fmt.Errorf("history generation failed: %w", err)
	}
	if cfg.OutputFile != "" {
		if err := saveHistories(cfg.OutputFile, histories); err != nil {
			log.Warn(ctx, "failed to save histories", logger.Error(err))
		}
	}

	// Step 3: Submit in batches
	summaries, err := submitHistories(ctx, cfg, client, histories, stats)
	if err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}

	// Step 4: Verify
	violations, err := verifySummaries(ctx, cfg, int(skip), histories, summaries, stats)
	if err != nil {
		return stats, fmt.Errorf("verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	switch {
	case len(violations) > 0:
		return stats, fmt.Errorf("%w: %d, first: %s", ErrViolations, len(violations), violations[0])
	case stats.BatchesFailed > 0:
		return stats, fmt.Errorf("%d of %d batches failed", stats.BatchesFailed, stats.BatchesSent)
	}
	log.Info(ctx, "sampling run completed successfully")
	return stats, nil
}

func referenceDate(s string) (model.Date, error) {
	if s == "" {
		return model.DateOf(time.Now().UTC()), nil
	}
	return model.ParseDate(s)
}

// saveHistories writes the generated histories as a JSON array.
func saveHistories(filename string, histories []History) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(histories, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal histories: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var subjectsPerSecond float64
	if stats.Duration > 0 {
		subjectsPerSecond = float64(stats.SummariesChecked) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("subjectsGenerated", stats.SubjectsGenerated),
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("batchesSent", stats.BatchesSent),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("summariesChecked", stats.SummariesChecked),
		logger.Int("violations", stats.Violations),
		logger.Duration("duration", stats.Duration),
		logger.Float64("subjectsPerSecond", subjectsPerSecond),
	)
}
