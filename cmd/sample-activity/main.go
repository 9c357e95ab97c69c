package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/learnstreak/internal/sampler"
	"github.com/okian/learnstreak/pkg/logger"
)

// Default configuration constants.
const (
	defaultSubjects  = 1000
	defaultDays      = 120
	defaultBatchSize = 50
	defaultTimeout   = 30 * time.Second
	defaultRunLimit  = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		subjects  = flag.Int("subjects", defaultSubjects, "Number of synthetic learners")
		days      = flag.Int("days", defaultDays, "Days of history per learner")
		reference = flag.String("reference", "", "Reference date YYYY-MM-DD (default: today, UTC)")
		batch     = flag.Int("batch", defaultBatchSize, "Learners per batch request")
		workers   = flag.Int("workers", runtime.NumCPU(), "Concurrent batch requests")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed      = flag.Int64("seed", 1, "Generator seed")
		output    = flag.String("output", "", "Write generated histories to this JSON file")
		format    = flag.String("format", "text", "Log format: text or json")
		verbose   = flag.Bool("verbose", false, "Log every violation")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampler.ShowHelp()
		return
	}

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunLimit)
	defer cancel()

	cfg := &sampler.Config{
		BaseURL:    *baseURL,
		Subjects:   max(*subjects, 1),
		Days:       max(*days, 1),
		Reference:  *reference,
		BatchSize:  max(*batch, 1),
		Workers:    max(*workers, 1),
		Timeout:    *timeout,
		Seed:       *seed,
		OutputFile: *output,
		Verbose:    *verbose,
	}

	if _, err := sampler.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "sampling run failed", logger.Error(err))
		os.Exit(1)
	}
}
