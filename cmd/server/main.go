package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/learnstreak/internal/adapters/http/api"
	app "github.com/okian/learnstreak/internal/app"
	"github.com/okian/learnstreak/internal/config"
	"github.com/okian/learnstreak/pkg/logger"
	"github.com/okian/learnstreak/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	bodyBytesPerEvent = 96
	maxBodyBytes      = 256 << 20
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not configured yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	handler, err := buildHandler(cfg, log)
	if err != nil {
		log.Fatal(ctx, "failed to build service", logger.Error(err))
	}

	go metrics.Default().RunSystemCollector(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}

// buildHandler wires the service and the HTTP API from cfg.
func buildHandler(cfg *config.Config, log logger.Logger) (http.Handler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	svc, err := app.New(
		app.WithLogger(log.Named("service")),
		app.WithMaxSkipDays(cfg.MaxSkipDays),
		app.WithHeatmapWindowDays(cfg.HeatmapWindowDays),
		app.WithCatalog(catalog),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithLocation(loc),
	)
	if err != nil {
		return nil, err
	}

	maxBody := min(int64(cfg.MaxEventsPerRequest)*int64(cfg.MaxBatchSize)*bodyBytesPerEvent, maxBodyBytes)
	server := api.NewServer(svc,
		api.WithLogger(log.Named("http")),
		api.WithMaxEvents(cfg.MaxEventsPerRequest),
		api.WithMaxBatchSize(cfg.MaxBatchSize),
		api.WithMaxBodyBytes(maxBody),
		api.WithRequestTimeout(cfg.RequestTimeout()),
	)
	return server.Routes(), nil
}
