// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/learnstreak/internal/adapters/http/swagger"
	service "github.com/okian/learnstreak/internal/app"
	"github.com/okian/learnstreak/internal/domain/badge"
	"github.com/okian/learnstreak/pkg/logger"
	"github.com/okian/learnstreak/pkg/metrics"
)

// Default limits, overridable with options.
const (
	defaultMaxEvents      = 50_000
	defaultMaxBatchSize   = 500
	defaultMaxBodyBytes   = 32 << 20
	defaultRequestTimeout = 5 * time.Second
)

// Dependencies required by HTTP handlers. Using an interface keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	Summarize(ctx context.Context, req service.Request) (service.Summary, error)
	SummarizeBatch(ctx context.Context, reqs []service.Request) ([]service.Summary, error)
	Catalog() badge.Catalog
}

// Server wires HTTP routes for the progress API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	progressHandler *ProgressHandler
	badgesHandler   *BadgesHandler

	requestTimeout time.Duration
	logger         logger.Logger
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxEvents      int
	maxBatchSize   int
	maxBodyBytes   int64
	requestTimeout time.Duration
	logger         logger.Logger
}

// WithMaxEvents caps the events accepted for a single subject.
func WithMaxEvents(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxEvents = n
		}
	}
}

// WithMaxBatchSize caps the number of subjects in one batch.
func WithMaxBatchSize(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBatchSize = n
		}
	}
}

// WithMaxBodyBytes caps the raw request body.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithRequestTimeout bounds every request.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.requestTimeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{
		maxEvents:      defaultMaxEvents,
		maxBatchSize:   defaultMaxBatchSize,
		maxBodyBytes:   defaultMaxBodyBytes,
		requestTimeout: defaultRequestTimeout,
		logger:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		progressHandler: NewProgressHandler(deps, o.maxEvents, o.maxBatchSize, o.maxBodyBytes),
		badgesHandler:   NewBadgesHandler(deps),
		requestTimeout:  o.requestTimeout,
		logger:          o.logger,
	}
}

// Routes returns the chi router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(EnsureRequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	swagger.Register(r)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/progress", MetricsMiddleware(s.progressHandler.HandleSummary, "progress"))
		r.Post("/progress/batch", MetricsMiddleware(s.progressHandler.HandleBatch, "progress_batch"))
		r.Get("/badges", MetricsMiddleware(s.badgesHandler.HandleList, "badges"))
	})
	return r
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil && status != http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
