package metrics

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Components reported by RecordComputation.
const (
	ComponentStreak  = "streak"
	ComponentBadge   = "badge"
	ComponentHeatmap = "heatmap"
	ComponentSummary = "summary"
)

// Manager manages all Prometheus metrics for the learnstreak engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Engine metrics
	computations       *prometheus.CounterVec
	computationLatency *prometheus.HistogramVec
	invalidArguments   *prometheus.CounterVec
	badgesUnlocked     *prometheus.CounterVec
	currentStreak      prometheus.Histogram
	heatmapIgnored     prometheus.Counter
	eventsPerSummary   prometheus.Histogram
	batchSize          prometheus.Histogram
	batchesInFlight    prometheus.Gauge
	workerCount        prometheus.Gauge
	catalogSize        prometheus.Gauge
	nonMonotonicBadges prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "learnstreak",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.computations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("computations_total"),
			Help:        "Total number of computations by component and outcome",
			ConstLabels: labels,
		},
		[]string{"component", "outcome"},
	)

	m.computationLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("computation_latency_milliseconds"),
			Help:        "Computation latency in milliseconds by component",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"component"},
	)

	m.invalidArguments = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("invalid_arguments_total"),
			Help:        "Total number of rejected inputs by reason",
			ConstLabels: labels,
		},
		[]string{"reason"},
	)

	m.badgesUnlocked = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("badges_unlocked_total"),
			Help:        "Total number of badge unlocks reported in summaries",
			ConstLabels: labels,
		},
		[]string{"badge"},
	)

	m.currentStreak = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("current_streak_days"),
		Help:        "Distribution of current streak lengths in days",
		Buckets:     []float64{0, 1, 3, 7, 14, 30, 60, 100, 365},
		ConstLabels: labels,
	})

	m.heatmapIgnored = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("heatmap_ignored_events_total"),
		Help:        "Total number of events that fell outside the heatmap window",
		ConstLabels: labels,
	})

	m.eventsPerSummary = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("events_per_summary"),
		Help:        "Number of activity events per summary request",
		Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		ConstLabels: labels,
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("summary_batch_size"),
		Help:        "Number of summaries per batch request",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		ConstLabels: labels,
	})

	m.batchesInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("batches_in_flight"),
		Help:        "Number of summary batches currently being computed",
		ConstLabels: labels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_count"),
		Help:        "Configured batch concurrency",
		ConstLabels: labels,
	})

	m.catalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("badge_catalog_size"),
		Help:        "Number of badge definitions in the active catalog",
		ConstLabels: labels,
	})

	m.nonMonotonicBadges = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("badge_catalog_non_monotonic"),
		Help:        "Number of badge definitions watching a metric that can decrease",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "Heap memory in use in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordComputation counts one computation and observes its latency.
func (m *Manager) RecordComputation(component string, ok bool, latencyMs float64) {
	if !m.enabled {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.computations.WithLabelValues(component, outcome).Inc()
	m.computationLatency.WithLabelValues(component).Observe(latencyMs)
}

// RecordInvalidArgument counts a rejected input.
func (m *Manager) RecordInvalidArgument(reason string) {
	if !m.enabled {
		return
	}
	m.invalidArguments.WithLabelValues(reason).Inc()
}

// RecordBadgesUnlocked counts every id in ids once.
func (m *Manager) RecordBadgesUnlocked(ids []string) {
	if !m.enabled {
		return
	}
	for _, id := range ids {
		m.badgesUnlocked.WithLabelValues(id).Inc()
	}
}

// ObserveCurrentStreak records a current streak length.
func (m *Manager) ObserveCurrentStreak(days int) {
	if !m.enabled {
		return
	}
	m.currentStreak.Observe(float64(days))
}

// RecordHeatmapIgnored adds n out-of-window events.
func (m *Manager) RecordHeatmapIgnored(n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.heatmapIgnored.Add(float64(n))
}

// ObserveEventsPerSummary records the size of one summary input.
func (m *Manager) ObserveEventsPerSummary(n int) {
	if !m.enabled {
		return
	}
	m.eventsPerSummary.Observe(float64(n))
}

// ObserveBatchSize records the size of one batch.
func (m *Manager) ObserveBatchSize(n int) {
	if !m.enabled {
		return
	}
	m.batchSize.Observe(float64(n))
}

// BatchStarted marks a batch as in flight.
func (m *Manager) BatchStarted() {
	if m.enabled {
		m.batchesInFlight.Inc()
	}
}

// BatchFinished undoes BatchStarted.
func (m *Manager) BatchFinished() {
	if m.enabled {
		m.batchesInFlight.Dec()
	}
}

// UpdateWorkerCount sets the configured batch concurrency.
func (m *Manager) UpdateWorkerCount(count int) {
	m.workerCount.Set(float64(count))
}

// UpdateCatalog sets the catalog gauges.
func (m *Manager) UpdateCatalog(size, nonMonotonic int) {
	m.catalogSize.Set(float64(size))
	m.nonMonotonicBadges.Set(float64(nonMonotonic))
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method string, statusCode int, durationMs float64) {
	if !m.enabled {
		return
	}
	code := strconv.Itoa(statusCode)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// CollectSystem samples runtime statistics once.
func (m *Manager) CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapInuse))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		m.systemGCPauseTime.Observe(float64(last) / float64(time.Millisecond))
	}
}

// RunSystemCollector samples runtime statistics every refresh interval
// until ctx is done.
func (m *Manager) RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	m.CollectSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CollectSystem()
		}
	}
}

// Default returns the process-wide manager registered on GetRegistry.
func Default() *Manager {
	return globalManager
}

// RecordComputation records on the global manager.
func RecordComputation(component string, ok bool, latencyMs float64) {
	globalManager.RecordComputation(component, ok, latencyMs)
}

// RecordInvalidArgument records on the global manager.
func RecordInvalidArgument(reason string) {
	globalManager.RecordInvalidArgument(reason)
}

// RecordHTTPRequest records on the global manager.
func RecordHTTPRequest(endpoint, method string, statusCode int, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint records on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
