package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Match activity
	matchesCreated prometheus.Counter
	pointsAdded    *prometheus.CounterVec
	lockChanges    *prometheus.CounterVec
	rejectedEdits  *prometheus.CounterVec
	totalMatches   prometheus.Gauge

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Persistence
	saves            prometheus.Counter
	saveErrors       prometheus.Counter
	saveLatency      prometheus.Histogram
	loads            prometheus.Counter
	loadedMatches    prometheus.Gauge
	loadSkippedLines prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served by /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoreboard",
		subsystem:        "matches",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.matchesCreated = auto.NewCounter(m.counterOpts("created_total", "Total number of matches created"))
	m.pointsAdded = auto.NewCounterVec(
		m.counterOpts("points_added_total", "Total points added, by team side"),
		[]string{"team"},
	)
	m.lockChanges = auto.NewCounterVec(
		m.counterOpts("lock_changes_total", "Lock state assignments, by resulting state"),
		[]string{"state"},
	)
	m.rejectedEdits = auto.NewCounterVec(
		m.counterOpts("rejected_edits_total", "Rejected create or score operations, by reason"),
		[]string{"reason"},
	)
	m.totalMatches = auto.NewGauge(m.gaugeOpts("total", "Number of matches held in the store"))

	m.repositoryUpdateLatency = auto.NewHistogram(m.histogramOpts(
		"repository_update_latency_milliseconds",
		"Latency of store mutations in milliseconds",
		[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts(
		"repository_query_latency_milliseconds",
		"Latency of store reads in milliseconds",
		[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	))

	m.saves = auto.NewCounter(m.counterOpts("saves_total", "Successful saves of the data file"))
	m.saveErrors = auto.NewCounter(m.counterOpts("save_errors_total", "Failed saves of the data file"))
	m.saveLatency = auto.NewHistogram(m.histogramOpts(
		"save_latency_milliseconds",
		"Time to write and replace the data file in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250},
	))
	m.loads = auto.NewCounter(m.counterOpts("loads_total", "Loads of the data file"))
	m.loadedMatches = auto.NewGauge(m.gaugeOpts("loaded", "Matches restored by the most recent load"))
	m.loadSkippedLines = auto.NewCounter(m.counterOpts("load_skipped_lines_total", "Malformed data file lines skipped on load"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// RecordMatchCreated increments the created matches counter.
func RecordMatchCreated() {
	globalManager.matchesCreated.Inc()
}

// RecordPointsAdded adds points to the per-team counter.
func RecordPointsAdded(team string, points int) {
	globalManager.pointsAdded.WithLabelValues(team).Add(float64(points))
}

// RecordLockChange counts a lock assignment to state.
func RecordLockChange(state string) {
	globalManager.lockChanges.WithLabelValues(state).Inc()
}

// RecordRejectedEdit counts a rejected operation.
func RecordRejectedEdit(reason string) {
	globalManager.rejectedEdits.WithLabelValues(reason).Inc()
}

// UpdateTotalMatches sets the number of matches in the store.
func UpdateTotalMatches(count int) {
	globalManager.totalMatches.Set(float64(count))
}

// RecordRepositoryUpdateLatency records store mutation latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records store read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordSave increments the successful saves counter.
func RecordSave() {
	globalManager.saves.Inc()
}

// RecordSaveError increments the failed saves counter.
func RecordSaveError() {
	globalManager.saveErrors.Inc()
}

// RecordSaveLatency records how long a save took.
func RecordSaveLatency(latencyMs float64) {
	globalManager.saveLatency.Observe(latencyMs)
}

// RecordLoad counts a load and the number of matches it restored.
func RecordLoad(loaded int) {
	globalManager.loads.Inc()
	globalManager.loadedMatches.Set(float64(loaded))
}

// RecordLoadSkippedLine counts a malformed line dropped on load.
func RecordLoadSkippedLine() {
	globalManager.loadSkippedLines.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
