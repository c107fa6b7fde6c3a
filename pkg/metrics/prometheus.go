// Package metrics provides Prometheus metrics for the fastbreak
// league service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Roster metrics
	acquisitions *prometheus.CounterVec

	// Matchday metrics
	advances        *prometheus.CounterVec
	advanceDuration prometheus.Histogram
	teamsScored     prometheus.Counter
	currentMatchday prometheus.Gauge

	// Ledger metrics
	ledgerEntries      prometheus.Counter
	leaderboardQueries prometheus.Counter

	// Store metrics
	storeConflicts prometheus.Counter
	storeRetries   prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Operational gauges
	totalTeams prometheus.Gauge

	// System metrics
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
		namespace:        "fastbreak",
		subsystem:        "league",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.acquisitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "acquisitions_total",
			Help:      "Total player acquisitions by outcome",
		},
		[]string{"outcome"},
	)

	m.advances = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "matchday_advances_total",
			Help:      "Total matchday advance attempts by outcome",
		},
		[]string{"outcome"},
	)

	m.advanceDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchday_advance_duration_milliseconds",
		Help:      "Histogram of full matchday advance duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.teamsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_scored_total",
		Help:      "Total per-team matchday awards committed",
	})

	m.currentMatchday = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "current_matchday",
		Help:      "Next matchday to be processed",
	})

	m.ledgerEntries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_entries_total",
		Help:      "Total ledger entries appended",
	})

	m.leaderboardQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_queries_total",
		Help:      "Total leaderboard projections computed",
	})

	m.storeConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_conflicts_total",
		Help:      "Total optimistic-concurrency conflicts reported by the store",
	})

	m.storeRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_retries_total",
		Help:      "Total bounded retries after store conflicts",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by endpoint, method, and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.totalTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_teams",
		Help:      "Total number of registered teams",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average garbage collection pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// RecordAcquisition increments the acquisition counter for an outcome.
func RecordAcquisition(outcome string) {
	globalManager.acquisitions.WithLabelValues(outcome).Inc()
}

// RecordAdvance increments the matchday advance counter for an outcome.
func RecordAdvance(outcome string) {
	globalManager.advances.WithLabelValues(outcome).Inc()
}

// RecordAdvanceDuration records a full advance duration in milliseconds.
func RecordAdvanceDuration(ms float64) {
	globalManager.advanceDuration.Observe(ms)
}

// RecordTeamScored increments the per-team award counter.
func RecordTeamScored() {
	globalManager.teamsScored.Inc()
}

// UpdateCurrentMatchday sets the matchday gauge.
func UpdateCurrentMatchday(day int) {
	globalManager.currentMatchday.Set(float64(day))
}

// RecordLedgerEntry increments the ledger entry counter.
func RecordLedgerEntry() {
	globalManager.ledgerEntries.Inc()
}

// RecordLeaderboardQuery increments the leaderboard query counter.
func RecordLeaderboardQuery() {
	globalManager.leaderboardQueries.Inc()
}

// RecordStoreConflict increments the store conflict counter.
func RecordStoreConflict() {
	globalManager.storeConflicts.Inc()
}

// RecordStoreRetry increments the store retry counter.
func RecordStoreRetry() {
	globalManager.storeRetries.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateTotalTeams sets the registered team gauge.
func UpdateTotalTeams(count int) {
	globalManager.totalTeams.Set(float64(count))
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}

// GetRegistry returns the custom registry for the /healthz exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
