package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion scheduler

var (
	// Tick metrics
	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_ticks_total",
			Help: "Total number of scheduler ticks executed",
		},
		[]string{"season_id", "status"},
	)

	TickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_tick_duration_seconds",
			Help:    "Duration of a scheduler tick in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"season_id"},
	)

	MatchesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_matches_fetched_total",
			Help: "Total number of matches fetched from upstream",
		},
		[]string{"season_id"},
	)

	MatchesNewTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_matches_new_total",
			Help: "Total number of newly persisted matches",
		},
		[]string{"season_id"},
	)

	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_active_jobs",
			Help: "Number of season jobs currently registered with the manager",
		},
	)

	// Upstream call metrics
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_upstream_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"endpoint", "kind"},
	)

	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_upstream_call_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_club_cache_hits_total",
			Help: "Total number of club external-id cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_club_cache_misses_total",
			Help: "Total number of club external-id cache misses",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_errors_total",
			Help: "Total number of errors by component and kind",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_system_uptime_seconds",
			Help: "Worker process uptime in seconds",
		},
	)
)

// RecordTick records a completed tick.
func RecordTick(seasonID, status string, duration float64) {
	TicksTotal.WithLabelValues(seasonID, status).Inc()
	TickDuration.WithLabelValues(seasonID).Observe(duration)
}

// RecordMatches records a tick's fetched/new match counters.
func RecordMatches(seasonID string, fetched, new int) {
	MatchesFetchedTotal.WithLabelValues(seasonID).Add(float64(fetched))
	MatchesNewTotal.WithLabelValues(seasonID).Add(float64(new))
}

// RecordUpstreamCall records one upstream API call outcome.
func RecordUpstreamCall(endpoint, kind string, duration float64) {
	UpstreamCallsTotal.WithLabelValues(endpoint, kind).Inc()
	UpstreamCallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query outcome.
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordCacheHit records a club cache hit.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a club cache miss.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordError records an error occurrence.
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// SetActiveJobs updates the count of currently registered season jobs.
func SetActiveJobs(count int) {
	ActiveJobs.Set(float64(count))
}
