package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered with the default registry through promauto

var (
	// ==================== HTTP METRICS ====================

	// HTTPRequestDuration tracks the duration of HTTP requests
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsTotal counts total HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsInFlight tracks currently processing requests
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ==================== REDIRECT METRICS ====================

	// RedirectPagesTotal counts rendered redirect documents
	RedirectPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redirect_pages_rendered_total",
			Help: "Total number of redirect documents rendered",
		},
	)

	// RedirectFallthroughsTotal counts alias lookups that fell through to default content
	RedirectFallthroughsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redirect_fallthroughs_total",
			Help: "Total number of alias requests that fell through to default content",
		},
	)

	// AliasesCreatedTotal counts aliases created through the admin form
	AliasesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aliases_created_total",
			Help: "Total number of redirect aliases created",
		},
	)

	// AliasesDeletedTotal counts aliases deleted from the admin list
	AliasesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aliases_deleted_total",
			Help: "Total number of redirect aliases deleted",
		},
	)

	// ==================== ANALYTICS SETTINGS METRICS ====================

	// AnalyticsSettingsSavedTotal counts successful settings saves
	AnalyticsSettingsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_settings_saved_total",
			Help: "Total number of analytics settings saves",
		},
	)

	// AnalyticsProviderActive is 1 when a provider's snippet is rendered
	AnalyticsProviderActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "analytics_provider_active",
			Help: "Whether an analytics provider snippet is rendered (1) or skipped (0)",
		},
		[]string{"provider"},
	)

	// SettingsStoreDuration tracks settings store latency for non-SQL backends
	SettingsStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settings_store_operation_duration_seconds",
			Help:    "Duration of settings store operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"backend", "operation"},
	)

	// ==================== DATABASE METRICS ====================

	// DatabaseQueryDuration tracks database query latency
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// DatabaseErrorsTotal counts database errors
	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"operation"},
	)
)

// RecordRedirectPage increments the rendered redirect counter
func RecordRedirectPage() {
	RedirectPagesTotal.Inc()
}

// RecordFallthrough increments the fall-through counter
func RecordFallthrough() {
	RedirectFallthroughsTotal.Inc()
}

// RecordAliasCreated increments the alias creation counter
func RecordAliasCreated() {
	AliasesCreatedTotal.Inc()
}

// RecordAliasDeleted increments the alias deletion counter
func RecordAliasDeleted() {
	AliasesDeletedTotal.Inc()
}

// RecordSettingsSaved increments the settings save counter
func RecordSettingsSaved() {
	AnalyticsSettingsSavedTotal.Inc()
}

// SetProviderActive publishes whether a provider is currently rendered
func SetProviderActive(provider string, active bool) {
	v := 0.0
	if active {
		v = 1
	}
	AnalyticsProviderActive.WithLabelValues(provider).Set(v)
}
