// Package metrics provides Prometheus metrics for the interactions API.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain metrics:
//   - interaction_checks_total: Counter with source label (api, session, cli)
//   - interaction_findings_total: Counter with kind and severity labels
//   - catalog_reloads_total: Counter with result label
//   - catalog_entries: Gauge with kind label (drugs, rules)
//   - sessions_active: Gauge
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/giygas/interactions-api/checker"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	InteractionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_checks_total",
			Help: "Prescription checks performed",
		},
		[]string{"source"},
	)

	InteractionFindingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_findings_total",
			Help: "Findings reported by prescription checks",
		},
		[]string{"kind", "severity"},
	)

	CatalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Catalog reload attempts",
		},
		[]string{"result"},
	)

	CatalogEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_entries",
			Help: "Entries in the current catalog snapshot",
		},
		[]string{"kind"},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Prescription sessions currently held in memory",
		},
	)
)

// Check sources
const (
	SourceAPI     = "api"
	SourceSession = "session"
	SourceCLI     = "cli"
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(InteractionChecksTotal)
	prometheus.MustRegister(InteractionFindingsTotal)
	prometheus.MustRegister(CatalogReloadsTotal)
	prometheus.MustRegister(CatalogEntries)
	prometheus.MustRegister(SessionsActive)
}

// RecordCheck counts one check and its findings
func RecordCheck(source string, findings []checker.Finding) {
	InteractionChecksTotal.WithLabelValues(source).Inc()
	for _, f := range findings {
		InteractionFindingsTotal.WithLabelValues(string(f.Kind), f.Severity.String()).Inc()
	}
}

// RecordCatalog publishes the size of the installed catalog
func RecordCatalog(drugs, rules int) {
	CatalogEntries.WithLabelValues("drugs").Set(float64(drugs))
	CatalogEntries.WithLabelValues("rules").Set(float64(rules))
}
