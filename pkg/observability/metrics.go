// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for directory builds and resolution runs.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the resolution engine.
type Metrics struct {
	// Directory metrics
	DirectorySize prometheus.Gauge
	BuildSeconds  prometheus.Histogram

	// Resolution metrics
	ResolutionsTotal     *prometheus.CounterVec
	NeedsResolutionTotal prometheus.Counter
	ResolveSeconds       prometheus.Histogram
	CoveragePercent      prometheus.Gauge
}

// DefaultMetrics creates metrics on the default registerer.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates a new set of resolution metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DirectorySize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orgmatch_directory_size",
				Help: "Canonical identities in the last built directory",
			},
		),
		BuildSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orgmatch_directory_build_seconds",
				Help:    "Directory build duration",
				Buckets: prometheus.DefBuckets,
			},
		),
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orgmatch_resolutions_total",
				Help: "Auto-matched identities by resolution method",
			},
			[]string{"method"},
		),
		NeedsResolutionTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orgmatch_needs_resolution_total",
				Help: "Identities routed to manual review",
			},
		),
		ResolveSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orgmatch_resolve_seconds",
				Help:    "Resolution run duration",
				Buckets: prometheus.DefBuckets,
			},
		),
		CoveragePercent: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orgmatch_coverage_percent",
				Help: "Auto-match coverage of the last resolution run",
			},
		),
	}
}
