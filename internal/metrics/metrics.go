package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Provider lookup metrics
	LookupsTotal    *prometheus.CounterVec
	LookupsInFlight prometheus.Gauge
	ProviderLatency *prometheus.HistogramVec
	BatchDuration   *prometheus.HistogramVec
	IneligibleTotal prometheus.Counter

	// Ignore store metrics
	IgnoreStoreQueriesTotal *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics on the given registerer
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrich_lookups_total",
				Help: "Total number of provider lookups by outcome",
			},
			[]string{"outcome"},
		),

		LookupsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "enrich_lookups_inflight",
				Help: "Number of provider requests currently in flight",
			},
		),

		ProviderLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "enrich_provider_request_duration_seconds",
				Help:    "Provider request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),

		BatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "enrich_batch_duration_seconds",
				Help:    "Duration of a whole batch lookup in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),

		IneligibleTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "enrich_ineligible_total",
				Help: "Total number of identifiers dropped by the eligibility filter",
			},
		),

		IgnoreStoreQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrich_ignore_store_queries_total",
				Help: "Total number of ignore list loads by backend and status",
			},
			[]string{"datastore", "status"},
		),
	}
}
