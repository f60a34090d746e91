package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the Prometheus metrics exported on /metrics.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	UpstreamRequestsTotal *prometheus.CounterVec
	TableRecords          *prometheus.GaugeVec
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initHTTPMetrics()
	r.initTableMetrics()
	return r
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "wdtable_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wdtable_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "wdtable_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initTableMetrics() {
	r.UpstreamRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "wdtable_upstream_requests_total",
			Help: "Total number of Wikidata lookups",
		},
		[]string{"endpoint", "cache"}, // api|sparql, hit|miss
	)

	r.TableRecords = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wdtable_table_records",
			Help: "Records in the most recently built table",
		},
		[]string{"table", "state"}, // elements|nuclides, placed|incomplete|duplicate
	)
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpstream counts a Wikidata lookup.
func (r *Registry) RecordUpstream(endpoint string, cached bool) {
	cache := "miss"
	if cached {
		cache = "hit"
	}
	r.UpstreamRequestsTotal.WithLabelValues(endpoint, cache).Inc()
}

// RecordTable sets the record gauges of a freshly built table.
func (r *Registry) RecordTable(table string, placed, incomplete, duplicates int) {
	r.TableRecords.WithLabelValues(table, "placed").Set(float64(placed))
	r.TableRecords.WithLabelValues(table, "incomplete").Set(float64(incomplete))
	r.TableRecords.WithLabelValues(table, "duplicate").Set(float64(duplicates))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
