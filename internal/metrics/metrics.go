package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the panel's Prometheus metrics
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ExportsTotal     prometheus.Counter
	ExportRowsTotal  prometheus.Counter
	ImportsTotal     prometheus.Counter
	ImportStatements *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// New creates and registers the panel metrics. Registration happens once;
// later calls return the same instance.
func New() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "steam_test_panel_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "steam_test_panel_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),
			ExportsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "steam_test_panel_exports_total",
					Help: "Total number of export scripts generated",
				},
			),
			ExportRowsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "steam_test_panel_export_rows_total",
					Help: "Total number of rows written to export scripts",
				},
			),
			ImportsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "steam_test_panel_imports_total",
					Help: "Total number of import runs",
				},
			),
			ImportStatements: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "steam_test_panel_import_statements_total",
					Help: "Import statements by outcome",
				},
				[]string{"outcome"},
			),
		}
	})
	return sharedMetrics
}
