package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report kinds used as label values.
const (
	KindTree        = "tree"
	KindSummary     = "summary"
	KindAttribution = "attribution"
)

// Metrics holds all Prometheus metrics of the reporting service.
type Metrics struct {
	// Report metrics
	ReportBuilds     *prometheus.CounterVec
	ReportLatency    *prometheus.HistogramVec
	RowsBuilt        *prometheus.CounterVec
	AttributedSales  *prometheus.CounterVec
	AttributedIncome *prometheus.CounterVec

	// Storage metrics
	StorageLatency *prometheus.HistogramVec
	DBConnections  *prometheus.GaugeVec

	// HTTP metrics
	HTTPRequests  *prometheus.CounterVec
	RateLimitHits *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

var (
	// DefaultMetrics is the global metrics instance
	DefaultMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics on reg. A nil reg
// means the default registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer = reg
		gatherer = reg
	}
	factory := promauto.With(registerer)

	m := &Metrics{
		ReportBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_builds_total",
				Help:      "Total number of report builds",
			},
			[]string{"kind", "status"},
		),
		ReportLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_build_seconds",
				Help:      "Report build latency in seconds, storage reads included",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"kind", "status"},
		),
		RowsBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_rows_total",
				Help:      "Rows emitted by tree builds",
			},
			[]string{"type"},
		),
		AttributedSales: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attributed_sales_total",
				Help:      "Sales attributed to ads",
			},
			[]string{"kind"}, // direct, late
		),
		AttributedIncome: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attributed_income_total",
				Help:      "Income attributed to ads",
			},
			[]string{"kind"},
		),

		StorageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_latency_seconds",
				Help:      "Storage read latency",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"operation"},
		),
		DBConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool stats",
			},
			[]string{"state"}, // idle, in_use, total
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"endpoint"},
		),

		gatherer: gatherer,
	}

	DefaultMetrics = m
	return m
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordReportBuild records one report build.
func (m *Metrics) RecordReportBuild(kind string, err error, latency time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ReportBuilds.WithLabelValues(kind, status).Inc()
	m.ReportLatency.WithLabelValues(kind, status).Observe(latency.Seconds())
}

// RecordRows records rows emitted by a tree build, by row type.
func (m *Metrics) RecordRows(rowType string, n int) {
	if n <= 0 {
		return
	}
	m.RowsBuilt.WithLabelValues(rowType).Add(float64(n))
}

// RecordAttribution records attributed sales and income.
func (m *Metrics) RecordAttribution(directCount, lateCount int, directIncome, lateIncome float64) {
	if directCount > 0 {
		m.AttributedSales.WithLabelValues("direct").Add(float64(directCount))
		m.AttributedIncome.WithLabelValues("direct").Add(directIncome)
	}
	if lateCount > 0 {
		m.AttributedSales.WithLabelValues("late").Add(float64(lateCount))
		m.AttributedIncome.WithLabelValues("late").Add(lateIncome)
	}
}

// RecordStorageRead records the latency of one storage read.
func (m *Metrics) RecordStorageRead(operation string, latency time.Duration) {
	m.StorageLatency.WithLabelValues(operation).Observe(latency.Seconds())
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}
