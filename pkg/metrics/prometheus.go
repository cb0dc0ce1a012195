// Package metrics provides Prometheus metrics for the sleeplab pipeline and dashboard.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every sleeplab metric and the registry they live in.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Pipeline
	recordsRead      prometheus.Counter
	recordsFiltered  prometheus.Counter
	duplicateDays    prometheus.Counter
	rowsEmitted      prometheus.Gauge
	missingCells     *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	snapshotWrites   *prometheus.CounterVec
	pipelineFailures *prometheus.CounterVec
	lastRunUnix      prometheus.Gauge

	// Analysis
	correlation *prometheus.GaugeVec

	// Fetch
	fetchDuration prometheus.Histogram
	fetchErrors   prometheus.Counter

	// Dashboard
	datasetReloads      *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

var globalManager = NewManager(WithPrometheusRegistry(customRegistry)) //nolint:gochecknoglobals // singleton metrics manager

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sleeplab",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.recordsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_read_total",
		Help:      "Raw night records decoded from the input document",
	})

	m.recordsFiltered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_filtered_total",
		Help:      "Raw records dropped for not exceeding the minimum time in bed",
	})

	m.duplicateDays = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_days_total",
		Help:      "Qualifying records dropped because another record owns the same day",
	})

	m.rowsEmitted = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows",
		Help:      "Rows in the most recently built dataset",
	})

	m.missingCells = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "missing_cells_total",
			Help:      "Dataset cells without a measurement, by column",
		},
		[]string{"column"},
	)

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_duration_milliseconds",
			Help:      "Duration of pipeline stages in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.snapshotWrites = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "snapshot_writes_total",
			Help:      "Snapshot files written, by kind",
		},
		[]string{"kind"},
	)

	m.pipelineFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "failures_total",
			Help:      "Aborted pipeline runs, by stage",
		},
		[]string{"stage"},
	)

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_success_unix",
		Help:      "Unix timestamp of the last successful pipeline run",
	})

	m.correlation = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: "analysis",
			Name:      "correlation_coefficient",
			Help:      "Pearson coefficient of a candidate column against a reference column",
		},
		[]string{"reference", "column"},
	)

	m.fetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "duration_milliseconds",
		Help:      "Vendor API fetch duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "errors_total",
		Help:      "Failed vendor API fetches",
	})

	m.datasetReloads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "dashboard",
			Name:      "dataset_reloads_total",
			Help:      "Dataset reloads triggered by raw file changes, by result",
		},
		[]string{"result"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "dashboard",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "dashboard",
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Registry returns the registry the manager's metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Pipeline metrics.

// RecordRecordsRead adds n decoded raw records.
func RecordRecordsRead(n int) {
	globalManager.recordsRead.Add(float64(n))
}

// RecordRecordsFiltered adds n records dropped by the time-in-bed filter.
func RecordRecordsFiltered(n int) {
	globalManager.recordsFiltered.Add(float64(n))
}

// RecordDuplicateDay increments the duplicate day counter.
func RecordDuplicateDay() {
	globalManager.duplicateDays.Inc()
}

// UpdateRows sets the number of rows in the latest dataset.
func UpdateRows(n int) {
	globalManager.rowsEmitted.Set(float64(n))
}

// RecordMissingCells adds n missing cells for column.
func RecordMissingCells(column string, n int) {
	if n > 0 {
		globalManager.missingCells.WithLabelValues(column).Add(float64(n))
	}
}

// RecordStageDuration records how long a pipeline stage took.
func RecordStageDuration(stage string, latencyMs float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(latencyMs)
}

// RecordSnapshotWrite increments the snapshot counter for kind.
func RecordSnapshotWrite(kind string) {
	globalManager.snapshotWrites.WithLabelValues(kind).Inc()
}

// RecordPipelineFailure increments the failure counter for stage.
func RecordPipelineFailure(stage string) {
	globalManager.pipelineFailures.WithLabelValues(stage).Inc()
}

// UpdateLastSuccess sets the last successful run timestamp.
func UpdateLastSuccess(unix int64) {
	globalManager.lastRunUnix.Set(float64(unix))
}

// Analysis metrics.

// UpdateCorrelation publishes a coefficient for reference/column.
func UpdateCorrelation(reference, column string, r float64) {
	globalManager.correlation.WithLabelValues(reference, column).Set(r)
}

// Fetch metrics.

// RecordFetchDuration records vendor API latency in milliseconds.
func RecordFetchDuration(latencyMs float64) {
	globalManager.fetchDuration.Observe(latencyMs)
}

// RecordFetchError increments the fetch error counter.
func RecordFetchError() {
	globalManager.fetchErrors.Inc()
}

// Dashboard metrics.

// RecordDatasetReload counts a reload attempt with result "ok" or "error".
func RecordDatasetReload(result string) {
	globalManager.datasetReloads.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current metric values in the Prometheus text
// format, for pickup by the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}
