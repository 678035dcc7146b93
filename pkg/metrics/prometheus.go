// Package metrics provides Prometheus metrics for the Sentinela RDW pipeline.
package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage labels used with RecordStageDuration.
const (
	StageLoad      = "load"
	StageValidate  = "validate"
	StageAggregate = "aggregate"
	StageClassify  = "classify"
	StageAssemble  = "assemble"
)

// Run outcome labels used with RecordRun.
const (
	OutcomeSuccess  = "success"
	OutcomeNoData   = "no_data"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Manager owns every Prometheus collector of the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	filesLoaded     prometheus.Counter
	filesFailed     prometheus.Counter
	recordsLoaded   prometheus.Counter
	recordsAccepted prometheus.Counter
	recordsRejected *prometheus.CounterVec
	duplicates      prometheus.Counter

	// Pipeline
	stageDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	lastRunUnix   prometheus.Gauge

	// Surveillance results of the last run
	groupsTotal  prometheus.Gauge
	alertGroups  prometheus.Gauge
	alertRate    prometheus.Gauge
	examsInGroup prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

// global pairs the process-wide manager with the registry it feeds.
type global struct {
	manager  *Manager
	registry *prometheus.Registry
}

var current atomic.Pointer[global] //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure replaces the process-wide manager with one built from opts on a
// fresh registry, which keeps the default Go collectors out. Call it before
// serving or recording; collectors of the previous manager are dropped.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	opts = append(opts, WithPrometheusRegistry(registry))
	current.Store(&global{manager: NewManager(opts...), registry: registry})
}

func globalManager() *Manager { return current.Load().manager }

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sentinela",
		subsystem:        "rdw",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(base string) string {
	return m.metricPrefix + base
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.filesLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("files_loaded_total"),
		Help: "Total number of record files decoded successfully",
	})
	m.filesFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("files_failed_total"),
		Help: "Total number of record files that could not be read or decoded",
	})
	m.recordsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("records_loaded_total"),
		Help: "Total number of raw exam records handed to validation",
	})
	m.recordsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("records_accepted_total"),
		Help: "Total number of exam records that became observations",
	})
	m.recordsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("records_rejected_total"),
		Help: "Total number of exam records rejected by validation, by reason",
	}, []string{"reason"})
	m.duplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("duplicate_exams_total"),
		Help: "Total number of repeated exams dropped by deduplication",
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("stage_duration_milliseconds"),
		Help:    "Duration of each pipeline stage in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"stage"})
	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("runs_total"),
		Help: "Total number of pipeline runs by outcome",
	}, []string{"outcome"})
	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("last_success_unixtime"),
		Help: "Unix time of the last successful pipeline run",
	})

	m.groupsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("groups"),
		Help: "Number of groups analysed in the last run",
	})
	m.alertGroups = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("alert_groups"),
		Help: "Number of groups flagged as nutritional alert areas in the last run",
	})
	m.alertRate = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("alert_rate_percent"),
		Help: "Share of groups in alert in the last run",
	})
	m.examsInGroup = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("exams"),
		Help: "Number of exams aggregated in the last run",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("http_errors_total"),
		Help: "Total number of HTTP error responses by endpoint and error type",
	}, []string{"endpoint", "method", "error_type"})
}

// Enabled reports whether recording is active for this manager.
func (m *Manager) Enabled() bool { return m.enabled }

// Ingestion

// RecordFileLoaded increments the decoded file counter.
func RecordFileLoaded() {
	m := globalManager()
	if m.enabled {
		m.filesLoaded.Inc()
	}
}

// RecordFileFailed increments the failed file counter.
func RecordFileFailed() {
	m := globalManager()
	if m.enabled {
		m.filesFailed.Inc()
	}
}

// RecordRecordsLoaded adds n raw records to the loaded counter.
func RecordRecordsLoaded(n int) {
	m := globalManager()
	if m.enabled && n > 0 {
		m.recordsLoaded.Add(float64(n))
	}
}

// RecordRecordAccepted increments the accepted record counter.
func RecordRecordAccepted() {
	m := globalManager()
	if m.enabled {
		m.recordsAccepted.Inc()
	}
}

// RecordRecordRejected increments the rejection counter for reason.
func RecordRecordRejected(reason string) {
	m := globalManager()
	if m.enabled {
		m.recordsRejected.WithLabelValues(reason).Inc()
	}
}

// RecordDuplicate increments the duplicate exam counter.
func RecordDuplicate() {
	m := globalManager()
	if m.enabled {
		m.duplicates.Inc()
	}
}

// Pipeline

// RecordStageDuration observes how long a pipeline stage took.
func RecordStageDuration(stage string, ms float64) {
	m := globalManager()
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(ms)
	}
}

// RecordRun counts a finished pipeline run by outcome.
func RecordRun(outcome string) {
	m := globalManager()
	if !m.enabled {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.lastRunUnix.SetToCurrentTime()
	}
}

// UpdateGroupCounts publishes the headline numbers of the last run.
func UpdateGroupCounts(groups, alerts, exams int, alertRate float64) {
	m := globalManager()
	if !m.enabled {
		return
	}
	m.groupsTotal.Set(float64(groups))
	m.alertGroups.Set(float64(alerts))
	m.examsInGroup.Set(float64(exams))
	m.alertRate.Set(alertRate)
}

// HTTP

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	m := globalManager()
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	m := globalManager()
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordHTTPError counts an error response of the given type.
func RecordHTTPError(endpoint, method, errorType string) {
	m := globalManager()
	if m.enabled {
		m.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// GetRegistry returns the registry the current manager records into.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}

// WriteTextfile writes the current registry to path in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
