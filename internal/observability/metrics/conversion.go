package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConversionMetrics contains Prometheus metrics for importer runs
type ConversionMetrics struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	imagesTotal      *prometheus.CounterVec
	annotationsTotal *prometheus.CounterVec
	categoriesTotal  *prometheus.CounterVec
	warningsTotal    *prometheus.CounterVec
	validationsTotal *prometheus.CounterVec
	violationsTotal  *prometheus.CounterVec
	lastRunTimestamp *prometheus.GaugeVec
}

// NewConversionMetrics creates and registers new conversion metrics
func NewConversionMetrics(registry *prometheus.Registry) (*ConversionMetrics, error) {
	m := &ConversionMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ConversionMetrics) initMetrics() {
	m.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weedcoco_conversion_runs_total",
			Help: "Total number of conversion runs",
		},
		[]string{"importer", "status"},
	)

	m.runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weedcoco_conversion_duration_seconds",
			Help:    "Time taken to convert a dataset",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		},
		[]string{"importer"},
	)

	m.imagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weedcoco_images_total",
			Help: "Total number of images emitted",
		},
		[]string{"importer"},
	)

	m.annotationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weedcoco_annotations_total",
			Help: "Total number of annotations emitted",
		},
		[]string{"importer"},
	)

	m.categoriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weedcoco_categories_total",
			Help: "Total number of categories emitted",
		},
		[]string{"importer"},
	)

	m.warningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weedcoco_warnings_total",
			Help: "Total number of data-quality warnings by kind",
		},
		[]string{"importer", "kind"},
	)

	m.validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weedcoco_validations_total",
			Help: "Total number of document validations",
		},
		[]string{"schema", "status"},
	)

	m.violationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weedcoco_validation_violations_total",
			Help: "Total number of schema violations found",
		},
		[]string{"schema"},
	)

	m.lastRunTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "weedcoco_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run",
		},
		[]string{"importer"},
	)
}

// RecordRun records the size and duration of a finished conversion.
func (m *ConversionMetrics) RecordRun(importer string, images, annotations, categories int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(importer, StatusSuccess).Inc()
	m.runDuration.WithLabelValues(importer).Observe(elapsed.Seconds())
	m.imagesTotal.WithLabelValues(importer).Add(float64(images))
	m.annotationsTotal.WithLabelValues(importer).Add(float64(annotations))
	m.categoriesTotal.WithLabelValues(importer).Add(float64(categories))
	m.lastRunTimestamp.WithLabelValues(importer).SetToCurrentTime()
}

// RecordRunError records a conversion that failed.
func (m *ConversionMetrics) RecordRunError(importer string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(importer, StatusError).Inc()
	m.runDuration.WithLabelValues(importer).Observe(elapsed.Seconds())
}

// RecordWarning records one skipped or suspicious input item.
func (m *ConversionMetrics) RecordWarning(importer, kind string) {
	if m == nil {
		return
	}
	m.warningsTotal.WithLabelValues(importer, kind).Inc()
}

// RecordValidation records a validation result and its violation count.
func (m *ConversionMetrics) RecordValidation(schema string, violations int) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if violations > 0 {
		status = StatusError
		m.violationsTotal.WithLabelValues(schema).Add(float64(violations))
	}
	m.validationsTotal.WithLabelValues(schema, status).Inc()
}

// Describe implements the prometheus.Collector interface
func (m *ConversionMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.runsTotal.Describe(ch)
	m.runDuration.Describe(ch)
	m.imagesTotal.Describe(ch)
	m.annotationsTotal.Describe(ch)
	m.categoriesTotal.Describe(ch)
	m.warningsTotal.Describe(ch)
	m.validationsTotal.Describe(ch)
	m.violationsTotal.Describe(ch)
	m.lastRunTimestamp.Describe(ch)
}

// Collect implements the prometheus.Collector interface
func (m *ConversionMetrics) Collect(ch chan<- prometheus.Metric) {
	m.runsTotal.Collect(ch)
	m.runDuration.Collect(ch)
	m.imagesTotal.Collect(ch)
	m.annotationsTotal.Collect(ch)
	m.categoriesTotal.Collect(ch)
	m.warningsTotal.Collect(ch)
	m.validationsTotal.Collect(ch)
	m.violationsTotal.Collect(ch)
	m.lastRunTimestamp.Collect(ch)
}
