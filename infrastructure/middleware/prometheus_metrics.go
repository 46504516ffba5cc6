// Package middleware provides cross-cutting concerns for the
// prospection pipeline.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-prospect/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It exposes request rates, latency distributions, and
// pipeline stage gauges for batch runs.
type PrometheusMetrics struct {
	requestCounter   *prometheus.CounterVec
	executionLatency *prometheus.HistogramVec
	stageGauges      *prometheus.GaugeVec
}

// NewPrometheusMetrics registers the pipeline metrics in the default
// Prometheus registry and returns the collector.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		requestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prospect_operations_total",
				Help: "Total operations performed by the prospection pipeline.",
			},
			[]string{"operation", "model", "status"},
		),
		executionLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prospect_operation_duration_seconds",
				Help:    "Execution time of pipeline operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "model"},
		),
		stageGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "prospect_pipeline_state",
				Help: "Current pipeline state values, e.g. sites scored or clusters formed.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records execution latency in the duration histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, labels["model"]).Observe(duration.Seconds())
}

// RecordCounter increments the operation counter.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	status := labels["status"]
	if status == "" {
		status = "success"
	}
	pm.requestCounter.WithLabelValues(metric, labels["model"], status).Add(value)
}

// RecordGauge sets a pipeline state gauge.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.stageGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram records a value in the duration histogram keyed by
// metric name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(metric, labels["model"]).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
