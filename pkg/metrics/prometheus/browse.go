// Package prometheus implements the metrics interfaces on top of the
// Prometheus client and serves them over HTTP.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/smbenum/pkg/metrics"
)

func init() {
	metrics.RegisterBrowseMetricsConstructor(NewBrowseMetrics)
}

// browseMetrics is the Prometheus implementation of metrics.BrowseMetrics.
type browseMetrics struct {
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	objects      *prometheus.CounterVec
	listDuration *prometheus.HistogramVec
	listFailures *prometheus.CounterVec
	openHandles  prometheus.Gauge
}

// NewBrowseMetrics creates a new Prometheus-backed BrowseMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewBrowseMetrics() metrics.BrowseMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &browseMetrics{
		runs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbenum_runs_total",
				Help: "Total number of browse runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "smbenum_run_duration_seconds",
				Help: "Wall time of a browse run",
				Buckets: []float64{
					0.1, // unreachable hosts fail fast
					0.5,
					1,
					5,
					15,
					60,
					300, // deep trees
					900,
				},
			},
		),
		objects: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbenum_objects_total",
				Help: "Total number of visited objects by category and stat outcome",
			},
			[]string{"category", "ok"},
		),
		listDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "smbenum_list_duration_milliseconds",
				Help: "Duration of listing calls in milliseconds",
				Buckets: []float64{
					1,    // LAN, small directory
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms - WAN or large directory
					1000, // 1s
					5000, // 5s
				},
			},
			[]string{"level"},
		),
		listFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbenum_list_failures_total",
				Help: "Total number of failed listing calls by failure class",
			},
			[]string{"level", "failure"},
		),
		openHandles: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "smbenum_open_handles",
				Help: "Number of connection handles currently open",
			},
		),
	}
}

func (m *browseMetrics) RecordRun(outcome string, duration time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
}

func (m *browseMetrics) RecordObject(category string, ok bool) {
	m.objects.WithLabelValues(category, strconv.FormatBool(ok)).Inc()
}

func (m *browseMetrics) ObserveList(level string, duration time.Duration, failure string) {
	m.listDuration.WithLabelValues(level).Observe(float64(duration.Microseconds()) / 1000.0)
	if failure != "" {
		m.listFailures.WithLabelValues(level, failure).Inc()
	}
}

func (m *browseMetrics) HandleOpened() {
	m.openHandles.Inc()
}

func (m *browseMetrics) HandleClosed() {
	m.openHandles.Dec()
}
