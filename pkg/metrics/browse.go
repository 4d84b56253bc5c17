package metrics

import (
	"time"
)

// BrowseMetrics provides observability for browse runs and the handles they
// hold open.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
//
// Example usage:
//
//	metrics.InitRegistry()
//	m := metrics.NewBrowseMetrics()
//	manager := smbclient.NewManager(dialer, provider, opts, m)
//	engine := browse.NewEngine(m, observer)
type BrowseMetrics interface {
	// RecordRun records a finished run.
	//
	// Parameters:
	//   - outcome: "success", "partial" or the critical code name
	//   - duration: Wall time from locator parse to handle release
	RecordRun(outcome string, duration time.Duration)

	// RecordObject records one visited entry.
	//
	// Parameters:
	//   - category: Classified type of the entry (e.g., "directory")
	//   - ok: Whether the entry could be stat'ed
	RecordObject(category string, ok bool)

	// ObserveList records the latency of one listing call.
	//
	// Parameters:
	//   - level: Locator level that was listed ("server", "share", "object")
	//   - duration: Time the protocol client took
	//   - failure: Failure class, empty on success
	ObserveList(level string, duration time.Duration, failure string)

	// HandleOpened increments the open handle gauge.
	HandleOpened()

	// HandleClosed decrements the open handle gauge.
	HandleClosed()
}

// NewBrowseMetrics creates a new Prometheus-backed BrowseMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called) or no
// implementation has been linked in.
func NewBrowseMetrics() BrowseMetrics {
	if !IsEnabled() || newPrometheusBrowseMetrics == nil {
		return nil
	}
	return newPrometheusBrowseMetrics()
}

// newPrometheusBrowseMetrics is implemented in pkg/metrics/prometheus/browse.go.
// The indirection avoids an import cycle.
var newPrometheusBrowseMetrics func() BrowseMetrics

// RegisterBrowseMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterBrowseMetricsConstructor(constructor func() BrowseMetrics) {
	newPrometheusBrowseMetrics = constructor
}

// RecordRun is a nil-safe wrapper around BrowseMetrics.RecordRun.
func RecordRun(m BrowseMetrics, outcome string, duration time.Duration) {
	if m != nil {
		m.RecordRun(outcome, duration)
	}
}

// RecordObject is a nil-safe wrapper around BrowseMetrics.RecordObject.
func RecordObject(m BrowseMetrics, category string, ok bool) {
	if m != nil {
		m.RecordObject(category, ok)
	}
}

// ObserveList is a nil-safe wrapper around BrowseMetrics.ObserveList.
func ObserveList(m BrowseMetrics, level string, duration time.Duration, failure string) {
	if m != nil {
		m.ObserveList(level, duration, failure)
	}
}

// HandleOpened is a nil-safe wrapper around BrowseMetrics.HandleOpened.
func HandleOpened(m BrowseMetrics) {
	if m != nil {
		m.HandleOpened()
	}
}

// HandleClosed is a nil-safe wrapper around BrowseMetrics.HandleClosed.
func HandleClosed(m BrowseMetrics) {
	if m != nil {
		m.HandleClosed()
	}
}
