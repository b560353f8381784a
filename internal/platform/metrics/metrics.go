package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Every method is
// safe on a nil receiver so components can run without instrumentation.
type Metrics struct {
	RemoteCalls        *prometheus.CounterVec
	RemoteRetries      *prometheus.CounterVec
	RemoteLatency      *prometheus.HistogramVec
	DirectoryRefresh   *prometheus.CounterVec
	DirectoryEntries   prometheus.Gauge
	DirectoryHits      prometheus.Counter
	Registrations      *prometheus.CounterVec
	RegisterLatency    prometheus.Histogram
	AuditEventsDropped prometheus.Counter
}

// New creates and registers all Prometheus metrics. Call it once per process.
func New() *Metrics {
	return &Metrics{
		RemoteCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteid_remote_calls_total",
			Help: "Outbound store calls by method and final status class",
		}, []string{"method", "status"}),
		RemoteRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteid_remote_retries_total",
			Help: "Retried outbound store attempts by triggering status",
		}, []string{"status"}),
		RemoteLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "siteid_remote_call_duration_seconds",
			Help:    "Duration of outbound store calls including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		DirectoryRefresh: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteid_directory_refresh_total",
			Help: "Directory rebuilds by outcome",
		}, []string{"outcome"}),
		DirectoryEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "siteid_directory_entries",
			Help: "Number of site ids in the current directory",
		}),
		DirectoryHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "siteid_directory_cache_hits_total",
			Help: "Directory reads served from a fresh cache",
		}),
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteid_registrations_total",
			Help: "Registration reconciliations by action and outcome",
		}, []string{"action", "outcome"}),
		RegisterLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "siteid_registration_duration_seconds",
			Help:    "Duration of a full registration reconciliation",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		AuditEventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "siteid_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		}),
	}
}

// ObserveRemoteCall records the final outcome of one outbound call.
func (m *Metrics) ObserveRemoteCall(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(method, statusClass(status)).Inc()
	m.RemoteLatency.WithLabelValues(method).Observe(d.Seconds())
}

// IncrementRetry records a retried attempt.
func (m *Metrics) IncrementRetry(status int) {
	if m != nil {
		m.RemoteRetries.WithLabelValues(statusClass(status)).Inc()
	}
}

// IncrementDirectoryRefresh records a directory rebuild outcome.
func (m *Metrics) IncrementDirectoryRefresh(outcome string) {
	if m != nil {
		m.DirectoryRefresh.WithLabelValues(outcome).Inc()
	}
}

// SetDirectoryEntries records the size of the active directory.
func (m *Metrics) SetDirectoryEntries(n int) {
	if m != nil {
		m.DirectoryEntries.Set(float64(n))
	}
}

// IncrementDirectoryHit records a fresh cache read.
func (m *Metrics) IncrementDirectoryHit() {
	if m != nil {
		m.DirectoryHits.Inc()
	}
}

// IncrementRegistration records one reconciliation outcome.
func (m *Metrics) IncrementRegistration(action, outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(action, outcome).Inc()
	}
}

// ObserveRegistration records the total reconciliation duration.
func (m *Metrics) ObserveRegistration(d time.Duration) {
	if m != nil {
		m.RegisterLatency.Observe(d.Seconds())
	}
}

// IncrementAuditDropped records an audit event lost to back-pressure.
func (m *Metrics) IncrementAuditDropped() {
	if m != nil {
		m.AuditEventsDropped.Inc()
	}
}

// statusClass buckets a status code ("2xx", "429", "5xx"); 0 means transport error.
func statusClass(status int) string {
	switch {
	case status == 0:
		return "error"
	case status == 429:
		return "429"
	default:
		return strconv.Itoa(status/100) + "xx"
	}
}
