package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the client core.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Provider RPC metrics
	providerRPCCallsTotal   *prometheus.CounterVec
	providerRPCCallDuration *prometheus.HistogramVec

	// Synchronizer metrics
	fetchesTotal          *prometheus.CounterVec
	fetchDuration         prometheus.Histogram
	snapshotsPublished    prometheus.Counter
	snapshotProperties    prometheus.Gauge
	staleFetchesDiscarded prometheus.Counter

	// Transaction submission metrics
	submissionsTotal *prometheus.CounterVec

	// Account lifecycle metrics
	accountChangesTotal prometheus.Counter
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		providerRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_rpc_calls_total",
				Help: "Total number of provider RPC calls by method and status",
			},
			[]string{"method", "status"},
		),
		providerRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_rpc_call_duration_seconds",
				Help:    "Duration of provider RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),
		fetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registry_fetches_total",
				Help: "Total number of registry state fetches by outcome",
			},
			[]string{"status"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "registry_fetch_duration_seconds",
				Help:    "Duration of full registry state fetches in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),
		snapshotsPublished: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "snapshots_published_total",
				Help: "Total number of snapshots published by the synchronizer",
			},
		),
		snapshotProperties: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "snapshot_properties",
				Help: "Number of properties in the most recently published snapshot",
			},
		),
		staleFetchesDiscarded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stale_fetches_discarded_total",
				Help: "Total number of completed fetches discarded because a newer fetch already published",
			},
		),
		submissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_submissions_total",
				Help: "Total number of transaction submissions by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		accountChangesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "account_changes_total",
				Help: "Total number of observed account changes (including disconnects)",
			},
		),
	}
}

// RecordRPCCall records a provider RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status string, duration float64) {
	m.providerRPCCallsTotal.WithLabelValues(method, status).Inc()
	m.providerRPCCallDuration.WithLabelValues(method).Observe(duration)
}

// RecordFetch records a completed fetch attempt and its duration.
func (m *Metrics) RecordFetch(status string, duration float64) {
	m.fetchesTotal.WithLabelValues(status).Inc()
	m.fetchDuration.Observe(duration)
}

// RecordSnapshotPublished records a snapshot publication.
func (m *Metrics) RecordSnapshotPublished(propertyCount int) {
	m.snapshotsPublished.Inc()
	m.snapshotProperties.Set(float64(propertyCount))
}

// RecordStaleFetchDiscarded records a fetch completion discarded as stale.
func (m *Metrics) RecordStaleFetchDiscarded() {
	m.staleFetchesDiscarded.Inc()
}

// RecordSubmission records a transaction submission outcome.
func (m *Metrics) RecordSubmission(operation, status string) {
	m.submissionsTotal.WithLabelValues(operation, status).Inc()
}

// RecordAccountChange records an observed account change.
func (m *Metrics) RecordAccountChange() {
	m.accountChangesTotal.Inc()
}
