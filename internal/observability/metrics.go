// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Venue metrics
	OrdersSubmitted   *prometheus.CounterVec
	OrdersCanceled    *prometheus.CounterVec
	VenueCallLatency  *prometheus.HistogramVec
	OracleReadLatency prometheus.Histogram

	// Sequencer metrics
	ChainLegsCompleted *prometheus.CounterVec
	MatchOutcomes      *prometheus.CounterVec
	AnomaliesDetected  *prometheus.CounterVec
	OperationRestarts  prometheus.Counter
	StuckOperations    prometheus.Counter

	// Session metrics
	SessionRuns     *prometheus.CounterVec
	SessionDuration prometheus.Histogram
	ActiveSessions  prometheus.Gauge

	// Recorder metrics
	RecorderQueueDepth prometheus.Gauge
	RecorderDrops      prometheus.Counter
	RecorderWrites     *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "crossfill"
	}

	return &Metrics{
		OrdersSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "orders_submitted_total",
			Help:      "Total number of orders submitted by side and result",
		}, []string{"side", "result"}),
		OrdersCanceled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "orders_canceled_total",
			Help:      "Total number of cancel requests by result",
		}, []string{"result"}),
		VenueCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "call_latency_seconds",
			Help:      "Venue API call latency by endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		OracleReadLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "oracle_read_latency_seconds",
			Help:      "Settled position read latency",
			Buckets:   prometheus.DefBuckets,
		}),

		ChainLegsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "chain_legs_completed_total",
			Help:      "Total number of completed chain legs by type",
		}, []string{"leg_type"}),
		MatchOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "match_outcomes_total",
			Help:      "Total number of hand-off attempts by classified outcome",
		}, []string{"outcome"}),
		AnomaliesDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "anomalies_detected_total",
			Help:      "Total number of anomalies by class",
		}, []string{"class"}),
		OperationRestarts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "operation_restarts_total",
			Help:      "Total number of chain operations restarted after misfill",
		}),
		StuckOperations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "stuck_operations_total",
			Help:      "Total number of operations abandoned after repeated restarts",
		}),

		SessionRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "runs_total",
			Help:      "Total number of trading sessions by final status",
		}, []string{"status"}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Trading session wall-clock duration",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 3600},
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of sessions currently running",
		}),

		RecorderQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "queue_depth",
			Help:      "Number of records waiting in the recorder queue",
		}),
		RecorderDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "drops_total",
			Help:      "Total number of records dropped because the queue was full",
		}),
		RecorderWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "writes_total",
			Help:      "Total number of recorder writes by kind and result",
		}, []string{"kind", "result"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration by database and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Database query errors by database and operation",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordOrderSubmit records an order submission attempt.
func RecordOrderSubmit(side, result string) {
	DefaultMetrics.OrdersSubmitted.WithLabelValues(side, result).Inc()
}

// RecordOrderCancel records a cancel attempt.
func RecordOrderCancel(result string) {
	DefaultMetrics.OrdersCanceled.WithLabelValues(result).Inc()
}

// RecordVenueCall records venue API call latency.
func RecordVenueCall(endpoint string, seconds float64) {
	DefaultMetrics.VenueCallLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordOracleRead records a settled position read.
func RecordOracleRead(seconds float64) {
	DefaultMetrics.OracleReadLatency.Observe(seconds)
}

// RecordChainLeg records a completed chain leg.
func RecordChainLeg(legType string) {
	DefaultMetrics.ChainLegsCompleted.WithLabelValues(legType).Inc()
}

// RecordMatchOutcome records a classified hand-off outcome.
func RecordMatchOutcome(outcome string) {
	DefaultMetrics.MatchOutcomes.WithLabelValues(outcome).Inc()
}

// RecordAnomaly records a detected anomaly.
func RecordAnomaly(class string) {
	DefaultMetrics.AnomaliesDetected.WithLabelValues(class).Inc()
}

// RecordRestart records a chain operation restart.
func RecordRestart() {
	DefaultMetrics.OperationRestarts.Inc()
}

// RecordStuck records an operation abandoned after repeated restarts.
func RecordStuck() {
	DefaultMetrics.StuckOperations.Inc()
}

// RecordSessionRun records a finished session.
func RecordSessionRun(status string, durationSeconds float64) {
	DefaultMetrics.SessionRuns.WithLabelValues(status).Inc()
	DefaultMetrics.SessionDuration.Observe(durationSeconds)
}

// UpdateActiveSessions updates the running session gauge.
func UpdateActiveSessions(n int) {
	DefaultMetrics.ActiveSessions.Set(float64(n))
}

// UpdateRecorderQueueDepth updates the recorder queue depth gauge.
func UpdateRecorderQueueDepth(n int) {
	DefaultMetrics.RecorderQueueDepth.Set(float64(n))
}

// RecordRecorderDrop records a dropped record.
func RecordRecorderDrop() {
	DefaultMetrics.RecorderDrops.Inc()
}

// RecordRecorderWrite records a recorder write.
func RecordRecorderWrite(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DefaultMetrics.RecorderWrites.WithLabelValues(kind, result).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
