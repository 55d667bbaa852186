package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inschoolz_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inschoolz_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ExperienceGrantsTotal counts XP grants by action category and outcome.
	ExperienceGrantsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inschoolz_experience_grants_total",
		Help: "Total number of experience grants by action and outcome",
	}, []string{"action", "outcome"})

	// LevelUpsTotal counts level-up events.
	LevelUpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inschoolz_level_ups_total",
		Help: "Total number of level-up events",
	})

	// DailyLimitRejections counts grants denied by the daily cap.
	DailyLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inschoolz_daily_limit_rejections_total",
		Help: "Total number of experience grants denied by daily limits",
	}, []string{"action"})

	// BulkOperationsTotal counts bulk operations by type and terminal status.
	BulkOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inschoolz_bulk_operations_total",
		Help: "Total number of bulk operations by type and final status",
	}, []string{"type", "status"})

	// BulkOperationDuration records wall time of finished bulk operations.
	BulkOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inschoolz_bulk_operation_duration_seconds",
		Help:    "Bulk operation duration in seconds",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
	}, []string{"type"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inschoolz_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped on slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inschoolz_websocket_backpressure_drops_total",
		Help: "Total number of websocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// NotificationsSentTotal counts notification deliveries by type and channel.
	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inschoolz_notifications_sent_total",
		Help: "Total number of notifications sent by type and channel",
	}, []string{"type", "channel"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
