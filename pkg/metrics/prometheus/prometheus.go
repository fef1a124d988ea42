package prometheus

import (
	"time"

	"bank-ledger/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements metrics.Collector for Prometheus.
type Collector struct {
	namespace string

	// Record store operations
	operations       *prometheus.CounterVec
	operationErrors  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec

	// Durable writes
	persists       *prometheus.CounterVec
	persistRecords *prometheus.GaugeVec
	persistLatency *prometheus.HistogramVec

	// Transaction lifecycle
	transactions *prometheus.CounterVec

	// Event dispatch
	eventQueueDepth prometheus.Gauge
	eventDropped    prometheus.Counter
	eventPublishes  *prometheus.CounterVec
	eventLatency    prometheus.Histogram
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector(namespace string) *Collector {
	return &Collector{
		namespace: namespace,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of record store operations per entity and operation",
			},
			[]string{"entity", "operation"},
		),
		operationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operation_errors_total",
				Help:      "Total number of failed record store operations per entity and operation",
			},
			[]string{"entity", "operation"},
		),
		operationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Record store operation latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity", "operation"},
		),
		persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_persists_total",
				Help:      "Total number of durable collection writes per entity",
			},
			[]string{"entity"},
		),
		persistRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_collection_records",
				Help:      "Number of records in the collection at the last durable write",
			},
			[]string{"entity"},
		),
		persistLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_persist_duration_seconds",
				Help:      "Durable collection write latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total number of transactions per type and status",
			},
			[]string{"type", "status"},
		),
		eventQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "event_queue_depth",
				Help:      "Current event dispatcher queue depth",
			},
		),
		eventDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_dropped_total",
				Help:      "Total number of events dropped because the dispatcher queue was full",
			},
		),
		eventPublishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_publishes_total",
				Help:      "Total number of event publish attempts per status",
			},
			[]string{"status"},
		),
		eventLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_publish_duration_seconds",
				Help:      "Event publish latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// Register registers all metrics with the given Prometheus registerer.
func (c *Collector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.operations,
		c.operationErrors,
		c.operationLatency,
		c.persists,
		c.persistRecords,
		c.persistLatency,
		c.transactions,
		c.eventQueueDepth,
		c.eventDropped,
		c.eventPublishes,
		c.eventLatency,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// RecordOperation records a record store operation.
func (c *Collector) RecordOperation(entity, operation string, success bool, duration time.Duration) {
	c.operations.WithLabelValues(entity, operation).Inc()
	if !success {
		c.operationErrors.WithLabelValues(entity, operation).Inc()
	}
	c.operationLatency.WithLabelValues(entity, operation).Observe(duration.Seconds())
}

// RecordPersist records a durable collection write.
func (c *Collector) RecordPersist(entity string, records int, duration time.Duration) {
	c.persists.WithLabelValues(entity).Inc()
	c.persistRecords.WithLabelValues(entity).Set(float64(records))
	c.persistLatency.WithLabelValues(entity).Observe(duration.Seconds())
}

// RecordTransaction records a transaction lifecycle outcome.
func (c *Collector) RecordTransaction(txType, status string) {
	c.transactions.WithLabelValues(txType, status).Inc()
}

// RecordEventQueueDepth records the current dispatcher queue depth.
func (c *Collector) RecordEventQueueDepth(depth int) {
	c.eventQueueDepth.Set(float64(depth))
}

// RecordEventDropped records a dropped event.
func (c *Collector) RecordEventDropped() {
	c.eventDropped.Inc()
}

// RecordEventPublish records an event publish attempt.
func (c *Collector) RecordEventPublish(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	c.eventPublishes.WithLabelValues(status).Inc()
	c.eventLatency.Observe(duration.Seconds())
}

// Compile-time check: ensure Collector implements metrics.Collector
var _ metrics.Collector = (*Collector)(nil)
