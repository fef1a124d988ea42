package metrics

import (
	"time"
)

// Collector defines the interface for collecting ledger metrics.
// Implementations can export metrics to various backends (Prometheus, StatsD, etc.).
type Collector interface {
	// Record store operations
	RecordOperation(entity, operation string, success bool, duration time.Duration)
	RecordPersist(entity string, records int, duration time.Duration)

	// Transaction lifecycle
	RecordTransaction(txType, status string)

	// Event dispatch
	RecordEventQueueDepth(depth int)
	RecordEventDropped()
	RecordEventPublish(success bool, duration time.Duration)
}

// NoOpCollector is a no-op implementation of Collector.
// It's used as the default collector when metrics are not needed.
type NoOpCollector struct{}

// RecordOperation does nothing.
func (NoOpCollector) RecordOperation(entity, operation string, success bool, duration time.Duration) {
}

// RecordPersist does nothing.
func (NoOpCollector) RecordPersist(entity string, records int, duration time.Duration) {}

// RecordTransaction does nothing.
func (NoOpCollector) RecordTransaction(txType, status string) {}

// RecordEventQueueDepth does nothing.
func (NoOpCollector) RecordEventQueueDepth(depth int) {}

// RecordEventDropped does nothing.
func (NoOpCollector) RecordEventDropped() {}

// RecordEventPublish does nothing.
func (NoOpCollector) RecordEventPublish(success bool, duration time.Duration) {}
