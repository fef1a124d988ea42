// Package memory provides an in-memory metrics collector, mainly for tests.
package memory

import (
	"sync"
	"time"

	"bank-ledger/pkg/metrics"
)

// Collector implements metrics.Collector by counting in memory.
type Collector struct {
	mu sync.RWMutex

	// Per entity+operation counts
	operations map[string]*OperationMetrics

	// Per type+status transaction counts
	transactions map[string]int64

	// Persist stats per entity
	persists map[string]int64

	// Event dispatch
	eventQueueDepth int
	eventDropped    int64
	eventPublished  int64
	eventFailed     int64
}

// OperationMetrics holds counts for one entity+operation pair.
type OperationMetrics struct {
	Successes int64
	Failures  int64
	Latencies []time.Duration
}

// NewCollector creates a new in-memory metrics collector.
func NewCollector() *Collector {
	return &Collector{
		operations:   make(map[string]*OperationMetrics),
		transactions: make(map[string]int64),
		persists:     make(map[string]int64),
	}
}

// RecordOperation counts a record store operation.
func (c *Collector) RecordOperation(entity, operation string, success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := entity + "/" + operation
	om, ok := c.operations[key]
	if !ok {
		om = &OperationMetrics{}
		c.operations[key] = om
	}
	if success {
		om.Successes++
	} else {
		om.Failures++
	}
	om.Latencies = append(om.Latencies, duration)
}

// RecordPersist counts a durable collection write.
func (c *Collector) RecordPersist(entity string, records int, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persists[entity]++
}

// RecordTransaction counts a transaction lifecycle outcome.
func (c *Collector) RecordTransaction(txType, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactions[txType+"/"+status]++
}

// RecordEventQueueDepth stores the latest dispatcher queue depth.
func (c *Collector) RecordEventQueueDepth(depth int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventQueueDepth = depth
}

// RecordEventDropped counts a dropped event.
func (c *Collector) RecordEventDropped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventDropped++
}

// RecordEventPublish counts a publish attempt.
func (c *Collector) RecordEventPublish(success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.eventPublished++
	} else {
		c.eventFailed++
	}
}

// Operation returns the recorded metrics for an entity+operation pair.
func (c *Collector) Operation(entity, operation string) OperationMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if om, ok := c.operations[entity+"/"+operation]; ok {
		return *om
	}
	return OperationMetrics{}
}

// Transactions returns the count for a transaction type+status pair.
func (c *Collector) Transactions(txType, status string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transactions[txType+"/"+status]
}

// Persists returns the number of durable writes recorded for an entity.
func (c *Collector) Persists(entity string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.persists[entity]
}

// EventsDropped returns the number of dropped events.
func (c *Collector) EventsDropped() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eventDropped
}

// Compile-time check: ensure Collector implements metrics.Collector
var _ metrics.Collector = (*Collector)(nil)
