package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"

	"go.uber.org/zap"
)

// Dispatcher publishes events through a bounded queue and worker pool so a
// slow or failing consumer can never block a money movement. When the queue
// is full the event is dropped and counted; events are best-effort by
// design.
type Dispatcher struct {
	publisher  Publisher
	queue      chan TransactionCompleted
	workers    int
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	config     DispatcherConfig
	logger     *logging.Logger
	metrics    metrics.Collector

	// Statistics (accessed atomically)
	droppedEvents   int64
	publishedEvents int64
	failedEvents    int64

	depthTicker *time.Ticker
	depthStop   chan struct{}
}

// DispatcherConfig configures the dispatcher behavior.
type DispatcherConfig struct {
	// QueueSize is the bounded queue size (default: 256)
	QueueSize int

	// Workers is the number of concurrent workers (default: 2)
	Workers int

	// MaxWaitTime is the max time to wait if the queue is full.
	// 0 means drop immediately (default: 10ms)
	MaxWaitTime time.Duration

	// Logger is optional; a no-op logger is used when nil.
	Logger *logging.Logger

	// Metrics is optional; a no-op collector is used when nil.
	Metrics metrics.Collector
}

// NewDispatcher creates a dispatcher around the given publisher and starts
// its worker pool. Close must be called to drain and stop it.
func NewDispatcher(publisher Publisher, config DispatcherConfig) *Dispatcher {
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if config.MaxWaitTime == 0 {
		config.MaxWaitTime = 10 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = logging.NewNoOpLogger()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NoOpCollector{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		publisher:   publisher,
		queue:       make(chan TransactionCompleted, config.QueueSize),
		workers:     config.Workers,
		ctx:         ctx,
		cancelFunc:  cancel,
		config:      config,
		logger:      config.Logger.Named("events"),
		metrics:     config.Metrics,
		depthTicker: time.NewTicker(5 * time.Second),
		depthStop:   make(chan struct{}),
	}

	for i := 0; i < config.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	go d.reportDepth()

	return d
}

// Dispatch enqueues an event without blocking beyond MaxWaitTime. A full
// queue drops the event; the caller is never failed.
func (d *Dispatcher) Dispatch(event TransactionCompleted) {
	select {
	case d.queue <- event:
		return
	default:
	}

	if d.config.MaxWaitTime > 0 {
		timer := time.NewTimer(d.config.MaxWaitTime)
		defer timer.Stop()
		select {
		case d.queue <- event:
			return
		case <-timer.C:
		case <-d.ctx.Done():
		}
	}

	atomic.AddInt64(&d.droppedEvents, 1)
	d.metrics.RecordEventDropped()
	d.logger.Warn("event dropped, queue full",
		zap.String("transaction_id", event.TransactionID),
		zap.String("type", string(event.Type)))
}

// worker drains the queue until the dispatcher is closed.
func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case event, ok := <-d.queue:
			if !ok {
				return
			}
			d.publish(event)
		case <-d.ctx.Done():
			// Drain what is already queued before exiting.
			for {
				select {
				case event, ok := <-d.queue:
					if !ok {
						return
					}
					d.publish(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) publish(event TransactionCompleted) {
	start := time.Now()
	err := d.publisher.Publish(d.ctx, event)
	d.metrics.RecordEventPublish(err == nil, time.Since(start))

	if err != nil {
		atomic.AddInt64(&d.failedEvents, 1)
		d.logger.Warn("event publish failed",
			zap.String("transaction_id", event.TransactionID),
			zap.Error(err))
		return
	}
	atomic.AddInt64(&d.publishedEvents, 1)
}

func (d *Dispatcher) reportDepth() {
	for {
		select {
		case <-d.depthTicker.C:
			d.metrics.RecordEventQueueDepth(len(d.queue))
		case <-d.depthStop:
			return
		}
	}
}

// Stats returns published, failed, and dropped event counts.
func (d *Dispatcher) Stats() (published, failed, dropped int64) {
	return atomic.LoadInt64(&d.publishedEvents),
		atomic.LoadInt64(&d.failedEvents),
		atomic.LoadInt64(&d.droppedEvents)
}

// Close stops the workers, waits for in-flight publishes, and closes the
// underlying publisher.
func (d *Dispatcher) Close() error {
	d.depthTicker.Stop()
	close(d.depthStop)
	d.cancelFunc()
	d.wg.Wait()
	return d.publisher.Close()
}
