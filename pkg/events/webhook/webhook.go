// Package webhook posts transaction events to a configured HTTP endpoint.
// The outbound call runs behind a circuit breaker so a dead endpoint stops
// costing a connection attempt per event.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bank-ledger/pkg/events"
	"bank-ledger/pkg/logging"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config holds configuration for the webhook publisher.
type Config struct {
	// URL is the endpoint events are POSTed to.
	URL string

	// Timeout bounds each outbound request (default: 5s).
	Timeout time.Duration

	// Logger is optional; a no-op logger is used when nil.
	Logger *logging.Logger
}

// Publisher implements events.Publisher over HTTP POST.
type Publisher struct {
	config Config
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	logger *logging.Logger
}

// NewPublisher creates a webhook publisher for the configured URL.
func NewPublisher(config Config) *Publisher {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = logging.NewNoOpLogger()
	}

	logger := config.Logger.Named("webhook")

	settings := gobreaker.Settings{
		Name:     "webhook",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Publisher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
	}
}

// Publish POSTs the event as JSON. Non-2xx responses count as failures
// toward the circuit breaker.
func (p *Publisher) Publish(ctx context.Context, event events.TransactionCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.URL, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

// Close releases idle connections.
func (p *Publisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// Compile-time check: ensure Publisher implements events.Publisher
var _ events.Publisher = (*Publisher)(nil)
