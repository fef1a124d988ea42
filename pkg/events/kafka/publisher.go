// Package kafka publishes transaction events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"

	"bank-ledger/pkg/events"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic is the topic transaction events are published to.
const DefaultTopic = "transaction_completed"

// Publisher implements events.Publisher on a kafka writer.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers. An empty topic
// falls back to DefaultTopic.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish writes the event as a JSON message keyed by transaction id.
func (p *Publisher) Publish(ctx context.Context, event events.TransactionCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: data,
	})
}

// Close closes the underlying kafka writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Compile-time check: ensure Publisher implements events.Publisher
var _ events.Publisher = (*Publisher)(nil)
