// Package events defines the transaction event contract and an async
// dispatcher that decouples publishing from the money-movement path.
package events

import (
	"context"
	"time"

	"bank-ledger/pkg/model"

	"github.com/shopspring/decimal"
)

// Publisher delivers ledger events to an external consumer.
type Publisher interface {
	// Publish delivers a single event. Implementations own serialization
	// and transport; errors never reach the ledger's money-movement path.
	Publish(ctx context.Context, event TransactionCompleted) error

	// Close releases transport resources.
	Close() error
}

// TransactionCompleted is emitted after a money movement reaches the
// COMPLETED status. Accounts mirrors Transaction.Accounts: one id for
// deposits and withdrawals, source then destination for transfers.
type TransactionCompleted struct {
	TransactionID string                `json:"transaction_id"`
	Type          model.TransactionType `json:"type"`
	Accounts      []string              `json:"accounts"`
	Amount        decimal.Decimal       `json:"amount"`
	OccurredAt    time.Time             `json:"occurred_at"`
}

// NopPublisher discards all events. Used when no broker or webhook is
// configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(ctx context.Context, event TransactionCompleted) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
