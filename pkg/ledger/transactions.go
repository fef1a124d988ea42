// Package ledger implements the account/transaction consistency engine:
// balance mutation, the transaction status lifecycle, and the statement
// projection. It owns every write path to account balances and transaction
// statuses; the record stores underneath enforce nothing beyond their
// keyed-collection contract.
package ledger

import (
	"context"
	"time"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"
	"bank-ledger/pkg/model"
	"bank-ledger/pkg/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionLedger creates, queries, and updates transaction records. The
// only domain rule it enforces is the PENDING default on creation; status
// transitions are driven by the AccountLedger.
type TransactionLedger struct {
	store   store.Store[model.Transaction]
	logger  *logging.Logger
	metrics metrics.Collector
}

// NewTransactionLedger creates a transaction ledger over the given store.
// Logger and collector may be nil.
func NewTransactionLedger(s store.Store[model.Transaction], logger *logging.Logger, collector metrics.Collector) *TransactionLedger {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &TransactionLedger{
		store:   s,
		logger:  logger.Named("transactions"),
		metrics: collector,
	}
}

// Create records a new transaction in PENDING state with the transaction
// date set to now. Accounts may be empty; a transfer populates it on
// completion.
func (l *TransactionLedger) Create(ctx context.Context, accounts []string, amount decimal.Decimal, txType model.TransactionType) (model.Transaction, error) {
	if accounts == nil {
		accounts = []string{}
	}

	created, err := l.store.Create(ctx, model.Transaction{
		Accounts:        accounts,
		Amount:          amount,
		TransactionDate: time.Now().UTC(),
		Type:            txType,
		Status:          model.TransactionStatusPending,
	})
	if err != nil {
		return model.Transaction{}, err
	}

	l.metrics.RecordTransaction(string(txType), string(model.TransactionStatusPending))
	l.logger.Debug("transaction created",
		zap.String("id", created.ID),
		zap.String("type", string(txType)))
	return created, nil
}

// Get returns the transaction with the given id.
func (l *TransactionLedger) Get(ctx context.Context, id string) (model.Transaction, error) {
	return l.store.FindOne(ctx, id)
}

// List returns all transactions in storage order.
func (l *TransactionLedger) List(ctx context.Context) ([]model.Transaction, error) {
	return l.store.Find(ctx)
}

// Update applies a generic merge to the transaction.
func (l *TransactionLedger) Update(ctx context.Context, id string, merge func(model.Transaction) model.Transaction) (model.Transaction, error) {
	return l.store.Update(ctx, id, merge)
}

// Delete removes the transaction record.
func (l *TransactionLedger) Delete(ctx context.Context, id string) (string, error) {
	return l.store.Delete(ctx, id)
}

// Complete marks the transaction COMPLETED. A non-nil accounts list
// replaces the transaction's accounts (a transfer fills in source and
// destination here).
func (l *TransactionLedger) Complete(ctx context.Context, id string, accounts []string) (model.Transaction, error) {
	completed, err := l.store.Update(ctx, id, func(tx model.Transaction) model.Transaction {
		tx.Status = model.TransactionStatusCompleted
		if accounts != nil {
			tx.Accounts = accounts
		}
		return tx
	})
	if err != nil {
		return model.Transaction{}, err
	}

	l.metrics.RecordTransaction(string(completed.Type), string(model.TransactionStatusCompleted))
	return completed, nil
}

// Fail marks the transaction FAILED.
func (l *TransactionLedger) Fail(ctx context.Context, id string) (model.Transaction, error) {
	failed, err := l.store.Update(ctx, id, func(tx model.Transaction) model.Transaction {
		tx.Status = model.TransactionStatusFailed
		return tx
	})
	if err != nil {
		return model.Transaction{}, err
	}

	l.metrics.RecordTransaction(string(failed.Type), string(model.TransactionStatusFailed))
	return failed, nil
}
