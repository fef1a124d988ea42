package ledger

import (
	"context"
	"slices"
	"time"

	"bank-ledger/pkg/events"
	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"
	"bank-ledger/pkg/model"
	"bank-ledger/pkg/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AccountLedger owns balance mutation. Every money movement creates a
// PENDING transaction before touching a balance and flips it to COMPLETED
// or FAILED afterwards, so balances and transaction history cannot silently
// diverge.
//
// The ledger holds no locks of its own: a movement reads a balance,
// computes the new value, and writes it back, so two concurrent movements
// on the same account can lose an update. That read-modify-write window is
// part of the modeled behavior, not something this layer papers over.
type AccountLedger struct {
	accounts     store.Store[model.Account]
	transactions *TransactionLedger
	events       *events.Dispatcher
	logger       *logging.Logger
	metrics      metrics.Collector
	sf           singleflight.Group
}

// AccountLedgerConfig holds optional collaborators for the account ledger.
type AccountLedgerConfig struct {
	// Events receives a TransactionCompleted after each successful money
	// movement. Nil disables publishing.
	Events *events.Dispatcher

	// Logger is optional; a no-op logger is used when nil.
	Logger *logging.Logger

	// Metrics is optional; a no-op collector is used when nil.
	Metrics metrics.Collector
}

// NewAccountLedger creates an account ledger over the given account store
// and transaction ledger.
func NewAccountLedger(accounts store.Store[model.Account], transactions *TransactionLedger, config AccountLedgerConfig) *AccountLedger {
	if config.Logger == nil {
		config.Logger = logging.NewNoOpLogger()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NoOpCollector{}
	}
	return &AccountLedger{
		accounts:     accounts,
		transactions: transactions,
		events:       config.Events,
		logger:       config.Logger.Named("accounts"),
		metrics:      config.Metrics,
	}
}

// Create stores a new account as given. The caller supplies the initial
// transactions list (empty on first creation); the ledger does not
// initialize it.
func (l *AccountLedger) Create(ctx context.Context, body model.Account) (model.Account, error) {
	return l.accounts.Create(ctx, body)
}

// List returns all accounts.
func (l *AccountLedger) List(ctx context.Context) ([]model.Account, error) {
	return l.accounts.Find(ctx)
}

// Get returns the account with the given id.
func (l *AccountLedger) Get(ctx context.Context, id string) (model.Account, error) {
	return l.accounts.FindOne(ctx, id)
}

// Update applies a generic merge to the account.
func (l *AccountLedger) Update(ctx context.Context, id string, merge func(model.Account) model.Account) (model.Account, error) {
	return l.accounts.Update(ctx, id, merge)
}

// Block marks the account BLOCKED. Blocking is a plain field write; the
// ledger does not consult the flag when moving money.
func (l *AccountLedger) Block(ctx context.Context, id string) (model.Account, error) {
	return l.accounts.Update(ctx, id, func(a model.Account) model.Account {
		a.ActiveFlag = model.ActiveFlagBlocked
		return a
	})
}

// Delete removes the account. Its transactions are left in place.
func (l *AccountLedger) Delete(ctx context.Context, id string) (string, error) {
	return l.accounts.Delete(ctx, id)
}

// GetBalance returns the account's balance.
func (l *AccountLedger) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	account, err := l.accounts.FindOne(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// GetStatement returns every transaction whose accounts list contains the
// given account id, in storage order. This is a full scan over the
// transaction collection; concurrent identical scans are collapsed with
// single-flight.
func (l *AccountLedger) GetStatement(ctx context.Context, id string) ([]model.Transaction, error) {
	if _, err := l.accounts.FindOne(ctx, id); err != nil {
		return nil, err
	}

	result, err, _ := l.sf.Do(id, func() (interface{}, error) {
		all, err := l.transactions.List(ctx)
		if err != nil {
			return nil, err
		}
		statement := make([]model.Transaction, 0)
		for _, tx := range all {
			if slices.Contains(tx.Accounts, id) {
				statement = append(statement, tx)
			}
		}
		return statement, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.Transaction), nil
}

// Deposit adds amount to the account's balance. The DEPOSIT transaction is
// created PENDING before the balance write and completed after it; any
// failure in between flips it to FAILED and re-raises the original error.
func (l *AccountLedger) Deposit(ctx context.Context, id string, amount decimal.Decimal) (model.Account, error) {
	tx, err := l.transactions.Create(ctx, []string{id}, amount, model.TransactionTypeDeposit)
	if err != nil {
		return model.Account{}, err
	}

	account, err := l.accounts.FindOne(ctx, id)
	if err != nil {
		return model.Account{}, l.fail(ctx, tx, err)
	}

	newBalance := model.Round2(account.Balance.Add(amount))
	updated, err := l.writeBalance(ctx, id, newBalance, tx.ID)
	if err != nil {
		return model.Account{}, l.fail(ctx, tx, err)
	}

	if err := l.complete(ctx, tx, nil, []string{id}); err != nil {
		return model.Account{}, err
	}

	l.logger.Info("deposit completed",
		zap.String("account_id", id),
		zap.String("transaction_id", tx.ID),
		zap.String("amount", amount.String()))
	return updated, nil
}

// Withdraw subtracts amount from the account's balance. No floor is
// enforced: the balance may go negative and the daily withdrawal limit is
// never consulted.
func (l *AccountLedger) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (model.Account, error) {
	tx, err := l.transactions.Create(ctx, []string{id}, amount, model.TransactionTypeWithdrawal)
	if err != nil {
		return model.Account{}, err
	}

	account, err := l.accounts.FindOne(ctx, id)
	if err != nil {
		return model.Account{}, l.fail(ctx, tx, err)
	}

	newBalance := model.Round2(account.Balance.Sub(amount))
	updated, err := l.writeBalance(ctx, id, newBalance, tx.ID)
	if err != nil {
		return model.Account{}, l.fail(ctx, tx, err)
	}

	if err := l.complete(ctx, tx, nil, []string{id}); err != nil {
		return model.Account{}, err
	}

	l.logger.Info("withdrawal completed",
		zap.String("account_id", id),
		zap.String("transaction_id", tx.ID),
		zap.String("amount", amount.String()))
	return updated, nil
}

// Transfer moves amount from the source account to the destination and
// returns the updated source account. The TRANSFER transaction starts
// PENDING with an empty accounts list and gains [source, destination] on
// completion.
//
// The two balance writes are sequential, not transactional: if the
// destination credit fails, the source debit stays applied and the
// transaction ends FAILED. There is no compensating write.
func (l *AccountLedger) Transfer(ctx context.Context, id string, amount decimal.Decimal, destination string) (model.Account, error) {
	tx, err := l.transactions.Create(ctx, []string{}, amount, model.TransactionTypeTransfer)
	if err != nil {
		return model.Account{}, err
	}

	source, err := l.accounts.FindOne(ctx, id)
	if err != nil {
		return model.Account{}, l.fail(ctx, tx, err)
	}
	dest, err := l.accounts.FindOne(ctx, destination)
	if err != nil {
		return model.Account{}, l.fail(ctx, tx, err)
	}

	newSourceBalance := model.Round2(source.Balance.Sub(amount))
	updatedSource, err := l.writeBalance(ctx, id, newSourceBalance, tx.ID)
	if err != nil {
		return model.Account{}, l.fail(ctx, tx, err)
	}

	newDestBalance := model.Round2(dest.Balance.Add(amount))
	if _, err := l.writeBalance(ctx, destination, newDestBalance, tx.ID); err != nil {
		return model.Account{}, l.fail(ctx, tx, err)
	}

	if err := l.complete(ctx, tx, []string{id, destination}, []string{id, destination}); err != nil {
		return model.Account{}, err
	}

	l.logger.Info("transfer completed",
		zap.String("source_id", id),
		zap.String("destination_id", destination),
		zap.String("transaction_id", tx.ID),
		zap.String("amount", amount.String()))
	return updatedSource, nil
}

// writeBalance stores a precomputed balance and appends the transaction id
// to the account's history in one store update.
func (l *AccountLedger) writeBalance(ctx context.Context, id string, balance decimal.Decimal, txID string) (model.Account, error) {
	return l.accounts.Update(ctx, id, func(a model.Account) model.Account {
		a.Balance = balance
		a.Transactions = append(a.Transactions, txID)
		return a
	})
}

// fail flips the in-flight transaction to FAILED and returns the original
// error. The single compensating action of the engine.
func (l *AccountLedger) fail(ctx context.Context, tx model.Transaction, cause error) error {
	if _, err := l.transactions.Fail(ctx, tx.ID); err != nil {
		l.logger.Error("could not mark transaction FAILED",
			zap.String("transaction_id", tx.ID),
			zap.Error(err))
	}
	return cause
}

// complete flips the in-flight transaction to COMPLETED and emits the
// transaction-completed event. A failed status write propagates: the
// balance writes already landed, which is the same class of gap as a
// partial transfer.
func (l *AccountLedger) complete(ctx context.Context, tx model.Transaction, accounts []string, eventAccounts []string) error {
	if _, err := l.transactions.Complete(ctx, tx.ID, accounts); err != nil {
		l.logger.Error("could not mark transaction COMPLETED",
			zap.String("transaction_id", tx.ID),
			zap.Error(err))
		return err
	}

	if l.events != nil {
		l.events.Dispatch(events.TransactionCompleted{
			TransactionID: tx.ID,
			Type:          tx.Type,
			Accounts:      eventAccounts,
			Amount:        tx.Amount,
			OccurredAt:    time.Now().UTC(),
		})
	}
	return nil
}
