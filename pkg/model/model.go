// Package model defines the banking ledger entities and their enumerations.
// All enums are string-valued and serialize verbatim; entity JSON uses the
// camelCase field names of the public API.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType identifies the kind of account.
type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
)

// TransactionType identifies a money-movement operation.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

// TransactionStatus is the lifecycle state of a transaction.
// PENDING is always the initial state; COMPLETED and FAILED are terminal.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// ActiveFlag marks an account's activation state.
type ActiveFlag string

const (
	ActiveFlagNone    ActiveFlag = "NONE"
	ActiveFlagBlocked ActiveFlag = "BLOCKED"
)

// Person owns zero or more accounts. It carries no ledger invariants beyond
// id uniqueness; Account.Owner references Person.ID.
type Person struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Document  string   `json:"document,omitempty"`
	BirthDate string   `json:"birthDate"`
	Email     string   `json:"email"`
	Accounts  []string `json:"accounts"`
}

// Key returns the record id.
func (p Person) Key() string { return p.ID }

// WithKey returns a copy of the person with the given id set.
func (p Person) WithKey(id string) Person {
	p.ID = id
	return p
}

// Account holds a balance and the append-only list of transaction ids the
// account participated in. Balance is written exclusively by the account
// ledger; no other write path exists.
type Account struct {
	ID                   string          `json:"id"`
	Owner                string          `json:"owner"`
	Balance              decimal.Decimal `json:"balance"`
	DailyWithdrawalLimit decimal.Decimal `json:"dailyWithdrawalLimit"`
	ActiveFlag           ActiveFlag      `json:"activeFlag,omitempty"`
	AccountType          AccountType     `json:"accountType"`
	CreatedDate          time.Time       `json:"createdDate"`
	Transactions         []string        `json:"transactions"`
}

// Key returns the record id.
func (a Account) Key() string { return a.ID }

// WithKey returns a copy of the account with the given id set.
func (a Account) WithKey(id string) Account {
	a.ID = id
	return a
}

// Transaction records one money movement. Accounts holds one id for a
// deposit or withdrawal and two (source then destination) for a transfer.
// It is created PENDING before any balance write and transitions to
// COMPLETED only after every balance write for the operation succeeded,
// or to FAILED otherwise.
type Transaction struct {
	ID              string            `json:"id"`
	Accounts        []string          `json:"accounts"`
	Amount          decimal.Decimal   `json:"amount"`
	TransactionDate time.Time         `json:"transactionDate"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
}

// Key returns the record id.
func (t Transaction) Key() string { return t.ID }

// WithKey returns a copy of the transaction with the given id set.
func (t Transaction) WithKey(id string) Transaction {
	t.ID = id
	return t
}
