package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a money movement.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// TransactionMethod distinguishes wallet-to-wallet movements from
// simulated bank transfers.
type TransactionMethod string

const (
	TransactionMethodWallet TransactionMethod = "wallet"
	TransactionMethodBank   TransactionMethod = "bank"
)

// Transaction is an immutable ledger entry. It is written only after the
// corresponding debit has been committed, in the same storage transaction.
// From holds the resolved sender account id; To holds the raw destination
// identifier (internal account or external bank account).
type Transaction struct {
	ID        string            `json:"id"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	BankIFSC  string            `json:"ifsc,omitempty"` // bank method only
	Amount    decimal.Decimal   `json:"amount"`
	Status    TransactionStatus `json:"status"`
	Method    TransactionMethod `json:"method"`
	CreatedAt time.Time         `json:"date"`
}

// NewTransactionID returns a fresh ledger id. UUIDv7 keeps ids time-ordered
// while staying collision-free for transactions created in the same instant.
func NewTransactionID() string {
	return fmt.Sprintf("tx_%s", uuid.Must(uuid.NewV7()))
}

// IsTerminal reports whether no further status change is allowed.
// Wallet transfers commit terminal; bank transfers start pending and are
// moved by an external settlement actor.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}

// CanTransition reports whether the status may move to next:
// pending -> success|failed only, never out of a terminal state.
func (t *Transaction) CanTransition(next TransactionStatus) bool {
	if t.IsTerminal() {
		return false
	}
	return next == TransactionStatusSuccess || next == TransactionStatusFailed
}
