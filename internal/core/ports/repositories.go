package ports

import (
	"context"
	"errors"

	"digital-wallet-backend/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Storage sentinel errors shared by all storage strategies. Adapters map
// driver-specific failures (e.g. unique violations) onto these so services
// never inspect driver errors.
var (
	ErrDuplicateAccount = errors.New("account already exists")
	ErrDuplicateWallet  = errors.New("wallet already exists")
	ErrDuplicateKey     = errors.New("idempotency key already recorded")
	ErrForeignTx        = errors.New("transaction belongs to a different storage strategy")
)

// AccountRepository defines persistence for identity records.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetByPhone matches the stored phone against any of the given textual
	// variants (bare 10-digit or +91-prefixed).
	GetByPhone(ctx context.Context, variants []string) (*domain.Account, error)
}

// WalletRepository defines persistence for wallet balance records.
// Methods accepting pgx.Tx run inside transaction blocks; on PostgreSQL the
// ForUpdate variant takes a row lock that serializes concurrent mutations
// of the same wallet.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID string, balance decimal.Decimal) error
}

// TransactionFilter narrows ledger queries. Status filters by exact match;
// Query is a case-insensitive substring match over id, from and to.
type TransactionFilter struct {
	Status *domain.TransactionStatus
	Query  string
}

// TransactionRepository defines the append-only ledger. There is no delete
// operation; UpdateStatus is the single separately-contracted mutation path
// and is not reachable from the transfer flow.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// List returns transactions in descending creation order.
	List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status domain.TransactionStatus) error
}

// IdempotencyRepository defines durable storage for transfer idempotency
// logs (the authoritative layer behind the cache).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
}

// DBTransactor provides storage-level transaction management. A single
// transaction spans the debit, the optional counterparty credit, the ledger
// append and the idempotency log, so partial state is never visible.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
