package ports

import (
	"context"
	"time"

	"digital-wallet-backend/internal/core/domain"

	"github.com/shopspring/decimal"
)

// IdempotencyCache is the fast-path idempotency check in front of the
// durable log. Best-effort: cache errors degrade to the DB layer.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID string, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID string
	Email     string
}

// --- Service Ports (Business Logic) ---

// IdentityResolver maps a user-supplied identifier (wallet account id,
// internal account id, email, or phone in any accepted form) to the
// canonical account id. No side effects; unresolved identifiers surface
// as an error, never a synthetic identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, identifier string) (string, error)
}

// IdentityService is the account subsystem consumed by the HTTP surface.
type IdentityService interface {
	IdentityResolver
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
}

// RegisterRequest holds validated input for account registration.
type RegisterRequest struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// LoginResult holds the issued session token and the authenticated account.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// WalletService is the wallet store: per-account balance records with
// atomic credit and debit.
type WalletService interface {
	// GetOrCreate returns the wallet for userID, creating it with the
	// configured initial grant when absent.
	GetOrCreate(ctx context.Context, userID string) (*domain.Wallet, error)
	// Credit adds amount; an absent wallet is created with balance = amount
	// (no initial grant).
	Credit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error)
	// Debit subtracts amount. Fails when the wallet is missing or holds
	// less than amount; the balance never goes negative.
	Debit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error)
	// Get returns the wallet without creating it.
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
}

// WalletTransferRequest is a wallet-to-wallet transfer order.
type WalletTransferRequest struct {
	From           string
	To             string
	Amount         decimal.Decimal
	IdempotencyKey string // optional client-supplied key; "" disables replay protection
}

// BankTransferRequest is a simulated bank transfer order.
type BankTransferRequest struct {
	From           string
	Account        string
	IFSC           string
	Amount         decimal.Decimal
	IdempotencyKey string
}

// TransferService is the transfer orchestrator: resolve sender, verify
// funds, debit, and append the ledger record as one atomic unit.
type TransferService interface {
	TransferWallet(ctx context.Context, req WalletTransferRequest) (*domain.Transaction, error)
	TransferBank(ctx context.Context, req BankTransferRequest) (*domain.Transaction, error)
}

// LedgerService reads the append-only transaction history.
type LedgerService interface {
	// History returns all transactions, newest first.
	History(ctx context.Context) ([]domain.Transaction, error)
	// List applies the filter, newest first.
	List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	Get(ctx context.Context, id string) (*domain.Transaction, error)
}
