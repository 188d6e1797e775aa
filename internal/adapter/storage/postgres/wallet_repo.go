package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet within a database transaction. A concurrent
// create for the same account surfaces as ports.ErrDuplicateWallet.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, w.ID, w.UserID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ports.ErrDuplicateWallet
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID fetches a wallet without locking.
func (r *WalletRepo) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := walletSelect + ` WHERE user_id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate fetches a wallet with a pessimistic row lock.
// Must be called within a transaction; the lock is held until commit, which
// serializes concurrent credits and debits against the same account.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	query := walletSelect + ` WHERE user_id = $1 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, userID))
}

// UpdateBalance writes a wallet's new balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID string, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

const walletSelect = `SELECT id, user_id, balance, currency, created_at, updated_at FROM wallets`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
