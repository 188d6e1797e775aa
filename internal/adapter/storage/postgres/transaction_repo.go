package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. The table is the
// system's audit trail: inserts and the status-update path only, no deletes.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends a ledger record within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, from_account, to_account, bank_ifsc, amount, status, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.From, t.To, t.BankIFSC, t.Amount, t.Status, t.Method, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a single ledger record.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := transactionSelect + ` WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// List fetches ledger records newest first, optionally filtered by exact
// status and a case-insensitive substring over id/from/to.
func (r *TransactionRepo) List(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	var conditions []string
	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(id ILIKE $%d OR from_account ILIKE $%d OR to_account ILIKE $%d)", n, n, n))
	}

	query := transactionSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		if err := rows.Scan(&t.ID, &t.From, &t.To, &t.BankIFSC, &t.Amount, &t.Status, &t.Method, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// UpdateStatus moves a pending transaction to a terminal state within a
// database transaction. The guard in the WHERE clause enforces the
// pending -> success|failed state machine at the storage level.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1 WHERE id = $2 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found or not pending", id)
	}
	return nil
}

const transactionSelect = `SELECT id, from_account, to_account, bank_ifsc, amount, status, method, created_at FROM transactions`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(&t.ID, &t.From, &t.To, &t.BankIFSC, &t.Amount, &t.Status, &t.Method, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
