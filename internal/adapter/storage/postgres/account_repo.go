package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account. Email and phone collisions surface as
// ports.ErrDuplicateAccount.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, full_name, email, phone, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.FullName, nullIfEmpty(a.Email), nullIfEmpty(a.Phone), a.PasswordHash, a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ports.ErrDuplicateAccount
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by its canonical id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := accountSelect + ` WHERE id = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches an account by email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if email == "" {
		return nil, nil
	}
	query := accountSelect + ` WHERE email = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

// GetByPhone fetches an account whose stored phone matches any variant.
func (r *AccountRepo) GetByPhone(ctx context.Context, variants []string) (*domain.Account, error) {
	if len(variants) == 0 {
		return nil, nil
	}
	query := accountSelect + ` WHERE phone = ANY($1)`
	return r.scanAccount(r.pool.QueryRow(ctx, query, variants))
}

const accountSelect = `SELECT id, full_name, email, phone, password_hash, created_at FROM accounts`

func (r *AccountRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	var email, phone sql.NullString
	err := row.Scan(&a.ID, &a.FullName, &email, &phone, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Email = email.String
	a.Phone = phone.String
	return a, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
