package memory

import (
	"context"
	"strings"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Records are stored by value behind these aliases; every read hands out a
// copy so callers can never mutate the store through a returned pointer.
type (
	accountRecord     = domain.Account
	walletRecord      = domain.Wallet
	txnRecord         = domain.Transaction
	idempotencyRecord = domain.IdempotencyLog
)

// --- AccountRepo ---

type AccountRepo struct {
	s *Store
}

func NewAccountRepo(s *Store) *AccountRepo {
	return &AccountRepo{s: s}
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.ID]; ok {
		return ports.ErrDuplicateAccount
	}
	for _, existing := range r.s.accounts {
		if a.Email != "" && existing.Email == a.Email {
			return ports.ErrDuplicateAccount
		}
		if a.Phone != "" && existing.Phone == a.Phone {
			return ports.ErrDuplicateAccount
		}
	}
	cp := *a
	r.s.accounts[a.ID] = &cp
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a, ok := r.s.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if email == "" {
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) GetByPhone(ctx context.Context, variants []string) (*domain.Account, error) {
	if len(variants) == 0 {
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Phone == "" {
			continue
		}
		for _, v := range variants {
			if a.Phone == v {
				cp := *a
				return &cp, nil
			}
		}
	}
	return nil, nil
}

// --- WalletRepo ---

type WalletRepo struct {
	s *Store
}

func NewWalletRepo(s *Store) *WalletRepo {
	return &WalletRepo{s: s}
}

func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	m, err := asMemTx(tx)
	if err != nil {
		return err
	}
	if _, ok := r.s.walletsByUser[w.UserID]; ok {
		return ports.ErrDuplicateWallet
	}
	cp := *w
	r.s.wallets[w.ID] = &cp
	r.s.walletsByUser[w.UserID] = w.ID
	m.onRollback(func() {
		delete(r.s.wallets, cp.ID)
		delete(r.s.walletsByUser, cp.UserID)
	})
	return nil
}

func (r *WalletRepo) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.lookupWallet(userID), nil
}

// GetByUserIDForUpdate reads under an open transaction. The transactor's
// store-wide lock already excludes all other writers, which is the memory
// strategy's equivalent of a row lock.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	if _, err := asMemTx(tx); err != nil {
		return nil, err
	}
	return r.s.lookupWallet(userID), nil
}

func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID string, balance decimal.Decimal) error {
	m, err := asMemTx(tx)
	if err != nil {
		return err
	}
	w, ok := r.s.wallets[walletID]
	if !ok {
		return pgx.ErrNoRows
	}
	prev := w.Balance
	w.Balance = balance
	m.onRollback(func() { w.Balance = prev })
	return nil
}

// lookupWallet returns a copy; callers hold the appropriate lock.
func (s *Store) lookupWallet(userID string) *domain.Wallet {
	id, ok := s.walletsByUser[userID]
	if !ok {
		return nil
	}
	cp := *s.wallets[id]
	return &cp
}

// --- TransactionRepo ---

type TransactionRepo struct {
	s *Store
}

func NewTransactionRepo(s *Store) *TransactionRepo {
	return &TransactionRepo{s: s}
}

func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	m, err := asMemTx(tx)
	if err != nil {
		return err
	}
	cp := *t
	r.s.txns[t.ID] = &cp
	r.s.txnOrder = append(r.s.txnOrder, t.ID)
	m.onRollback(func() {
		delete(r.s.txns, cp.ID)
		r.s.txnOrder = r.s.txnOrder[:len(r.s.txnOrder)-1]
	})
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if t, ok := r.s.txns[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *TransactionRepo) List(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// Append order is chronological, so walking it backwards yields
	// newest-first without a sort.
	out := make([]domain.Transaction, 0, len(r.s.txnOrder))
	for i := len(r.s.txnOrder) - 1; i >= 0; i-- {
		t := r.s.txns[r.s.txnOrder[i]]
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if q := strings.ToLower(filter.Query); q != "" {
			if !strings.Contains(strings.ToLower(t.ID), q) &&
				!strings.Contains(strings.ToLower(t.From), q) &&
				!strings.Contains(strings.ToLower(t.To), q) {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status domain.TransactionStatus) error {
	m, err := asMemTx(tx)
	if err != nil {
		return err
	}
	t, ok := r.s.txns[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return pgx.ErrNoRows
	}
	prev := t.Status
	t.Status = status
	m.onRollback(func() { t.Status = prev })
	return nil
}

// --- IdempotencyRepo ---

type IdempotencyRepo struct {
	s *Store
}

func NewIdempotencyRepo(s *Store) *IdempotencyRepo {
	return &IdempotencyRepo{s: s}
}

func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	m, err := asMemTx(tx)
	if err != nil {
		return err
	}
	if _, ok := r.s.idempotency[log.Key]; ok {
		return ports.ErrDuplicateKey
	}
	cp := *log
	r.s.idempotency[log.Key] = &cp
	m.onRollback(func() { delete(r.s.idempotency, cp.Key) })
	return nil
}

func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if l, ok := r.s.idempotency[key]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}
