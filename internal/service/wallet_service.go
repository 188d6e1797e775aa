package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService. Every balance mutation
// runs inside a storage transaction with the wallet row locked, so
// concurrent credits and debits serialize per wallet.
type WalletServiceImpl struct {
	walletRepo   ports.WalletRepository
	transactor   ports.DBTransactor
	initialGrant decimal.Decimal
	currency     string
	log          zerolog.Logger
}

func NewWalletService(
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	initialGrant decimal.Decimal,
	currency string,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:   walletRepo,
		transactor:   transactor,
		initialGrant: initialGrant,
		currency:     currency,
		log:          log,
	}
}

// Get returns the wallet for userID without creating it; nil when absent.
func (s *WalletServiceImpl) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, apperror.ErrUserIDRequired()
	}
	w, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	return w, nil
}

// GetOrCreate returns the wallet for userID, creating it with the initial
// grant when absent. Creating is the only path that applies the grant.
func (s *WalletServiceImpl) GetOrCreate(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, apperror.ErrUserIDRequired()
	}

	w, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if w != nil {
		return w, nil
	}

	created, err := s.create(ctx, userID, s.initialGrant)
	if err == nil {
		return created, nil
	}
	// Lost a creation race: the winner's wallet is authoritative.
	if errors.Is(err, ports.ErrDuplicateWallet) {
		w, rerr := s.walletRepo.GetByUserID(ctx, userID)
		if rerr != nil {
			return nil, apperror.InternalError(fmt.Errorf("reread wallet after race: %w", rerr))
		}
		if w != nil {
			return w, nil
		}
	}
	return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
}

// Credit adds amount to the wallet, creating it with balance = amount when
// absent (no initial grant on the credit path).
func (s *WalletServiceImpl) Credit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error) {
	if userID == "" || amount.IsZero() {
		return nil, apperror.ErrUserIDAndAmountRequired()
	}
	if amount.IsNegative() {
		return nil, apperror.ErrAmountNotPositive()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	w, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if w == nil {
		now := time.Now().UTC()
		w = &domain.Wallet{
			ID:        newWalletID(),
			UserID:    userID,
			Balance:   amount,
			Currency:  s.currency,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.walletRepo.Create(ctx, dbTx, w); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create wallet on credit: %w", err))
		}
	} else {
		w.Balance = w.Balance.Add(amount)
		if err := s.walletRepo.UpdateBalance(ctx, dbTx, w.ID, w.Balance); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("user_id", userID).Str("amount", amount.String()).Msg("wallet credited")
	return w, nil
}

// Debit subtracts amount from the wallet. The funds check happens under
// the row lock, so the balance can never go negative.
func (s *WalletServiceImpl) Debit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Wallet, error) {
	if userID == "" || amount.IsZero() {
		return nil, apperror.ErrUserIDAndAmountRequired()
	}
	if amount.IsNegative() {
		return nil, apperror.ErrAmountNotPositive()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	w, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if w == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !w.CanDebit(amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	w.Balance = w.Balance.Sub(amount)
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, w.ID, w.Balance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit wallet: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("user_id", userID).Str("amount", amount.String()).Msg("wallet debited")
	return w, nil
}

// create inserts a fresh wallet with the given starting balance inside its
// own transaction.
func (s *WalletServiceImpl) create(ctx context.Context, userID string, balance decimal.Decimal) (*domain.Wallet, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:        newWalletID(),
		UserID:    userID,
		Balance:   balance,
		Currency:  s.currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.Create(ctx, dbTx, w); err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("balance", balance.String()).Msg("wallet created")
	return w, nil
}

func newWalletID() string {
	return "w_" + uuid.Must(uuid.NewV7()).String()
}
