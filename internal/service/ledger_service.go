package service

import (
	"context"
	"fmt"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"

	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService: read access to the
// append-only transaction history.
type LedgerServiceImpl struct {
	txRepo ports.TransactionRepository
	log    zerolog.Logger
}

func NewLedgerService(txRepo ports.TransactionRepository, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{txRepo: txRepo, log: log}
}

// History returns all transactions, newest first.
func (s *LedgerServiceImpl) History(ctx context.Context) ([]domain.Transaction, error) {
	return s.List(ctx, ports.TransactionFilter{})
}

// List applies the filter, newest first.
func (s *LedgerServiceImpl) List(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	txns, err := s.txRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// Get returns one transaction by id.
func (s *LedgerServiceImpl) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}
	return txn, nil
}
