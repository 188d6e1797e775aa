package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// TransferServiceImpl implements ports.TransferService. A transfer is one
// storage transaction: sender debit, counterparty credit when the
// destination is internal, ledger append, and idempotency log.
type TransferServiceImpl struct {
	resolver   ports.IdentityResolver
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	idempRepo  ports.IdempotencyRepository
	idempCache ports.IdempotencyCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

func NewTransferService(
	resolver ports.IdentityResolver,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		resolver:   resolver,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		idempRepo:  idempRepo,
		idempCache: idempCache,
		transactor: transactor,
		log:        log,
	}
}

// TransferWallet moves funds from the sender's wallet to the destination.
// The destination may be anything resolvable (account id, email, phone) or
// an external counterparty; only internally resolvable destinations are
// credited, but the raw destination string is always what the ledger
// records.
func (s *TransferServiceImpl) TransferWallet(ctx context.Context, req ports.WalletTransferRequest) (*domain.Transaction, error) {
	if req.From == "" || req.To == "" || !req.Amount.IsPositive() {
		return nil, apperror.ErrWalletTransferFields()
	}

	senderID, err := s.resolver.Resolve(ctx, req.From)
	if err != nil {
		return nil, apperror.ErrSenderNotFound()
	}

	idempKey, cached, err := s.checkIdempotency(ctx, senderID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	// Destination resolution is best-effort: an unresolvable destination is
	// an external counterparty, recorded as intent only.
	destID, derr := s.resolver.Resolve(ctx, req.To)
	resolved := derr == nil
	internal := resolved && destID != senderID
	// Self-transfers net to zero but still require funds and still land in
	// the ledger.
	selfTransfer := resolved && destID == senderID

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	sender, dest, err := s.lockWallets(ctx, dbTx, senderID, destID, internal)
	if err != nil {
		return nil, err
	}
	if !sender.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	if !selfTransfer {
		if err := s.walletRepo.UpdateBalance(ctx, dbTx, sender.ID, sender.Balance.Sub(req.Amount)); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
		}
	}

	if internal {
		if dest == nil {
			// Resolvable account without a wallet yet: credit creates it,
			// starting from the credited amount.
			now := time.Now().UTC()
			dest = &domain.Wallet{
				ID:        newWalletID(),
				UserID:    destID,
				Balance:   req.Amount,
				Currency:  sender.Currency,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.walletRepo.Create(ctx, dbTx, dest); err != nil {
				return nil, apperror.InternalError(fmt.Errorf("create destination wallet: %w", err))
			}
		} else {
			if err := s.walletRepo.UpdateBalance(ctx, dbTx, dest.ID, dest.Balance.Add(req.Amount)); err != nil {
				return nil, apperror.InternalError(fmt.Errorf("credit destination: %w", err))
			}
		}
	}

	txn := &domain.Transaction{
		ID:        domain.NewTransactionID(),
		From:      senderID,
		To:        req.To,
		Amount:    req.Amount,
		Status:    domain.TransactionStatusSuccess,
		Method:    domain.TransactionMethodWallet,
		CreatedAt: time.Now().UTC(),
	}

	respJSON, err := s.appendAndCommit(ctx, dbTx, txn, idempKey)
	if err != nil {
		return nil, err
	}
	s.cacheResponse(ctx, idempKey, respJSON)

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("from", senderID).
		Str("to", req.To).
		Bool("internal", internal).
		Str("amount", req.Amount.String()).
		Msg("wallet transfer completed")

	return txn, nil
}

// TransferBank debits the sender and records a bank payout intent. The
// record stays pending: settlement happens outside this service and
// pending is terminal here.
func (s *TransferServiceImpl) TransferBank(ctx context.Context, req ports.BankTransferRequest) (*domain.Transaction, error) {
	if req.From == "" || req.Account == "" || req.IFSC == "" || !req.Amount.IsPositive() {
		return nil, apperror.ErrBankTransferFields()
	}

	senderID, err := s.resolver.Resolve(ctx, req.From)
	if err != nil {
		return nil, apperror.ErrSenderNotFound()
	}

	idempKey, cached, err := s.checkIdempotency(ctx, senderID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	sender, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, senderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock sender wallet: %w", err))
	}
	if sender == nil {
		return nil, apperror.ErrSenderNotFound()
	}
	if !sender.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, sender.ID, sender.Balance.Sub(req.Amount)); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}

	txn := &domain.Transaction{
		ID:        domain.NewTransactionID(),
		From:      senderID,
		To:        req.Account,
		BankIFSC:  req.IFSC,
		Amount:    req.Amount,
		Status:    domain.TransactionStatusPending,
		Method:    domain.TransactionMethodBank,
		CreatedAt: time.Now().UTC(),
	}

	respJSON, err := s.appendAndCommit(ctx, dbTx, txn, idempKey)
	if err != nil {
		return nil, err
	}
	s.cacheResponse(ctx, idempKey, respJSON)

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("from", senderID).
		Str("account", req.Account).
		Str("amount", req.Amount.String()).
		Msg("bank transfer recorded")

	return txn, nil
}

// checkIdempotency runs the two-layer replay check. Returns the scoped key
// (empty when the client sent none) and the previously recorded
// transaction on a hit.
func (s *TransferServiceImpl) checkIdempotency(ctx context.Context, senderID, clientKey string) (string, *domain.Transaction, error) {
	if clientKey == "" {
		return "", nil, nil
	}
	key := domain.BuildIdempotencyKey(senderID, clientKey)

	if s.idempCache != nil {
		cached, err := s.idempCache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("idempotency cache check failed, falling through to durable log")
		}
		if cached != nil {
			txn, err := unmarshalRecordedTransaction(cached)
			return key, txn, err
		}
	}

	entry, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("idempotency log check: %w", err))
	}
	if entry != nil {
		txn, err := unmarshalRecordedTransaction(entry.ResponseJSON)
		return key, txn, err
	}
	return key, nil, nil
}

// lockWallets acquires row locks for the transfer. When both sides are
// internal the locks are taken in lexicographic user-id order so two
// opposing transfers cannot deadlock.
func (s *TransferServiceImpl) lockWallets(ctx context.Context, dbTx pgx.Tx, senderID, destID string, internal bool) (sender, dest *domain.Wallet, err error) {
	lock := func(userID string) (*domain.Wallet, error) {
		w, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock wallet %s: %w", userID, err))
		}
		return w, nil
	}

	if !internal {
		sender, err = lock(senderID)
	} else if senderID < destID {
		if sender, err = lock(senderID); err == nil {
			dest, err = lock(destID)
		}
	} else {
		if dest, err = lock(destID); err == nil {
			sender, err = lock(senderID)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	if sender == nil {
		return nil, nil, apperror.ErrSenderNotFound()
	}
	return sender, dest, nil
}

// appendAndCommit writes the ledger record and, when a key is present, the
// idempotency log, then commits. Returns the serialized transaction for
// caching.
func (s *TransferServiceImpl) appendAndCommit(ctx context.Context, dbTx pgx.Tx, txn *domain.Transaction, idempKey string) ([]byte, error) {
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger record: %w", err))
	}

	respJSON, err := json.Marshal(txn)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}

	if idempKey != "" {
		entry := &domain.IdempotencyLog{
			Key:           idempKey,
			TransactionID: txn.ID,
			ResponseJSON:  respJSON,
			CreatedAt:     txn.CreatedAt,
		}
		if err := s.idempRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("save idempotency log: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return respJSON, nil
}

// cacheResponse stores the response in the fast-path cache, best-effort.
func (s *TransferServiceImpl) cacheResponse(ctx context.Context, idempKey string, respJSON []byte) {
	if idempKey == "" || s.idempCache == nil {
		return
	}
	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency response")
	}
}

func unmarshalRecordedTransaction(data []byte) (*domain.Transaction, error) {
	txn := &domain.Transaction{}
	if err := json.Unmarshal(data, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal recorded transaction: %w", err))
	}
	return txn, nil
}
