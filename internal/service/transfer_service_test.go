package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/internal/core/ports/mocks"
	"digital-wallet-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type transferTestDeps struct {
	svc        *TransferServiceImpl
	resolver   *mocks.MockIdentityResolver
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	idempRepo  *mocks.MockIdempotencyRepository
	idempCache *mocks.MockIdempotencyCache
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupTransferService(t *testing.T) *transferTestDeps {
	ctrl := gomock.NewController(t)
	d := &transferTestDeps{
		resolver:   mocks.NewMockIdentityResolver(ctrl),
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		idempRepo:  mocks.NewMockIdempotencyRepository(ctrl),
		idempCache: mocks.NewMockIdempotencyCache(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewTransferService(
		d.resolver, d.walletRepo, d.txRepo, d.idempRepo, d.idempCache,
		d.transactor, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func wallet(userID, balance string) *domain.Wallet {
	return &domain.Wallet{
		ID:       "w_" + userID,
		UserID:   userID,
		Balance:  decimal.RequireFromString(balance),
		Currency: "INR",
	}
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ==================== TransferWallet Tests ====================

func TestTransferService_TransferWallet_InternalDestination(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.resolver.EXPECT().Resolve(ctx, "9876543210").Return("u_alice", nil)
	d.resolver.EXPECT().Resolve(ctx, "u_bob").Return("u_bob", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// Lexicographic lock order: u_alice before u_bob.
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "50000.00"), nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_bob").Return(wallet("u_bob", "100.00"), nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, "w_u_alice", amt("49800.00")).Return(nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, "w_u_bob", amt("300.00")).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:   "9876543210",
		To:     "u_bob",
		Amount: amt("200.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "u_alice", result.From)
	assert.Equal(t, "u_bob", result.To)
	assert.Equal(t, domain.TransactionStatusSuccess, result.Status)
	assert.Equal(t, domain.TransactionMethodWallet, result.Method)
	assert.True(t, result.Amount.Equal(amt("200.00")))
}

func TestTransferService_TransferWallet_ExternalDestination(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.resolver.EXPECT().Resolve(ctx, "merchant_1").Return("", apperror.ErrWalletNotFound())
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "1000.00"), nil)
	// Only the sender side moves; the ledger still records the intent.
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, "w_u_alice", amt("800.00")).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:   "u_alice",
		To:     "merchant_1",
		Amount: amt("200.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "merchant_1", result.To)
	assert.Equal(t, domain.TransactionStatusSuccess, result.Status)
}

func TestTransferService_TransferWallet_DestinationWithoutWallet(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.resolver.EXPECT().Resolve(ctx, "bob@example.com").Return("u_bob", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "1000.00"), nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_bob").Return(nil, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, "w_u_alice", amt("750.00")).Return(nil)
	// Credit path creates the destination wallet starting at the amount.
	d.walletRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, w *domain.Wallet) error {
			assert.Equal(t, "u_bob", w.UserID)
			assert.True(t, w.Balance.Equal(amt("250.00")))
			return nil
		})
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	_, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:   "u_alice",
		To:     "bob@example.com",
		Amount: amt("250.00"),
	})
	require.NoError(t, err)
}

func TestTransferService_TransferWallet_SelfTransferNetsToZero(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.resolver.EXPECT().Resolve(ctx, "alice@example.com").Return("u_alice", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "100.00"), nil)
	// No UpdateBalance calls: the balance must not move.
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:   "u_alice",
		To:     "alice@example.com",
		Amount: amt("50.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusSuccess, result.Status)
}

func TestTransferService_TransferWallet_InsufficientBalance(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.resolver.EXPECT().Resolve(ctx, "merchant_1").Return("", apperror.ErrWalletNotFound())
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "10.00"), nil)

	_, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:   "u_alice",
		To:     "merchant_1",
		Amount: amt("10.01"),
	})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Insufficient balance", appErr.Message)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestTransferService_TransferWallet_ExactBalanceSucceeds(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.resolver.EXPECT().Resolve(ctx, "merchant_1").Return("", apperror.ErrWalletNotFound())
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "10.00"), nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, "w_u_alice", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, _ string, balance decimal.Decimal) error {
			assert.True(t, balance.IsZero())
			return nil
		})
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	_, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:   "u_alice",
		To:     "merchant_1",
		Amount: amt("10.00"),
	})
	assert.NoError(t, err)
}

func TestTransferService_TransferWallet_SenderNotFound(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.resolver.EXPECT().Resolve(ctx, "ghost").Return("", apperror.ErrWalletNotFound())

	_, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:   "ghost",
		To:     "u_bob",
		Amount: amt("1.00"),
	})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Sender wallet not found", appErr.Message)
}

func TestTransferService_TransferWallet_Validation(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	cases := []ports.WalletTransferRequest{
		{From: "", To: "u_bob", Amount: amt("1.00")},
		{From: "u_alice", To: "", Amount: amt("1.00")},
		{From: "u_alice", To: "u_bob", Amount: decimal.Zero},
		{From: "u_alice", To: "u_bob", Amount: amt("-5.00")},
	}
	for _, req := range cases {
		_, err := d.svc.TransferWallet(context.Background(), req)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "from, to and valid amount are required", appErr.Message)
	}
}

func TestTransferService_TransferWallet_IdempotentReplayFromCache(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	recorded := &domain.Transaction{
		ID:     "tx_recorded",
		From:   "u_alice",
		To:     "u_bob",
		Amount: amt("200.00"),
		Status: domain.TransactionStatusSuccess,
		Method: domain.TransactionMethodWallet,
	}
	respJSON, err := json.Marshal(recorded)
	require.NoError(t, err)

	key := domain.BuildIdempotencyKey("u_alice", "client-key-1")
	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.idempCache.EXPECT().Get(ctx, key).Return(respJSON, nil)
	// No transactor.Begin: nothing must touch storage on a replay.

	result, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:           "u_alice",
		To:             "u_bob",
		Amount:         amt("200.00"),
		IdempotencyKey: "client-key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx_recorded", result.ID)
}

func TestTransferService_TransferWallet_IdempotentReplayFromDurableLog(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	recorded := &domain.Transaction{ID: "tx_recorded", From: "u_alice", To: "u_bob", Amount: amt("200.00")}
	respJSON, err := json.Marshal(recorded)
	require.NoError(t, err)

	key := domain.BuildIdempotencyKey("u_alice", "client-key-1")
	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	// Cache down: falls through to the durable log.
	d.idempCache.EXPECT().Get(ctx, key).Return(nil, errors.New("redis down"))
	d.idempRepo.EXPECT().Get(ctx, key).Return(&domain.IdempotencyLog{
		Key:           key,
		TransactionID: "tx_recorded",
		ResponseJSON:  respJSON,
	}, nil)

	result, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:           "u_alice",
		To:             "u_bob",
		Amount:         amt("200.00"),
		IdempotencyKey: "client-key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx_recorded", result.ID)
}

func TestTransferService_TransferWallet_FirstUseRecordsIdempotency(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	key := domain.BuildIdempotencyKey("u_alice", "client-key-1")

	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.idempCache.EXPECT().Get(ctx, key).Return(nil, nil)
	d.idempRepo.EXPECT().Get(ctx, key).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "merchant_1").Return("", apperror.ErrWalletNotFound())
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "1000.00"), nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, "w_u_alice", amt("800.00")).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.idempRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, entry *domain.IdempotencyLog) error {
			assert.Equal(t, key, entry.Key)
			return nil
		})
	d.idempCache.EXPECT().Set(ctx, key, gomock.Any(), idempotencyTTL).Return(nil)

	_, err := d.svc.TransferWallet(ctx, ports.WalletTransferRequest{
		From:           "u_alice",
		To:             "merchant_1",
		Amount:         amt("200.00"),
		IdempotencyKey: "client-key-1",
	})
	assert.NoError(t, err)
}

// ==================== TransferBank Tests ====================

func TestTransferService_TransferBank_RecordsPending(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "5000.00"), nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, "w_u_alice", amt("4000.00")).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.TransferBank(ctx, ports.BankTransferRequest{
		From:    "u_alice",
		Account: "12345678901",
		IFSC:    "HDFC0001234",
		Amount:  amt("1000.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, result.Status)
	assert.Equal(t, domain.TransactionMethodBank, result.Method)
	assert.Equal(t, "12345678901", result.To)
	assert.Equal(t, "HDFC0001234", result.BankIFSC)
}

func TestTransferService_TransferBank_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.resolver.EXPECT().Resolve(ctx, "u_alice").Return("u_alice", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "u_alice").Return(wallet("u_alice", "10.00"), nil)
	// No UpdateBalance, no ledger append.

	_, err := d.svc.TransferBank(ctx, ports.BankTransferRequest{
		From:    "u_alice",
		Account: "12345678901",
		IFSC:    "HDFC0001234",
		Amount:  amt("1000.00"),
	})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Insufficient balance", appErr.Message)
}

func TestTransferService_TransferBank_Validation(t *testing.T) {
	d := setupTransferService(t)
	defer d.ctrl.Finish()

	cases := []ports.BankTransferRequest{
		{From: "", Account: "123", IFSC: "HDFC0001234", Amount: amt("1.00")},
		{From: "u_a", Account: "", IFSC: "HDFC0001234", Amount: amt("1.00")},
		{From: "u_a", Account: "123", IFSC: "", Amount: amt("1.00")},
		{From: "u_a", Account: "123", IFSC: "HDFC0001234", Amount: decimal.Zero},
	}
	for _, req := range cases {
		_, err := d.svc.TransferBank(context.Background(), req)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "from, account, ifsc and valid amount are required", appErr.Message)
	}
}
