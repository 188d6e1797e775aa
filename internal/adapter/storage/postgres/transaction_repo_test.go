package postgres

import (
	"context"
	"testing"
	"time"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:        domain.NewTransactionID(),
		From:      "u_sender",
		To:        "merchant_1",
		Amount:    decimal.RequireFromString("200.00"),
		Status:    domain.TransactionStatusSuccess,
		Method:    domain.TransactionMethodWallet,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func transactionColumns() []string {
	return []string{"id", "from_account", "to_account", "bank_ifsc", "amount", "status", "method", "created_at"}
}

func transactionRow(tx *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(transactionColumns()).AddRow(
		tx.ID, tx.From, tx.To, tx.BankIFSC, tx.Amount, tx.Status, tx.Method, tx.CreatedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.From, txn.To, txn.BankIFSC, txn.Amount, txn.Status, txn.Method, txn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(transactionRow(txn))

	result, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.True(t, txn.Amount.Equal(result.Amount))
}

func TestTransactionRepo_GetByID_Missing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs("tx_ghost").
		WillReturnRows(pgxmock.NewRows(transactionColumns()))

	result, err := repo.GetByID(context.Background(), "tx_ghost")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestTransactionRepo_List_NoFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions ORDER BY created_at DESC").
		WillReturnRows(transactionRow(txn))

	result, err := repo.List(context.Background(), ports.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, txn.ID, result[0].ID)
}

func TestTransactionRepo_List_StatusAndQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	status := domain.TransactionStatusPending

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE status = .+ ILIKE .+ ORDER BY created_at DESC").
		WithArgs(status, "%merchant%").
		WillReturnRows(pgxmock.NewRows(transactionColumns()))

	result, err := repo.List(context.Background(), ports.TransactionFilter{
		Status: &status,
		Query:  "merchant",
	})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_UpdateStatus_OnlyPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status .+ status = 'pending'").
		WithArgs(domain.TransactionStatusSuccess, "tx_1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	// Already-terminal rows are not matched: the update must fail loudly.
	err = repo.UpdateStatus(context.Background(), tx, "tx_1", domain.TransactionStatusSuccess)
	assert.Error(t, err)
}
