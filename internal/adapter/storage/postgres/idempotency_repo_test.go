package postgres

import (
	"context"
	"testing"
	"time"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRepo_CreateAndGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	entry := &domain.IdempotencyLog{
		Key:           "u_1:client-key-1",
		TransactionID: "tx_abc",
		ResponseJSON:  []byte(`{"id":"tx_abc","status":"success"}`),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_logs").
		WithArgs(entry.Key, entry.TransactionID, entry.ResponseJSON, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), tx, entry))

	mock.ExpectQuery("SELECT .+ FROM idempotency_logs WHERE key").
		WithArgs(entry.Key).
		WillReturnRows(pgxmock.NewRows([]string{"key", "transaction_id", "response_json", "created_at"}).
			AddRow(entry.Key, entry.TransactionID, entry.ResponseJSON, entry.CreatedAt))

	got, err := repo.Get(context.Background(), entry.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.TransactionID, got.TransactionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get_Miss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM idempotency_logs WHERE key").
		WithArgs("absent").
		WillReturnRows(pgxmock.NewRows([]string{"key", "transaction_id", "response_json", "created_at"}))

	got, err := repo.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyRepo_Create_DuplicateKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	entry := &domain.IdempotencyLog{Key: "u_1:k", TransactionID: "tx_1", ResponseJSON: []byte(`{}`), CreatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_logs").
		WithArgs(entry.Key, entry.TransactionID, entry.ResponseJSON, entry.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, entry)
	assert.ErrorIs(t, err, ports.ErrDuplicateKey)
}
