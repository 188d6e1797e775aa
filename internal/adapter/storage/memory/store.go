// Package memory is the process-local fallback storage strategy. It
// implements the same ports as the postgres adapter and is selected once at
// startup (storage.driver: memory); business logic never branches on it.
//
// Atomicity model: the transactor takes a store-wide write lock for the
// duration of each transaction (single-writer), and every mutation records
// an undo step so Rollback restores the pre-transaction state. Reads
// outside a transaction take the read lock, so partial state is never
// observable.
package memory

import (
	"context"
	"sync"

	"digital-wallet-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store holds all in-memory state. Create one per process (or per test);
// there is deliberately no package-level instance.
type Store struct {
	mu sync.RWMutex

	accounts      map[string]*accountRecord
	wallets       map[string]*walletRecord // by wallet id
	walletsByUser map[string]string        // user id -> wallet id
	txnOrder      []string                 // append order, oldest first
	txns          map[string]*txnRecord
	idempotency   map[string]*idempotencyRecord
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts:      make(map[string]*accountRecord),
		wallets:       make(map[string]*walletRecord),
		walletsByUser: make(map[string]string),
		txns:          make(map[string]*txnRecord),
		idempotency:   make(map[string]*idempotencyRecord),
	}
}

// --- Transactor ---

// Transactor implements ports.DBTransactor with store-wide mutual
// exclusion: one open transaction at a time.
type Transactor struct {
	store *Store
}

// NewTransactor creates a transactor bound to the store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin acquires the store's write lock and returns the transaction handle.
// The lock is held until Commit or Rollback.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.store.mu.Lock()
	return &memTx{store: t.store}, nil
}

// memTx implements the pgx.Tx surface the repositories use. Mutations are
// applied in place; each registers an undo step replayed on Rollback.
type memTx struct {
	store *Store
	undo  []func()
	done  bool
}

func (t *memTx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		// Rollback after Commit is a no-op, mirroring deferred rollbacks.
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

// Remaining pgx.Tx methods exist only to satisfy the interface; the
// repositories never call them on the memory strategy.

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }

// asMemTx validates that a pgx.Tx handed to a repository came from this
// package's transactor.
func asMemTx(tx pgx.Tx) (*memTx, error) {
	m, ok := tx.(*memTx)
	if !ok {
		return nil, ports.ErrForeignTx
	}
	return m, nil
}
