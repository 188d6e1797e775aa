package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postTransfer fires a wallet transfer and returns the HTTP status plus the
// transaction id when the call succeeded. Safe for concurrent use.
func postTransfer(t *testing.T, app *testApp, body string, idempotencyKey string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/transfers/wallet", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result struct {
		Txn struct {
			ID string `json:"id"`
		} `json:"txn"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result.Txn.ID
}

// TestConcurrentTransfers_NoOverspend fires more debits than the wallet can
// cover. Row locking must admit exactly as many as the balance allows and
// the final balance must be exactly zero, never negative.
func TestConcurrentTransfers_NoOverspend(t *testing.T) {
	app := newTestApp(t)
	app.seedWallet(t, "spender")

	// 50000.00 balance, 60 concurrent debits of 1000 each: exactly 50 can
	// succeed.
	concurrency := 60
	var wg sync.WaitGroup
	var succeeded, rejected atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"from":"spender","to":"payee-%d@upi","amount":1000}`, idx)
			status, _ := postTransfer(t, app, body, "")
			switch status {
			case http.StatusOK:
				succeeded.Add(1)
			case http.StatusBadRequest:
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), succeeded.Load(), "exactly the covered debits succeed")
	assert.Equal(t, int64(10), rejected.Load(), "the rest are rejected for insufficient balance")
	requireDecimalEqual(t, "0.00", app.balance(t, "spender"))
}

// TestConcurrentOpposingTransfers runs transfers in both directions between
// the same two wallets at once. The lock ordering must not deadlock and the
// total funds must be conserved.
func TestConcurrentOpposingTransfers(t *testing.T) {
	app := newTestApp(t)
	app.seedWallet(t, "alice")
	app.seedWallet(t, "bob")

	rounds := 20
	var wg sync.WaitGroup

	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			status, _ := postTransfer(t, app, `{"from":"alice","to":"bob","amount":100}`, "")
			assert.Equal(t, http.StatusOK, status)
		}()
		go func() {
			defer wg.Done()
			status, _ := postTransfer(t, app, `{"from":"bob","to":"alice","amount":100}`, "")
			assert.Equal(t, http.StatusOK, status)
		}()
	}
	wg.Wait()

	// Equal traffic both ways: both wallets end where they started.
	requireDecimalEqual(t, "50000.00", app.balance(t, "alice"))
	requireDecimalEqual(t, "50000.00", app.balance(t, "bob"))
}

// TestConcurrentSameIdempotencyKey hammers one logical transfer with the
// same key. However the requests interleave, the wallet is debited exactly
// once and every successful response carries the same transaction id.
func TestConcurrentSameIdempotencyKey(t *testing.T) {
	app := newTestApp(t)
	app.seedWallet(t, "alice")
	app.seedWallet(t, "bob")

	concurrency := 20
	body := `{"from":"alice","to":"bob","amount":500}`

	var wg sync.WaitGroup
	txIDs := make([]string, concurrency)
	var succeeded atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			status, id := postTransfer(t, app, body, "order-unique-1")
			if status == http.StatusOK {
				succeeded.Add(1)
				txIDs[idx] = id
			}
		}(i)
	}
	wg.Wait()

	require.GreaterOrEqual(t, succeeded.Load(), int64(1), "at least the first request must succeed")

	unique := make(map[string]struct{})
	for _, id := range txIDs {
		if id != "" {
			unique[id] = struct{}{}
		}
	}
	assert.Len(t, unique, 1, "every successful response replays the same transaction")

	// Exactly one debit landed. Racers that lost the duplicate-key race
	// rolled back completely.
	requireDecimalEqual(t, "49500.00", app.balance(t, "alice"))
	requireDecimalEqual(t, "50500.00", app.balance(t, "bob"))
}
