package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Balances and amounts serialize as JSON numbers, matching the public
	// API contract. Values are currency-scale decimals, so the encoding
	// is exact.
	decimal.MarshalJSONWithoutQuotes = true
}

// Wallet is the balance record for an account. One wallet per account id,
// created lazily on first access and never deleted. The balance is an
// exact currency-scale decimal and is never negative.
type Wallet struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CanDebit reports whether the wallet holds at least amount. The
// comparison is exact at currency-unit precision.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
