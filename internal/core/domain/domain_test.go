package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIndianPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9876543210", "9876543210"},
		{"+919876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"98765 43210", "9876543210"},
		{"98-76-54-32-10", "9876543210"},
		{"6000000000", "6000000000"},
		{"5876543210", ""},  // must start 6-9
		{"987654321", ""},   // too short
		{"98765432100", ""}, // 11 digits, no 91 prefix
		{"+918876543210", "8876543210"},
		{"", ""},
		{"not-a-phone", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeIndianPhone(tt.in), "input %q", tt.in)
	}
}

func TestPhoneVariants_BothFormsResolveSame(t *testing.T) {
	bare := PhoneVariants("9876543210")
	prefixed := PhoneVariants("+919876543210")

	require.Equal(t, []string{"9876543210", "+919876543210"}, bare)
	assert.Equal(t, bare, prefixed)

	assert.Nil(t, PhoneVariants("12345"))
}

func TestStoredPhoneForm(t *testing.T) {
	assert.Equal(t, "+919876543210", StoredPhoneForm("9876543210"))
	assert.Equal(t, "+919876543210", StoredPhoneForm("+91 98765 43210"))
	assert.Equal(t, "", StoredPhoneForm("123"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.True(t, ValidEmail("a.b+c@sub.domain.in"))
	assert.False(t, ValidEmail("user@example"))
	assert.False(t, ValidEmail("user example@x.com"))
	assert.False(t, ValidEmail(""))
}

func TestValidatePassword(t *testing.T) {
	assert.Equal(t, "", ValidatePassword("Secret1"))
	assert.Contains(t, ValidatePassword("Ab1"), "6 characters")
	assert.Contains(t, ValidatePassword("secret1"), "uppercase")
	assert.Contains(t, ValidatePassword("SECRET1"), "lowercase")
	assert.Contains(t, ValidatePassword("Secrets"), "numeric")
}

func TestWallet_CanDebit_ExactComparison(t *testing.T) {
	w := &Wallet{Balance: decimal.RequireFromString("100.00")}

	assert.True(t, w.CanDebit(decimal.RequireFromString("100.00")))
	assert.True(t, w.CanDebit(decimal.RequireFromString("99.99")))
	assert.False(t, w.CanDebit(decimal.RequireFromString("100.01")))
}

func TestNewTransactionID_UniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 1000; i++ {
		id := NewTransactionID()
		require.True(t, strings.HasPrefix(id, "tx_"))
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		if prev != "" {
			// UUIDv7 ids created in sequence sort ascending.
			assert.LessOrEqual(t, prev, id)
		}
		prev = id
	}
}

func TestTransaction_StatusTransitions(t *testing.T) {
	pending := &Transaction{Status: TransactionStatusPending}
	assert.True(t, pending.CanTransition(TransactionStatusSuccess))
	assert.True(t, pending.CanTransition(TransactionStatusFailed))
	assert.False(t, pending.CanTransition(TransactionStatusPending))

	done := &Transaction{Status: TransactionStatusSuccess}
	assert.True(t, done.IsTerminal())
	assert.False(t, done.CanTransition(TransactionStatusFailed))

	failed := &Transaction{Status: TransactionStatusFailed}
	assert.True(t, failed.IsTerminal())
	assert.False(t, failed.CanTransition(TransactionStatusSuccess))
}

func TestWallet_BalanceMarshalsAsNumber(t *testing.T) {
	w := &Wallet{Balance: decimal.RequireFromString("49800"), Currency: "INR"}
	raw, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"balance":49800`)
}

func TestBuildIdempotencyKey(t *testing.T) {
	assert.Equal(t, "u_1:key-9", BuildIdempotencyKey("u_1", "key-9"))
}
