// Package dto defines the HTTP request shapes. Field presence is checked
// in the handlers rather than with binding tags so the client-facing
// messages stay stable regardless of which field is missing.
package dto

import "github.com/shopspring/decimal"

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login. Identifier is an email
// or a phone number in any accepted form.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// WalletTransferRequest is the body of POST /api/transfers/wallet.
// Amount accepts a JSON number; decimal parsing keeps fractional paise
// exact.
type WalletTransferRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// BankTransferRequest is the body of POST /api/transfers/bank.
type BankTransferRequest struct {
	From    string          `json:"from"`
	Account string          `json:"account"`
	IFSC    string          `json:"ifsc"`
	Amount  decimal.Decimal `json:"amount"`
}

// WalletMutationRequest is the body of POST /api/wallet/add and
// POST /api/wallet/deduct.
type WalletMutationRequest struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}
