package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Request Validation (REQ) ----

// ErrInvalidRequest reports malformed or missing input. Always a client
// error, detected before any mutation.
func ErrInvalidRequest(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}

func ErrUserIDRequired() *AppError {
	return New("REQ_002", "userId required", http.StatusBadRequest)
}

func ErrUserIDAndAmountRequired() *AppError {
	return New("REQ_003", "userId and amount required", http.StatusBadRequest)
}

func ErrAmountNotPositive() *AppError {
	return New("REQ_004", "Amount must be positive", http.StatusBadRequest)
}

func ErrWalletTransferFields() *AppError {
	return New("REQ_005", "from, to and valid amount are required", http.StatusBadRequest)
}

func ErrBankTransferFields() *AppError {
	return New("REQ_006", "from, account, ifsc and valid amount are required", http.StatusBadRequest)
}

// ---- Ledger & Wallet Business Logic (LGR) ----

func ErrInsufficientBalance() *AppError {
	return New("LGR_001", "Insufficient balance", http.StatusBadRequest)
}

func ErrWalletNotFound() *AppError {
	return New("LGR_002", "Wallet not found", http.StatusNotFound)
}

func ErrSenderNotFound() *AppError {
	return New("LGR_003", "Sender wallet not found", http.StatusNotFound)
}

func ErrTransactionNotFound() *AppError {
	return New("LGR_004", "Not found", http.StatusNotFound)
}

func ErrInvalidStatusTransition(from, to string) *AppError {
	return New("LGR_005", fmt.Sprintf("cannot transition transaction from %s to %s", from, to), http.StatusConflict)
}

// ---- Identity & Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrAccountExists() *AppError {
	return New("AUTH_002", "User already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidEmail() *AppError {
	return New("AUTH_004", "Invalid email format", http.StatusBadRequest)
}

func ErrInvalidPhone() *AppError {
	return New("AUTH_005", "Invalid Indian phone number. Must be 10 digits starting with 6-9", http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps a storage or infrastructure failure as an opaque
// server error. The wrapped error is logged, never sent to the client.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
