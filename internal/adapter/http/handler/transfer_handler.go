package handler

import (
	"digital-wallet-backend/internal/adapter/http/dto"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"
	"digital-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the optional client replay-protection key
// on money-movement endpoints.
const HeaderIdempotencyKey = "Idempotency-Key"

// TransferHandler handles the transfer endpoints.
type TransferHandler struct {
	transferSvc ports.TransferService
	ledgerSvc   ports.LedgerService
}

func NewTransferHandler(transferSvc ports.TransferService, ledgerSvc ports.LedgerService) *TransferHandler {
	return &TransferHandler{transferSvc: transferSvc, ledgerSvc: ledgerSvc}
}

// TransferWallet handles POST /api/transfers/wallet.
func (h *TransferHandler) TransferWallet(c *gin.Context) {
	var req dto.WalletTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrWalletTransferFields())
		return
	}

	txn, err := h.transferSvc.TransferWallet(c.Request.Context(), ports.WalletTransferRequest{
		From:           req.From,
		To:             req.To,
		Amount:         req.Amount,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"txn": txn})
}

// TransferBank handles POST /api/transfers/bank.
func (h *TransferHandler) TransferBank(c *gin.Context) {
	var req dto.BankTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrBankTransferFields())
		return
	}

	txn, err := h.transferSvc.TransferBank(c.Request.Context(), ports.BankTransferRequest{
		From:           req.From,
		Account:        req.Account,
		IFSC:           req.IFSC,
		Amount:         req.Amount,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"txn": txn})
}

// History handles GET /api/transfers/history.
func (h *TransferHandler) History(c *gin.Context) {
	txns, err := h.ledgerSvc.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"transactions": txns})
}
