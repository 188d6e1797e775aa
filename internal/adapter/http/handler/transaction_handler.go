package handler

import (
	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"
	"digital-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler handles ledger read endpoints.
type TransactionHandler struct {
	ledgerSvc ports.LedgerService
}

func NewTransactionHandler(ledgerSvc ports.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc}
}

// List handles GET /api/transactions?status=&q=.
func (h *TransactionHandler) List(c *gin.Context) {
	filter := ports.TransactionFilter{Query: c.Query("q")}

	if raw := c.Query("status"); raw != "" {
		status := domain.TransactionStatus(raw)
		switch status {
		case domain.TransactionStatusPending, domain.TransactionStatusSuccess, domain.TransactionStatusFailed:
			filter.Status = &status
		default:
			response.Error(c, apperror.ErrInvalidRequest("invalid status filter"))
			return
		}
	}

	txns, err := h.ledgerSvc.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"transactions": txns})
}

// Get handles GET /api/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	txn, err := h.ledgerSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"txn": txn})
}
