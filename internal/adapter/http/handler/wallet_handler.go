package handler

import (
	"digital-wallet-backend/internal/adapter/http/dto"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"
	"digital-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet balance endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetBalance handles GET /api/wallet/balance?userId=. A first lookup
// creates the wallet with the initial grant.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, apperror.ErrUserIDRequired())
		return
	}

	w, err := h.walletSvc.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"balance": w.Balance, "currency": w.Currency})
}

// AddMoney handles POST /api/wallet/add.
func (h *WalletHandler) AddMoney(c *gin.Context) {
	var req dto.WalletMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrUserIDAndAmountRequired())
		return
	}

	w, err := h.walletSvc.Credit(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"balance": w.Balance})
}

// DeductMoney handles POST /api/wallet/deduct.
func (h *WalletHandler) DeductMoney(c *gin.Context) {
	var req dto.WalletMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrUserIDAndAmountRequired())
		return
	}

	w, err := h.walletSvc.Debit(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"balance": w.Balance})
}

// GetWallet handles GET /api/wallet/:userId. Unlike the balance lookup it
// never creates a wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID := c.Param("userId")

	w, err := h.walletSvc.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if w == nil {
		response.Error(c, apperror.ErrWalletNotFound())
		return
	}

	response.OK(c, gin.H{"wallet": w})
}
