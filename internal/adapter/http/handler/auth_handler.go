package handler

import (
	"net/http"

	"digital-wallet-backend/internal/adapter/http/dto"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"
	"digital-wallet-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles account registration and login.
type AuthHandler struct {
	identitySvc ports.IdentityService
}

func NewAuthHandler(identitySvc ports.IdentityService) *AuthHandler {
	return &AuthHandler{identitySvc: identitySvc}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidRequest("fullname, password and email or phone are required"))
		return
	}

	account, err := h.identitySvc.Register(c.Request.Context(), ports.RegisterRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": account})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidCredentials())
		return
	}

	result, err := h.identitySvc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt.Unix(),
		"user":      result.Account,
	})
}

// HealthCheck handles GET /api/health, verifying every configured
// dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
