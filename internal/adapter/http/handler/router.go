package handler

import (
	"digital-wallet-backend/internal/adapter/http/middleware"
	redisStore "digital-wallet-backend/internal/adapter/storage/redis"
	"digital-wallet-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	IdentitySvc    ports.IdentityService
	WalletSvc      ports.WalletService
	TransferSvc    ports.TransferService
	LedgerSvc      ports.LedgerService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	rules := middleware.DefaultRateLimitRules()

	// Helper: rate limiter middleware when a store is configured, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	api := r.Group("/api")

	api.GET("/health", HealthCheck(deps.HealthCheckers...))

	authHandler := NewAuthHandler(deps.IdentitySvc)
	auth := api.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	transferHandler := NewTransferHandler(deps.TransferSvc, deps.LedgerSvc)
	transfers := api.Group("/transfers")
	{
		transfers.POST("/wallet", rl("transfers"), transferHandler.TransferWallet)
		transfers.POST("/bank", rl("transfers"), transferHandler.TransferBank)
		transfers.GET("/history", rl("read"), transferHandler.History)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := api.Group("/wallet")
	{
		wallet.GET("/balance", rl("read"), walletHandler.GetBalance)
		wallet.POST("/add", rl("wallet_mutate"), walletHandler.AddMoney)
		wallet.POST("/deduct", rl("wallet_mutate"), walletHandler.DeductMoney)
		wallet.GET("/:userId", rl("read"), walletHandler.GetWallet)
	}

	transactionHandler := NewTransactionHandler(deps.LedgerSvc)
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	transactions := api.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("read"), transactionHandler.List)
		transactions.GET("/:id", rl("read"), transactionHandler.Get)
	}

	return r
}
