package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digital-wallet-backend/config"
	httpHandler "digital-wallet-backend/internal/adapter/http/handler"
	memStorage "digital-wallet-backend/internal/adapter/storage/memory"
	pgStorage "digital-wallet-backend/internal/adapter/storage/postgres"
	redisStorage "digital-wallet-backend/internal/adapter/storage/redis"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/internal/service"
	"digital-wallet-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Digital Wallet Backend")

	ctx := context.Background()

	// Initialize the storage strategy
	var (
		accountRepo    ports.AccountRepository
		walletRepo     ports.WalletRepository
		txRepo         ports.TransactionRepository
		idempRepo      ports.IdempotencyRepository
		transactor     ports.DBTransactor
		healthCheckers []ports.HealthChecker
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		if err := pgStorage.Migrate(cfg.Database.DSN(), log); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}

		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")

		accountRepo = pgStorage.NewAccountRepo(pool)
		walletRepo = pgStorage.NewWalletRepo(pool)
		txRepo = pgStorage.NewTransactionRepo(pool)
		idempRepo = pgStorage.NewIdempotencyRepo(pool)
		transactor = pgStorage.NewTransactor(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))

	case config.StorageDriverMemory:
		log.Warn().Msg("Using in-memory storage, all state is lost on restart")

		store := memStorage.New()
		accountRepo = memStorage.NewAccountRepo(store)
		walletRepo = memStorage.NewWalletRepo(store)
		txRepo = memStorage.NewTransactionRepo(store)
		idempRepo = memStorage.NewIdempotencyRepo(store)
		transactor = memStorage.NewTransactor(store)
	}

	// Redis is optional: without it the idempotency fast path and rate
	// limiting are disabled, everything else works unchanged.
	var (
		idempCache     ports.IdempotencyCache
		rateLimitStore *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled() {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		idempCache = redisStorage.NewIdempotencyCache(rdb, 0)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Info().Msg("Redis not configured, idempotency cache and rate limiting disabled")
	}

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	initialGrant, err := cfg.Wallet.InitialGrantAmount()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid wallet configuration")
	}

	// Initialize business services
	identitySvc := service.NewIdentityService(accountRepo, walletRepo, hashSvc, tokenSvc, log)
	walletSvc := service.NewWalletService(walletRepo, transactor, initialGrant, cfg.Wallet.Currency, log)
	transferSvc := service.NewTransferService(
		identitySvc,
		walletRepo,
		txRepo,
		idempRepo,
		idempCache,
		transactor,
		log,
	)
	ledgerSvc := service.NewLedgerService(txRepo, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		IdentitySvc:    identitySvc,
		WalletSvc:      walletSvc,
		TransferSvc:    transferSvc,
		LedgerSvc:      ledgerSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
