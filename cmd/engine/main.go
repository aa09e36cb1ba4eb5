package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vault-engine/config"
	httpHandler "vault-engine/internal/adapter/http/handler"
	"vault-engine/internal/adapter/http/middleware"
	pgStorage "vault-engine/internal/adapter/storage/postgres"
	redisStorage "vault-engine/internal/adapter/storage/redis"
	"vault-engine/internal/builtin"
	"vault-engine/internal/core/ports"
	"vault-engine/internal/service"
	"vault-engine/pkg/logger"

	"github.com/gagliardetto/solana-go"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(hashPassword())
	}

	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty, "engine")

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("program_id", cfg.Engine.ProgramID).
		Msg("Starting vault engine")

	programID, err := solana.PublicKeyFromBase58(cfg.Engine.ProgramID)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid engine.program_id")
	}
	tokenProgramID, err := solana.PublicKeyFromBase58(cfg.Engine.TokenProgramID)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid engine.token_program_id")
	}
	engineCfg, err := service.NewEngineConfig(programID, tokenProgramID)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid engine configuration")
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	log.Info().Msg("PostgreSQL connected")

	// Redis
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	accountRepo := pgStorage.NewAccountRepo(pool)
	receiptRepo := pgStorage.NewReceiptRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool, cfg.Database.LockTimeout)

	nonceStore := redisStorage.NewNonceStore(rdb)
	receiptCache := redisStorage.NewReceiptCache(rdb)

	// Programs
	runtime := service.NewRuntime(cfg.Engine.MaxInvokeDepth, log,
		service.NewEngine(engineCfg, log),
		builtin.NewSystemProgram(),
		builtin.NewTokenProgram(engineCfg.TokenProgramID),
	)

	executorSvc := service.NewExecutorService(engineCfg, runtime, accountRepo, receiptRepo,
		nonceStore, receiptCache, transactor, cfg.Engine.ReplayTTL, log)
	querySvc := service.NewQueryService(engineCfg, runtime, accountRepo, receiptRepo, receiptCache, log)

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewOperatorTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(cfg.Operator.Username, cfg.Operator.PasswordHash, hashSvc, tokenSvc)

	var faucetSvc ports.FaucetService
	if cfg.Operator.PasswordHash != "" {
		if cfg.JWT.Secret == "" {
			log.Fatal().Msg("jwt.secret is required when operator login is enabled")
		}
		faucetSvc = service.NewFaucetService(accountRepo, transactor, log)
	} else {
		log.Warn().Msg("operator.password_hash not set, operator routes disabled")
	}

	deps := httpHandler.RouterDeps{
		ExecutorSvc:    executorSvc,
		QuerySvc:       querySvc,
		AuthSvc:        authSvc,
		FaucetSvc:      faucetSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		AuditSvc:       service.NewAuditService(auditRepo, log),
		Mode:           cfg.Server.Mode,
		Logger:         log,
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = redisStorage.NewRateLimitStore(rdb)
		deps.RateLimitRules = middleware.RateLimitRules(cfg.RateLimit)
	}
	router := httpHandler.SetupRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// hashPassword reads a password from stdin and prints the argon2id hash to put
// in operator.password_hash.
func hashPassword() int {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintf(os.Stderr, "reading password: %v\n", err)
		return 1
	}
	hash, err := service.NewArgon2HashService().Hash(strings.TrimRight(line, "\r\n"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashing password: %v\n", err)
		return 1
	}
	fmt.Println(hash)
	return 0
}
