package handler

import (
	"vault-engine/internal/adapter/http/middleware"
	"vault-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies; submissions carry at most 64 accounts.
const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ExecutorSvc    ports.ExecutorService
	QuerySvc       ports.QueryService
	AuthSvc        ports.AuthService
	FaucetSvc      ports.FaucetService // nil = faucet disabled
	TokenSvc       ports.TokenService
	RateLimiter    ports.RateLimiter // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Mode           string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rl := func(group string) gin.HandlerFunc {
		rule, ok := deps.RateLimitRules[group]
		if deps.RateLimiter == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	txHandler := NewTransactionHandler(deps.ExecutorSvc)
	v1.POST("/transactions", rl(middleware.GroupSubmit), txHandler.Submit)

	accountHandler := NewAccountHandler(deps.QuerySvc)
	v1.GET("/accounts/:address", rl(middleware.GroupQuery), accountHandler.GetAccount)

	receiptHandler := NewReceiptHandler(deps.QuerySvc)
	receipts := v1.Group("/receipts", rl(middleware.GroupQuery))
	{
		receipts.GET("", receiptHandler.ListReceipts)
		receipts.GET("/:hash", receiptHandler.GetReceipt)
	}

	authHandler := NewAuthHandler(deps.AuthSvc)
	operator := v1.Group("/operator", rl(middleware.GroupOperator))
	{
		operator.POST("/login", authHandler.Login)
		if deps.FaucetSvc != nil {
			jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
			operator.POST("/airdrop", jwtAuth, NewFaucetHandler(deps.FaucetSvc).Airdrop)
		}
	}

	return r
}
