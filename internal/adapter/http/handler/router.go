package handler

import (
	"time"

	"mpesa-push-relay/internal/adapter/http/middleware"
	redisStore "mpesa-push-relay/internal/adapter/storage/redis"
	"mpesa-push-relay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	PushSvc        ports.PushService
	RelaySvc       ports.RelayService
	StatusSvc      ports.StatusService
	Credentials    ports.CredentialProvider
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	GatewayURL     string
	CallbackURL    string
	WalletURL      string
	StartedAt      time.Time
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
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

	paymentHandler := NewPaymentHandler(deps.PushSvc)
	callbackHandler := NewCallbackHandler(deps.RelaySvc, deps.Logger)
	statusHandler := NewStatusHandler(deps.StatusSvc)
	tokenHandler := NewTokenHandler(deps.Credentials)

	r.POST("/pay", rl("pay"), paymentHandler.InitiatePush)
	r.POST("/callback", callbackHandler.Receive)
	r.GET("/status/:checkoutId", rl("status"), statusHandler.QueryStatus)
	r.GET("/token", tokenHandler.GetToken)

	r.GET("/health", HealthCheck(HealthInfo{
		GatewayURL:  deps.GatewayURL,
		CallbackURL: deps.CallbackURL,
		WalletURL:   deps.WalletURL,
		StartedAt:   deps.StartedAt,
	}, deps.HealthCheckers...))

	return r
}
