package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mpesa-push-relay/config"
	"mpesa-push-relay/internal/adapter/gateway/daraja"
	httpHandler "mpesa-push-relay/internal/adapter/http/handler"
	redisStorage "mpesa-push-relay/internal/adapter/storage/redis"
	"mpesa-push-relay/internal/adapter/wallet"
	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/internal/service"
	"mpesa-push-relay/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("gateway", cfg.Daraja.BaseURL).
		Msg("Starting M-Pesa push relay")

	ctx := context.Background()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Gateway client and credential cache
	gateway := daraja.NewClient(cfg.Daraja, log)
	credentials := service.NewCredentialCache(gateway, cfg.Daraja.TokenMargin, log)

	// Core services
	builder := service.NewPushBuilder(
		cfg.Daraja.ShortCode,
		cfg.Daraja.PassKey,
		cfg.Daraja.CallbackURL,
		cfg.Daraja.AccountRef,
		cfg.Daraja.TransactionDesc,
		cfg.Daraja.Timezone,
	)
	pushSvc := service.NewPushService(builder, credentials, gateway, log)
	statusSvc := service.NewStatusService(builder, credentials, gateway, log)

	forwarder := wallet.NewForwarder(cfg.Wallet, log)
	dedupeStore := redisStorage.NewDedupeStore(rdb)
	relaySvc := service.NewRelayService(forwarder, dedupeStore, log)

	// Rate limit store and health checkers
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		PushSvc:        pushSvc,
		RelaySvc:       relaySvc,
		StatusSvc:      statusSvc,
		Credentials:    credentials,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{redisHealth},
		GatewayURL:     cfg.Daraja.BaseURL,
		CallbackURL:    cfg.Daraja.CallbackURL,
		WalletURL:      cfg.Wallet.CallbackEndpoint(),
		StartedAt:      time.Now(),
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
