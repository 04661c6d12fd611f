package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/config"
	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/handler"
	"github.com/consultapay/checkout-gateway-go/internal/infra/cache"
	"github.com/consultapay/checkout-gateway-go/internal/infra/client"
	"github.com/consultapay/checkout-gateway-go/internal/infra/counter"
	"github.com/consultapay/checkout-gateway-go/internal/infra/keypool"
	"github.com/consultapay/checkout-gateway-go/internal/infra/observability"
	"github.com/consultapay/checkout-gateway-go/internal/infra/resilience"
	"github.com/consultapay/checkout-gateway-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("lookup_api_url", cfg.LookupAPIURL),
		zap.Int("lookup_api_keys", len(cfg.LookupAPIKeys)),
		zap.String("gateway_api_url", cfg.GatewayAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "checkout-gateway")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	lookupCache := cache.New[*domain.LookupResult](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	lookupCB := resilience.NewCircuitBreaker("cpf-lookup")
	gatewayCB := resilience.NewCircuitBreaker("payment-gateway")

	// --- API key pool ---
	keys, err := keypool.New(cfg.LookupAPIKeys)
	if err != nil {
		logger.Fatal("no lookup API keys configured, set LOOKUP_API_KEYS", zap.Error(err))
	}
	logger.Info("lookup key pool ready", zap.Int("keys", keys.Size()))

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	lookupClient := client.NewLookupClient(httpClient, cfg.LookupAPIURL, keys, lookupCB, logger)
	gatewayClient := client.NewGatewayClient(
		httpClient,
		cfg.GatewayAPIURL,
		cfg.GatewayPublicKey,
		cfg.GatewaySecretKey,
		cfg.GatewayCallbackURL,
		gatewayCB,
		resilienceCfg,
		logger,
	)

	// --- Counter store ---
	store := counter.NewFileStore(cfg.CounterFile, cfg.PaymentsLogFile)

	// --- Services ---
	lookupSvc := service.NewLookupService(lookupClient, lookupCache, cfg.MaxConcurrency, metrics, logger)
	paymentSvc := service.NewPaymentService(gatewayClient, metrics, logger)
	webhookSvc := service.NewWebhookService(store, cfg.WebhookSecret, metrics, logger)

	adminSvc := service.NewAdminService(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	if cfg.AdminPasswordHash == "" {
		logger.Warn("admin routes disabled, set ADMIN_PASSWORD_HASH to enable")
	}
	if cfg.WebhookSecret == "" {
		logger.Warn("WEBHOOK_SECRET not set, unsigned webhook deliveries will be accepted")
	}

	// --- Router ---
	router := handler.NewRouter(lookupSvc, paymentSvc, webhookSvc, adminSvc, keys, metrics, cfg.JWTAccessTTL, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
