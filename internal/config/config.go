package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Lookup API
	LookupAPIURL  string
	LookupAPIKeys []string

	// Payment gateway
	GatewayAPIURL      string
	GatewayPublicKey   string
	GatewaySecretKey   string
	GatewayCallbackURL string

	// Webhook
	WebhookSecret string

	// Persistence
	CounterFile     string
	PaymentsLogFile string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Admin auth
	JWTSecret         string
	JWTAccessTTL      time.Duration
	AdminPasswordHash string // bcrypt hash; empty disables admin routes
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LookupAPIURL:  getEnv("LOOKUP_API_URL", "https://apicpf.com/api/consulta"),
		LookupAPIKeys: splitList(getEnv("LOOKUP_API_KEYS", "")),

		GatewayAPIURL:      getEnv("GATEWAY_API_URL", "https://app.amplopay.com/api/v1"),
		GatewayPublicKey:   getEnv("GATEWAY_PUBLIC_KEY", ""),
		GatewaySecretKey:   getEnv("GATEWAY_SECRET_KEY", ""),
		GatewayCallbackURL: getEnv("GATEWAY_CALLBACK_URL", ""),

		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		CounterFile:     getEnv("COUNTER_FILE", "data/payment_counter.json"),
		PaymentsLogFile: getEnv("PAYMENTS_LOG_FILE", "data/payments_log.txt"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 20),

		CacheTTL: getEnvDuration("CACHE_TTL", 10*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		JWTSecret:         getEnv("JWT_SECRET", "gateway-default-dev-secret-change-me"),
		JWTAccessTTL:      getEnvDuration("JWT_ACCESS_TTL", 1*time.Hour),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitList parses a comma-separated env value into trimmed, non-empty items.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
