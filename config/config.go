// Package config provides configuration management for the quote service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Pricing  PricingConfig
	Log      LogConfig
}

// RedisConfig points rate limits, idempotent replays and the quote cache at
// a shared Redis. An empty URL keeps all three in process memory.
type RedisConfig struct {
	URL string
}

// LogConfig holds console logging configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              string
	RateLimit         int
	RateWindow        time.Duration
	RequestTimeout    time.Duration
	// LogQueryTimeout bounds the log search and audit trail reads.
	LogQueryTimeout   time.Duration
	EnableIdempotency bool
	CORSOrigins       []string
	SwaggerUser       string
	SwaggerPass       string
}

// CacheConfig holds quote cache configuration. Shared puts computed quotes
// in Redis as well, when one is configured.
type CacheConfig struct {
	Size   int
	TTL    time.Duration
	Shared bool
}

// AuthConfig holds API key authentication configuration.
type AuthConfig struct {
	Enabled bool
	// APIKeys maps each accepted key to the client it identifies.
	APIKeys map[string]string
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI          string
	DatabaseName string
	LogsTTL      time.Duration
	Enabled      bool
	// ConnectRetries bounds the reconnect attempts made at startup.
	ConnectRetries int
	// TablesRefresh is how long the active pricing tables are reused before
	// MongoDB is read again. Zero reads on every quote.
	TablesRefresh time.Duration
	// CircuitBreaker configuration
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

// PricingConfig holds the default business limits. Values are kept as the raw
// environment strings and parsed by Limits.
type PricingConfig struct {
	MinPricePerUnit       string
	MinTotalPrice         string
	MinMarginPercentage   string
	MinMarginAmount       string
	MaxDiscountPercentage string
	MinPriceMultiplier    string
	Strict                bool
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8080"),
			RateLimit:         getEnvInt("RATE_LIMIT", 100),
			RateWindow:        getEnvDuration("RATE_WINDOW", time.Minute),
			RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			LogQueryTimeout:   getEnvDuration("LOG_QUERY_TIMEOUT", 10*time.Second),
			EnableIdempotency: getEnvBool("IDEMPOTENCY_ENABLED", true),
			CORSOrigins:       parseCORSOrigins(os.Getenv("CORS_ORIGINS")),
			SwaggerUser:       getEnv("SWAGGER_USER", ""),
			SwaggerPass:       getEnv("SWAGGER_PASS", ""),
		},
		Cache: CacheConfig{
			Size:   getEnvInt("CACHE_SIZE", 1000),
			TTL:    getEnvDuration("CACHE_TTL", 5*time.Minute),
			Shared: getEnvBool("CACHE_SHARED", true),
		},
		Auth: AuthConfig{
			Enabled: getEnvBool("AUTH_ENABLED", false),
			APIKeys: parseAPIKeys(os.Getenv("API_KEYS")),
		},
		Database: DatabaseConfig{
			URI:                            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName:                   getEnv("MONGODB_DATABASE", "quote_service"),
			LogsTTL:                        getEnvDuration("MONGODB_LOGS_TTL", 30*24*time.Hour),
			Enabled:                        getEnvBool("MONGODB_ENABLED", false),
			ConnectRetries:                 getEnvInt("MONGODB_CONNECT_RETRIES", 3),
			TablesRefresh:                  getEnvDuration("TABLES_REFRESH", 30*time.Second),
			CircuitBreakerFailureThreshold: getEnvInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: getEnvInt("CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Pricing: PricingConfig{
			MinPricePerUnit:       strings.TrimSpace(os.Getenv("PRICING_MIN_PRICE_PER_UNIT")),
			MinTotalPrice:         strings.TrimSpace(os.Getenv("PRICING_MIN_TOTAL_PRICE")),
			MinMarginPercentage:   strings.TrimSpace(os.Getenv("PRICING_MIN_MARGIN_PERCENTAGE")),
			MinMarginAmount:       strings.TrimSpace(os.Getenv("PRICING_MIN_MARGIN_AMOUNT")),
			MaxDiscountPercentage: strings.TrimSpace(os.Getenv("PRICING_MAX_DISCOUNT_PERCENTAGE")),
			MinPriceMultiplier:    strings.TrimSpace(os.Getenv("PRICING_MIN_PRICE_MULTIPLIER")),
			Strict:                getEnvBool("PRICING_STRICT_LIMITS", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
	}
}

// Limits builds the default pricing limits. It returns nil when no limit is
// configured and an error when a value is not a valid non-negative decimal.
func (p PricingConfig) Limits() (*model.PricingLimits, error) {
	fields := []struct {
		env   string
		value string
		opt   func(decimal.Decimal) model.LimitOption
	}{
		{"PRICING_MIN_PRICE_PER_UNIT", p.MinPricePerUnit, model.WithMinimumPricePerUnit},
		{"PRICING_MIN_TOTAL_PRICE", p.MinTotalPrice, model.WithMinimumTotalPrice},
		{"PRICING_MIN_MARGIN_PERCENTAGE", p.MinMarginPercentage, model.WithMinimumMarginPercentage},
		{"PRICING_MIN_MARGIN_AMOUNT", p.MinMarginAmount, model.WithMinimumMarginAmount},
		{"PRICING_MAX_DISCOUNT_PERCENTAGE", p.MaxDiscountPercentage, model.WithMaximumDiscountPercentage},
		{"PRICING_MIN_PRICE_MULTIPLIER", p.MinPriceMultiplier, model.WithMinimumPriceMultiplier},
	}

	var opts []model.LimitOption
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		v, err := decimal.NewFromString(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.env, f.value, err)
		}
		opts = append(opts, f.opt(v))
	}
	if len(opts) == 0 {
		return nil, nil
	}

	limits, err := model.NewPricingLimits(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing limits: %w", err)
	}
	return limits, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseAPIKeys reads "key:client" pairs. A key without a client name
// identifies itself.
func parseAPIKeys(s string) map[string]string {
	if s == "" {
		return nil
	}
	entries := strings.Split(s, ",")
	result := make(map[string]string, len(entries))
	for _, e := range entries {
		key, client, found := strings.Cut(strings.TrimSpace(e), ":")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		client = strings.TrimSpace(client)
		if !found || client == "" {
			client = key
		}
		result[key] = client
	}
	return result
}

func parseCORSOrigins(s string) []string {
	// Default origins for local development
	defaults := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}
