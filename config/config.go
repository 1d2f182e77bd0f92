package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as server settings, upstream providers, caching, and request pacing.
//
// Example YAML/ENV equivalent:
//
//	SERVER_PORT=8080
//	HISTORY_SOURCE=coingecko
//	COINGECKO_API_URL=https://api.coingecko.com/api/v3
//	BINANCE_API_URL=https://api.binance.com
//	REDIS_ADDR=localhost:6379
//	RATE_LIMIT_MAX_REQUESTS=8
//	RATE_LIMIT_WINDOW_MS=10000
//	RETRY_MAX_RETRIES=3
type Config struct {
	Server    ServerConfig    // HTTP server configuration
	Upstream  UpstreamConfig  // Upstream market data provider settings
	Redis     RedisConfig     // Remote cache connection settings
	RateLimit RateLimitConfig // Upstream request pacing
	Retry     RetryConfig     // Upstream retry policy
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// UpstreamConfig selects and configures the market data provider.
//
// Fields:
//   - Source: which provider serves history ("coingecko" or "binance").
//   - CoinGeckoURL: CoinGecko REST root.
//   - BinanceURL: Binance REST root.
//   - Timeout: per-request HTTP timeout toward the upstream.
type UpstreamConfig struct {
	Source       string
	CoinGeckoURL string
	BinanceURL   string
	Timeout      time.Duration
}

// RedisConfig defines connection details for the remote cache tier.
//
// An empty Addr disables the remote tier entirely; the service then runs
// on the in-process cache alone.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig bounds how many upstream requests may start per window.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// RetryConfig shapes the exponential backoff applied to upstream fetches.
type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
// All services should import this package and read from AppConfig instead of
// reloading environment variables directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Sets defaults for all required fields.
//   - Reads environment variables automatically with viper.AutomaticEnv().
//   - Calls validateConfig() to ensure required fields are present and sane.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() will
//     terminate the app with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("HISTORY_SOURCE", "coingecko")
	viper.SetDefault("COINGECKO_API_URL", "https://api.coingecko.com/api/v3")
	viper.SetDefault("BINANCE_API_URL", "https://api.binance.com")
	viper.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 10)

	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("RATE_LIMIT_MAX_REQUESTS", 8)
	viper.SetDefault("RATE_LIMIT_WINDOW_MS", 10000)

	viper.SetDefault("RETRY_MAX_RETRIES", 3)
	viper.SetDefault("RETRY_BASE_DELAY_MS", 1000)
	viper.SetDefault("RETRY_MAX_DELAY_MS", 30000)
	viper.SetDefault("RETRY_BACKOFF_FACTOR", 2.0)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Upstream: UpstreamConfig{
			Source:       viper.GetString("HISTORY_SOURCE"),
			CoinGeckoURL: viper.GetString("COINGECKO_API_URL"),
			BinanceURL:   viper.GetString("BINANCE_API_URL"),
			Timeout:      time.Duration(viper.GetInt("UPSTREAM_TIMEOUT_SECONDS")) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: viper.GetInt("RATE_LIMIT_MAX_REQUESTS"),
			Window:      time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_MS")) * time.Millisecond,
		},
		Retry: RetryConfig{
			MaxRetries:    viper.GetInt("RETRY_MAX_RETRIES"),
			BaseDelay:     time.Duration(viper.GetInt("RETRY_BASE_DELAY_MS")) * time.Millisecond,
			MaxDelay:      time.Duration(viper.GetInt("RETRY_MAX_DELAY_MS")) * time.Millisecond,
			BackoffFactor: viper.GetFloat64("RETRY_BACKOFF_FACTOR"),
		},
	}

	// Validate critical fields
	validateConfig()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing or invalid.
//
// This avoids unexpected runtime failures due to incomplete configuration.
//
// Behavior:
//   - Checks each critical field of AppConfig.
//   - Collects missing or invalid ones in a slice.
//   - If any are found, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	switch AppConfig.Upstream.Source {
	case "coingecko", "binance":
	default:
		missing = append(missing, "HISTORY_SOURCE (must be coingecko or binance)")
	}
	if AppConfig.Upstream.CoinGeckoURL == "" {
		missing = append(missing, "COINGECKO_API_URL")
	}
	if AppConfig.Upstream.BinanceURL == "" {
		missing = append(missing, "BINANCE_API_URL")
	}
	if AppConfig.RateLimit.MaxRequests <= 0 {
		missing = append(missing, "RATE_LIMIT_MAX_REQUESTS")
	}
	if AppConfig.RateLimit.Window <= 0 {
		missing = append(missing, "RATE_LIMIT_WINDOW_MS")
	}
	if AppConfig.Retry.MaxRetries < 0 {
		missing = append(missing, "RETRY_MAX_RETRIES")
	}
	if AppConfig.Retry.BaseDelay <= 0 {
		missing = append(missing, "RETRY_BASE_DELAY_MS")
	}
	if AppConfig.Retry.BackoffFactor < 1 {
		missing = append(missing, "RETRY_BACKOFF_FACTOR")
	}

	if len(missing) > 0 {
		log.Fatalf("Missing or invalid environment variables: %v\n", missing)
	}
}
