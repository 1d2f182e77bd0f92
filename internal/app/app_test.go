package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coinwatch/coinpulse/config"
)

// TestInitRedis_Disabled verifies that an empty address disables the remote tier.
func TestInitRedis_Disabled(t *testing.T) {
	cfg := config.Config{Redis: config.RedisConfig{Addr: ""}}
	if client := InitRedis(cfg); client != nil {
		_ = client.Close()
		t.Fatalf("expected nil client for empty REDIS_ADDR")
	}
}

// TestInitRedis_Unreachable verifies a configured but dead Redis is tolerated:
// a client is still returned so the cache can keep retrying remote writes.
func TestInitRedis_Unreachable(t *testing.T) {
	cfg := config.Config{Redis: config.RedisConfig{Addr: "127.0.0.1:63999"}}
	client := InitRedis(cfg)
	if client == nil {
		t.Fatalf("expected client even when Redis is unreachable")
	}
	_ = client.Close()
}

// TestInitializeApp_BadSource ensures InitializeApp fails on an unknown provider.
func TestInitializeApp_BadSource(t *testing.T) {
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = validConfig()
	config.AppConfig.Upstream.Source = "kraken"

	oldOpener := redisOpener
	redisOpener = func(cfg config.Config) *redis.Client { return nil }
	t.Cleanup(func() { redisOpener = oldOpener })

	r, cleanup, err := InitializeApp()
	if err == nil || r != nil || cleanup != nil {
		if cleanup != nil {
			cleanup()
		}
		t.Fatalf("expected error from InitializeApp with unknown HISTORY_SOURCE")
	}
}

func TestInitializeApp_HappyPath(t *testing.T) {
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = validConfig()

	// Override opener so no real Redis connection is attempted
	oldOpener := redisOpener
	redisOpener = func(cfg config.Config) *redis.Client { return nil }
	t.Cleanup(func() { redisOpener = oldOpener })

	router, cleanup, err := InitializeApp()
	if err != nil || router == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: err set or nil components")
	}

	// Hit health endpoints
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", w.Code)
	}

	// Local-only cache means no readiness dependency
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	router.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", w2.Code)
	}

	// Call cleanup and ensure it doesn't panic
	cleanup()
}

func validConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Upstream: config.UpstreamConfig{
			Source:       "coingecko",
			CoinGeckoURL: "http://127.0.0.1:0",
			BinanceURL:   "http://127.0.0.1:0",
			Timeout:      time.Second,
		},
		RateLimit: config.RateLimitConfig{MaxRequests: 100, Window: time.Second},
		Retry:     config.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, BackoffFactor: 2},
	}
}
