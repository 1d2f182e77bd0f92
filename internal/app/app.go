package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coinwatch/coinpulse/config"
	"github.com/coinwatch/coinpulse/internal/api"
	"github.com/coinwatch/coinpulse/internal/cache"
	"github.com/coinwatch/coinpulse/internal/ratelimit"
	"github.com/coinwatch/coinpulse/internal/retry"
	"github.com/coinwatch/coinpulse/internal/service"
	"github.com/coinwatch/coinpulse/internal/source"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects the remote cache tier using InitRedis() (optional).
//   - Builds the upstream source adapter selected by configuration.
//   - Shares one rate limiter and retry policy across every upstream consumer.
//   - Creates the HTTP handler layer to handle requests.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., the Redis client).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// Connect the remote cache tier (nil client means local-only)
	// indirection for unit testing
	rdb := redisOpener(cfg)
	store := cache.New(rdb)

	// One HTTP client shared by every upstream adapter
	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}

	// Select the history source adapter
	src, err := source.New(cfg.Upstream.Source, cfg.Upstream.CoinGeckoURL, cfg.Upstream.BinanceURL, httpClient)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize source adapter: %w", err)
	}

	// The coin listing always comes from CoinGecko
	markets := source.NewCoinGecko(cfg.Upstream.CoinGeckoURL, httpClient)

	// Shared pacing toward the upstream: one limiter, one retry policy
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	policy := retry.Policy{
		MaxRetries:    cfg.Retry.MaxRetries,
		BaseDelay:     cfg.Retry.BaseDelay,
		MaxDelay:      cfg.Retry.MaxDelay,
		BackoffFactor: cfg.Retry.BackoffFactor,
	}

	// Initialize service layer (business logic)
	historySvc := service.NewHistoryService(src, store, limiter, policy)
	coinSvc := service.NewCoinService(markets, store, limiter, policy)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(historySvc, coinSvc)

	// Setup Gin router with routes
	router := api.NewRouter(handler)

	// Register health and readiness probes
	var cachePing func() error
	if store.RemoteEnabled() {
		cachePing = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(ctx)
		}
	}
	healthHandler := api.NewHealthHandler(cachePing)
	healthHandler.Register(router)

	// Cleanup resources on shutdown
	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
	}

	return router, cleanup, nil
}
