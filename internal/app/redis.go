package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coinwatch/coinpulse/config"
	"github.com/coinwatch/coinpulse/internal/logger"
)

// InitRedis initializes the remote cache connection using the provided configuration.
//
// Parameters:
//   - cfg (config.Config): The application configuration object containing Redis settings.
//
// Behavior:
//   - Returns a nil client when no Redis address is configured; the cache then
//     runs on its in-process tier alone.
//   - Opens a client and pings it to validate connectivity.
//   - A configured but unreachable Redis is logged and tolerated: the cache is
//     an accelerator, not a dependency, so startup proceeds without it.
//
// Returns:
//   - *redis.Client: a connected client, or nil when the remote tier is disabled.
func InitRedis(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.L().Info().Msg("remote cache disabled, using in-process cache only")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.L().Warn().
			Err(err).
			Str("addr", cfg.Redis.Addr).
			Msg("remote cache unreachable, continuing with in-process cache only")
	}

	return client
}

// redisOpener is an indirection used by InitializeApp; overridden in tests to avoid real connections.
var redisOpener = InitRedis
