package service

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/coinwatch/coinpulse/internal/cache"
	"github.com/coinwatch/coinpulse/internal/domain/models"
	"github.com/coinwatch/coinpulse/internal/ratelimit"
	"github.com/coinwatch/coinpulse/internal/retry"
	"github.com/coinwatch/coinpulse/internal/source"
)

// CoinService serves the cached coin market listing.
type CoinService interface {
	GetCoins(ctx context.Context) ([]models.CoinSummary, error)
}

type coinService struct {
	markets source.MarketLister
	cache   *cache.Store
	limiter *ratelimit.Limiter
	retry   retry.Policy
	group   singleflight.Group
}

// NewCoinService wires the coin listing pipeline. The listing always comes
// from CoinGecko, so the limiter is the same instance the history pipeline
// uses when it targets CoinGecko.
func NewCoinService(markets source.MarketLister, store *cache.Store, limiter *ratelimit.Limiter, policy retry.Policy) CoinService {
	return &coinService{markets: markets, cache: store, limiter: limiter, retry: policy}
}

// GetCoins returns the market listing, fetching at most once per cache TTL.
func (s *coinService) GetCoins(ctx context.Context) ([]models.CoinSummary, error) {
	key := cache.Key("coins", map[string]string{"vs_currency": "usd", "order": "market_cap_desc"})

	var cached []models.CoinSummary
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var coins []models.CoinSummary
		err := s.retry.Run(ctx, "fetch coin markets", func() error {
			var ferr error
			coins, ferr = s.markets.FetchMarkets(ctx)
			return ferr
		})
		if err != nil {
			return nil, err
		}

		s.cache.Set(ctx, key, coins, cache.CoinsTTL)
		return coins, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.CoinSummary), nil
}
