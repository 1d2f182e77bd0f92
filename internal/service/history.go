package service

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/coinwatch/coinpulse/internal/aggregate"
	"github.com/coinwatch/coinpulse/internal/cache"
	"github.com/coinwatch/coinpulse/internal/domain/models"
	"github.com/coinwatch/coinpulse/internal/ratelimit"
	"github.com/coinwatch/coinpulse/internal/retry"
	"github.com/coinwatch/coinpulse/internal/source"
)

// HistoryService serves aggregated OHLCV history for one coin and window.
// This decouples HTTP handlers from upstream access and caching policy.
type HistoryService interface {
	GetHistory(ctx context.Context, coin, from, to, interval string) ([]models.HistoryRecord, error)
}

type historyService struct {
	source  source.Adapter
	cache   *cache.Store
	limiter *ratelimit.Limiter
	retry   retry.Policy
	group   singleflight.Group
}

// NewHistoryService wires the history pipeline. The limiter instance must be
// shared with every other consumer of the same upstream.
func NewHistoryService(src source.Adapter, store *cache.Store, limiter *ratelimit.Limiter, policy retry.Policy) HistoryService {
	return &historyService{source: src, cache: store, limiter: limiter, retry: policy}
}

// GetHistory runs the pipeline: validate, cache lookup, and on a miss
// rate-limit, fetch with retries, bucketize and cache the result.
//
// Concurrent requests for the same parameters are collapsed into a single
// upstream fetch; together with the cache this guarantees one fetch per
// window per TTL. Cache failures never fail the request — they degrade to a
// miss on read and a no-op on write.
func (s *historyService) GetHistory(ctx context.Context, coin, from, to, interval string) ([]models.HistoryRecord, error) {
	window, err := models.ParseWindow(coin, from, to, interval)
	if err != nil {
		return nil, err
	}

	key := cache.Key("history", map[string]string{
		"coin":     coin,
		"from":     from,
		"to":       to,
		"interval": interval,
	})

	var cached []models.HistoryRecord
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var samples []models.Sample
		err := s.retry.Run(ctx, "fetch history", func() error {
			var ferr error
			samples, ferr = s.source.FetchSamples(ctx, window)
			return ferr
		})
		if err != nil {
			return nil, err
		}

		records := aggregate.Bucketize(samples, window.BucketWidth())
		s.cache.Set(ctx, key, records, cache.HistoryTTL(window.To))
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.HistoryRecord), nil
}
