// Package source normalizes upstream market-data providers into a common
// sample stream. Two providers are supported: CoinGecko (price/volume time
// series) and Binance (pre-aggregated klines). The concrete adapter is
// selected once at service construction, not per call.
package source

import (
	"context"
	"net/http"

	"github.com/coinwatch/coinpulse/internal/domain/errs"
	"github.com/coinwatch/coinpulse/internal/domain/models"
)

// Provider names accepted by the HISTORY_SOURCE configuration key.
const (
	ProviderCoinGecko = "coingecko"
	ProviderBinance   = "binance"
)

// Adapter fetches raw history for a request window and normalizes it into
// time-stamped samples ready for bucketing.
type Adapter interface {
	FetchSamples(ctx context.Context, window models.RequestWindow) ([]models.Sample, error)
}

// MarketLister fetches the coin market listing. Only the CoinGecko adapter
// implements it; the coin list endpoint always comes from CoinGecko.
type MarketLister interface {
	FetchMarkets(ctx context.Context) ([]models.CoinSummary, error)
}

// New returns the Adapter for the configured provider.
//
// Returns a ConfigError for unknown provider names; this is a startup-time
// failure, not a request-time one.
func New(provider, coingeckoURL, binanceURL string, client *http.Client) (Adapter, error) {
	switch provider {
	case ProviderCoinGecko:
		return NewCoinGecko(coingeckoURL, client), nil
	case ProviderBinance:
		return NewBinance(binanceURL, client), nil
	default:
		return nil, &errs.ConfigError{Reason: "unknown HISTORY_SOURCE " + provider + `, expected "coingecko" or "binance"`}
	}
}
