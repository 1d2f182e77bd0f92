package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coinwatch/coinpulse/internal/domain/errs"
	"github.com/coinwatch/coinpulse/internal/domain/models"
)

// CoinGecko adapts the CoinGecko market_chart/range endpoint, which returns
// two independently timestamped series: (ts, price) and (ts, volume).
type CoinGecko struct {
	baseURL string
	client  *http.Client
}

// NewCoinGecko creates the adapter. baseURL is the API root, e.g.
// "https://api.coingecko.com/api/v3".
func NewCoinGecko(baseURL string, client *http.Client) *CoinGecko {
	return &CoinGecko{baseURL: baseURL, client: client}
}

// marketChartResponse mirrors the CoinGecko payload: each element is a
// [timestampMs, value] pair.
type marketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// FetchSamples fetches the price and volume series for the window and joins
// them into samples.
//
// The two series are not guaranteed to align; a price point takes the volume
// recorded at the exact same timestamp, or 0 when none exists.
func (c *CoinGecko) FetchSamples(ctx context.Context, window models.RequestWindow) ([]models.Sample, error) {
	endpoint := fmt.Sprintf(
		"%s/coins/%s/market_chart/range?vs_currency=usd&from=%d&to=%d",
		c.baseURL, url.PathEscape(window.Coin), window.From.Unix(), window.To.Unix(),
	)

	var chart marketChartResponse
	if err := c.getJSON(ctx, endpoint, &chart); err != nil {
		return nil, err
	}

	volumeAt := make(map[int64]float64, len(chart.TotalVolumes))
	for _, point := range chart.TotalVolumes {
		volumeAt[int64(point[0])] = point[1]
	}

	samples := make([]models.Sample, 0, len(chart.Prices))
	for _, point := range chart.Prices {
		ts := int64(point[0])
		samples = append(samples, models.Sample{
			Timestamp: ts,
			Price:     point[1],
			Volume:    volumeAt[ts],
		})
	}
	return samples, nil
}

// FetchMarkets fetches the coin market listing ordered by market cap,
// matching the query the dashboard's coin table issues.
func (c *CoinGecko) FetchMarkets(ctx context.Context) ([]models.CoinSummary, error) {
	endpoint := c.baseURL + "/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=250&page=1&sparkline=false"

	var coins []models.CoinSummary
	if err := c.getJSON(ctx, endpoint, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

func (c *CoinGecko) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errs.NewUpstream(ProviderCoinGecko, 0, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.NewUpstream(ProviderCoinGecko, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errs.NewUpstream(ProviderCoinGecko, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errs.NewUpstream(ProviderCoinGecko, 0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
