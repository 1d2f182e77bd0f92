package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/coinwatch/coinpulse/internal/domain/errs"
	"github.com/coinwatch/coinpulse/internal/domain/models"
)

// klinePageLimit is the maximum rows Binance returns per /klines call.
const klinePageLimit = 1000

// Binance adapts the Binance klines endpoint. Klines arrive pre-aggregated
// at the requested native interval; each becomes one sample at the kline's
// open time, priced at its close and carrying the kline's true open/high/low
// so wider buckets keep real intra-kline range.
type Binance struct {
	baseURL string
	client  *http.Client
}

// NewBinance creates the adapter. baseURL is the REST root, e.g.
// "https://api.binance.com".
func NewBinance(baseURL string, client *http.Client) *Binance {
	return &Binance{baseURL: baseURL, client: client}
}

// FetchSamples pages through /api/v3/klines for the window.
//
// Paging: each call asks for up to klinePageLimit rows; the next page starts
// at the last returned open time + 1. Fetching stops when a page comes back
// empty or the window is exhausted. The interval string is passed to Binance
// as-is, so it must be one of Binance's native interval names (15m, 1h, 4h,
// 1d, ...).
func (b *Binance) FetchSamples(ctx context.Context, window models.RequestWindow) ([]models.Sample, error) {
	symbol, ok := binanceSymbols[window.Coin]
	if !ok {
		return nil, errs.NewValidation(fmt.Sprintf("no binance symbol mapping for coin %q", window.Coin), nil)
	}

	start := window.From.UnixMilli()
	end := window.To.UnixMilli()

	var samples []models.Sample
	for start < end {
		page, err := b.fetchPage(ctx, symbol, window.Interval.String(), start, end)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		samples = append(samples, page...)
		start = page[len(page)-1].Timestamp + 1
	}
	return samples, nil
}

func (b *Binance) fetchPage(ctx context.Context, symbol, interval string, start, end int64) ([]models.Sample, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	query.Set("startTime", strconv.FormatInt(start, 10))
	query.Set("endTime", strconv.FormatInt(end, 10))
	query.Set("limit", strconv.Itoa(klinePageLimit))
	endpoint := b.baseURL + "/api/v3/klines?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.NewUpstream(ProviderBinance, 0, err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errs.NewUpstream(ProviderBinance, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewUpstream(ProviderBinance, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	// Each kline row is a heterogeneous array:
	// [openTime, "open", "high", "low", "close", "volume", closeTime, ...]
	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, errs.NewUpstream(ProviderBinance, 0, fmt.Errorf("decode klines: %w", err))
	}

	samples := make([]models.Sample, 0, len(rows))
	for _, row := range rows {
		s, err := parseKline(row)
		if err != nil {
			return nil, errs.NewUpstream(ProviderBinance, 0, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseKline(row []json.RawMessage) (models.Sample, error) {
	if len(row) < 6 {
		return models.Sample{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return models.Sample{}, fmt.Errorf("kline open time: %w", err)
	}

	fields := make([]float64, 5) // open, high, low, close, volume
	for i := range fields {
		var raw string
		if err := json.Unmarshal(row[i+1], &raw); err != nil {
			return models.Sample{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Sample{}, fmt.Errorf("kline field %d %q: %w", i+1, raw, err)
		}
		fields[i] = v
	}

	return models.Sample{
		Timestamp: openTime,
		Price:     fields[3], // close is the representative price
		Volume:    fields[4],
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
	}, nil
}
