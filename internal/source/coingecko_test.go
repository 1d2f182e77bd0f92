package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coinwatch/coinpulse/internal/domain/errs"
	"github.com/coinwatch/coinpulse/internal/domain/models"
)

func testWindow(t *testing.T, coin string) models.RequestWindow {
	t.Helper()
	w, err := models.ParseWindow(coin, "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", "1h")
	if err != nil {
		t.Fatalf("parse window: %v", err)
	}
	return w
}

func TestCoinGecko_FetchSamples_JoinsVolumes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin/market_chart/range" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("vs_currency") != "usd" || q.Get("from") == "" || q.Get("to") == "" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		// Volume exists for ts 1000 only; ts 2000 has no matching volume point
		_, _ = w.Write([]byte(`{
			"prices": [[1000, 42.5], [2000, 43.0]],
			"total_volumes": [[1000, 100.0], [3000, 999.0]]
		}`))
	}))
	defer srv.Close()

	cg := NewCoinGecko(srv.URL, srv.Client())
	samples, err := cg.FetchSamples(context.Background(), testWindow(t, "bitcoin"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Timestamp != 1000 || samples[0].Price != 42.5 || samples[0].Volume != 100 {
		t.Fatalf("unexpected first sample: %+v", samples[0])
	}
	if samples[1].Volume != 0 {
		t.Fatalf("unmatched timestamp must get zero volume, got %v", samples[1].Volume)
	}
}

func TestCoinGecko_FetchSamples_UpstreamStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
	}{
		{name: "rate limited", status: http.StatusTooManyRequests},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "not found", status: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			cg := NewCoinGecko(srv.URL, srv.Client())
			_, err := cg.FetchSamples(context.Background(), testWindow(t, "bitcoin"))
			var ue *errs.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if ue.Status != tc.status || ue.Provider != ProviderCoinGecko {
				t.Fatalf("unexpected error details: %+v", ue)
			}
		})
	}
}

func TestCoinGecko_FetchSamples_TransportError(t *testing.T) {
	cg := NewCoinGecko("http://127.0.0.1:1", &http.Client{Timeout: 200 * time.Millisecond})
	_, err := cg.FetchSamples(context.Background(), testWindow(t, "bitcoin"))
	var ue *errs.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != 0 {
		t.Fatalf("transport errors must carry no status, got %d", ue.Status)
	}
}

func TestCoinGecko_FetchMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if q := r.URL.Query(); q.Get("order") != "market_cap_desc" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[
			{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "current_price": 50000, "market_cap_rank": 1},
			{"id": "ethereum", "symbol": "eth", "name": "Ethereum", "current_price": 3000, "market_cap_rank": 2}
		]`))
	}))
	defer srv.Close()

	cg := NewCoinGecko(srv.URL, srv.Client())
	coins, err := cg.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("fetch markets: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("expected 2 coins, got %d", len(coins))
	}
	if coins[0].ID != "bitcoin" || coins[0].CurrentPrice != 50000 || coins[0].MarketCapRank != 1 {
		t.Fatalf("unexpected first coin: %+v", coins[0])
	}
}

func TestCoinGecko_FetchMarkets_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	cg := NewCoinGecko(srv.URL, srv.Client())
	_, err := cg.FetchMarkets(context.Background())
	var ue *errs.UpstreamError
	if !errors.As(err, &ue) || ue.Status != 0 {
		t.Fatalf("expected UpstreamError without status, got %v", err)
	}
}
