package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/coinwatch/coinpulse/internal/domain/errs"
)

func klineRow(openTime int64, open, high, low, closePrice, volume float64) string {
	return fmt.Sprintf(`[%d,"%g","%g","%g","%g","%g",%d,"0",0,"0","0","0"]`,
		openTime, open, high, low, closePrice, volume, openTime+3599999)
}

func TestBinance_FetchSamples_ParsesKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "1h" || q.Get("limit") != "1000" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		start, _ := strconv.ParseInt(q.Get("startTime"), 10, 64)
		if start > 1704067200000 { // second page: stop
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte("[" +
			klineRow(1704067200000, 100, 120, 90, 110, 5) + "," +
			klineRow(1704070800000, 110, 115, 105, 112, 3) +
			"]"))
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, srv.Client())
	samples, err := b.FetchSamples(context.Background(), testWindow(t, "bitcoin"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	first := samples[0]
	if first.Timestamp != 1704067200000 || first.Price != 110 || first.Open != 100 || first.High != 120 || first.Low != 90 || first.Volume != 5 {
		t.Fatalf("unexpected first sample: %+v", first)
	}
}

func TestBinance_FetchSamples_Pages(t *testing.T) {
	var starts []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.ParseInt(r.URL.Query().Get("startTime"), 10, 64)
		starts = append(starts, start)
		switch len(starts) {
		case 1:
			_, _ = w.Write([]byte("[" + klineRow(start, 1, 1, 1, 1, 1) + "]"))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, srv.Client())
	window := testWindow(t, "bitcoin")
	samples, err := b.FetchSamples(context.Background(), window)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	if len(starts) != 2 {
		t.Fatalf("expected 2 page fetches, got %d", len(starts))
	}
	// Second page resumes one millisecond past the last kline's open time
	if starts[1] != starts[0]+1 {
		t.Fatalf("second page start=%d, want %d", starts[1], starts[0]+1)
	}
}

func TestBinance_FetchSamples_UnmappedCoin(t *testing.T) {
	b := NewBinance("http://unused", http.DefaultClient)
	_, err := b.FetchSamples(context.Background(), testWindow(t, "no-such-coin"))
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for unmapped coin, got %v", err)
	}
}

func TestBinance_FetchSamples_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, srv.Client())
	_, err := b.FetchSamples(context.Background(), testWindow(t, "bitcoin"))
	var ue *errs.UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusTooManyRequests || ue.Provider != ProviderBinance {
		t.Fatalf("expected 429 UpstreamError, got %v", err)
	}
}

func TestParseKline_Malformed(t *testing.T) {
	cases := []struct {
		name string
		row  string
	}{
		{name: "too short", row: `[1704067200000,"1","2"]`},
		{name: "bad open time", row: `["not-a-number","1","2","3","4","5"]`},
		{name: "bad price", row: `[1704067200000,"abc","2","3","4","5"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var row []json.RawMessage
			if err := json.Unmarshal([]byte(tc.row), &row); err != nil {
				t.Fatalf("test fixture invalid: %v", err)
			}
			if _, err := parseKline(row); err == nil {
				t.Fatalf("expected parse error")
			}
		})
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	client := http.DefaultClient

	cg, err := New(ProviderCoinGecko, "http://cg", "http://bn", client)
	if err != nil {
		t.Fatalf("coingecko: %v", err)
	}
	if _, ok := cg.(*CoinGecko); !ok {
		t.Fatalf("expected *CoinGecko, got %T", cg)
	}

	bn, err := New(ProviderBinance, "http://cg", "http://bn", client)
	if err != nil {
		t.Fatalf("binance: %v", err)
	}
	if _, ok := bn.(*Binance); !ok {
		t.Fatalf("expected *Binance, got %T", bn)
	}

	if _, err := New("kraken", "http://cg", "http://bn", client); err == nil {
		t.Fatalf("expected error for unknown provider")
	} else {
		var ce *errs.ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("expected ConfigError, got %T", err)
		}
	}
}
