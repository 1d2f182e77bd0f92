package models

// Sample is a single normalized upstream observation used as the input unit
// for bucketing. Point-series sources (CoinGecko) fill only Timestamp, Price
// and Volume. Pre-aggregated sources (Binance klines) additionally carry the
// candle's true Open/High/Low so that re-aggregation into wider buckets does
// not lose intra-candle range.
//
// Fields:
//   - Timestamp: observation time in epoch milliseconds.
//   - Price: the representative price (for klines, the close).
//   - Volume: traded volume attributed to this observation.
//   - Open, High, Low: optional pre-aggregated extremes; zero means
//     "point sample", in which case Price stands in for all three.
type Sample struct {
	Timestamp int64
	Price     float64
	Volume    float64
	Open      float64
	High      float64
	Low       float64
}

// OpenPrice returns the sample's opening price, falling back to Price for
// point samples.
func (s Sample) OpenPrice() float64 {
	if s.Open != 0 {
		return s.Open
	}
	return s.Price
}

// HighPrice returns the sample's highest price, falling back to Price.
func (s Sample) HighPrice() float64 {
	if s.High != 0 {
		return s.High
	}
	return s.Price
}

// LowPrice returns the sample's lowest price, falling back to Price.
func (s Sample) LowPrice() float64 {
	if s.Low != 0 {
		return s.Low
	}
	return s.Price
}

// HistoryRecord is one OHLCV bucket of the aggregated history series.
//
// Invariants:
//   - Open/Close are the first/last sample prices of the bucket in time order.
//   - High/Low are the extremes across all samples in the bucket.
//   - Volume is the sum of sample volumes.
//   - PctChange is nil for the first record of a series and whenever the
//     previous record's close is zero; otherwise it is the percentage change
//     of Close relative to the previous record's Close.
//
// swagger:model HistoryRecord
type HistoryRecord struct {
	Timestamp string   `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Open      float64  `json:"open" example:"100"`
	High      float64  `json:"high" example:"102"`
	Low       float64  `json:"low" example:"99"`
	Close     float64  `json:"close" example:"102"`
	Volume    float64  `json:"volume" example:"1250000"`
	PctChange *float64 `json:"pctChange" example:"0.98"`
}

// CoinSummary is one row of the cached coin market listing, shaped after the
// CoinGecko /coins/markets payload consumed by the UI.
//
// swagger:model CoinSummary
type CoinSummary struct {
	ID                       string  `json:"id" example:"bitcoin"`
	Symbol                   string  `json:"symbol" example:"btc"`
	Name                     string  `json:"name" example:"Bitcoin"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price" example:"43500.25"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank" example:"1"`
	TotalVolume              float64 `json:"total_volume"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h" example:"2.5"`
	LastUpdated              string  `json:"last_updated,omitempty"`
}
