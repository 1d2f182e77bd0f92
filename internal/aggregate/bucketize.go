// Package aggregate turns normalized upstream samples into fixed-width OHLCV
// buckets. Bucketize is a pure function: no I/O, no shared state, and its
// output does not depend on the order samples arrive in.
package aggregate

import (
	"sort"
	"time"

	"github.com/coinwatch/coinpulse/internal/domain/models"
)

// Bucketize groups samples into buckets of the given width and reduces each
// occupied bucket to one HistoryRecord.
//
// Behavior:
//   - Samples are copied and sorted by timestamp first, so any input order
//     produces the same output.
//   - Each sample lands in the bucket floor(ts / width) * width; buckets with
//     no samples produce no record.
//   - Open is the first sample's opening price, Close the last sample's
//     price, High/Low the extremes across the bucket (honoring pre-aggregated
//     kline extremes), Volume the sum.
//   - PctChange is computed against the previous record's close in the
//     output sequence; it is nil for the first record and whenever the
//     previous close is zero.
//
// The result is ordered ascending by bucket timestamp with no duplicates.
// Empty input or a non-positive width yields an empty slice.
func Bucketize(samples []models.Sample, width time.Duration) []models.HistoryRecord {
	widthMs := width.Milliseconds()
	if len(samples) == 0 || widthMs <= 0 {
		return []models.HistoryRecord{}
	}

	sorted := make([]models.Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	buckets := make(map[int64][]models.Sample)
	var keys []int64
	for _, s := range sorted {
		key := floorDiv(s.Timestamp, widthMs) * widthMs
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], s)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	records := make([]models.HistoryRecord, 0, len(keys))
	var prevClose float64
	for i, key := range keys {
		group := buckets[key]

		open := group[0].OpenPrice()
		closePrice := group[len(group)-1].Price
		high := group[0].HighPrice()
		low := group[0].LowPrice()
		var volume float64
		for _, s := range group {
			if h := s.HighPrice(); h > high {
				high = h
			}
			if l := s.LowPrice(); l < low {
				low = l
			}
			volume += s.Volume
		}

		var pctChange *float64
		if i > 0 && prevClose != 0 {
			v := (closePrice - prevClose) / prevClose * 100
			pctChange = &v
		}
		prevClose = closePrice

		records = append(records, models.HistoryRecord{
			Timestamp: time.UnixMilli(key).UTC().Format(time.RFC3339),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
			PctChange: pctChange,
		})
	}

	return records
}

// floorDiv divides rounding toward negative infinity, so timestamps before
// the epoch still land in the bucket containing them.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
