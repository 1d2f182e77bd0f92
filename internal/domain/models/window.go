package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/coinwatch/coinpulse/internal/domain/errs"
)

// intervalPattern accepts a positive integer followed by a unit:
// m (minutes), h (hours) or d (days). Examples: 15m, 1h, 4h, 1d.
var intervalPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

// Interval is a parsed sampling interval such as "1h" or "15m".
type Interval struct {
	Value int
	Unit  string
	raw   string
}

// ParseInterval parses an interval expression of the form <N><m|h|d>.
//
// Returns:
//   - Interval: the parsed value and unit.
//   - error: a ValidationError when the expression is malformed or the
//     numeric part is not positive.
func ParseInterval(s string) (Interval, error) {
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return Interval{}, errs.NewValidation(fmt.Sprintf("invalid interval %q, expected number + m/h/d (e.g. 1h, 15m, 1d)", s), nil)
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v <= 0 {
		return Interval{}, errs.NewValidation(fmt.Sprintf("interval value must be positive, got %q", s), nil)
	}
	return Interval{Value: v, Unit: m[2], raw: s}, nil
}

// Duration converts the interval to a time.Duration (the bucket width).
func (iv Interval) Duration() time.Duration {
	switch iv.Unit {
	case "m":
		return time.Duration(iv.Value) * time.Minute
	case "h":
		return time.Duration(iv.Value) * time.Hour
	case "d":
		return time.Duration(iv.Value) * 24 * time.Hour
	default:
		return 0
	}
}

// String returns the original interval expression (e.g. "1h"), which is also
// the form upstream kline APIs accept.
func (iv Interval) String() string { return iv.raw }

// RequestWindow is a validated history query: one coin, a half-open time
// range and a sampling interval. Invariant: From is strictly before To and
// the interval is positive.
type RequestWindow struct {
	Coin     string
	From     time.Time
	To       time.Time
	Interval Interval
}

// BucketWidth returns the aggregation bucket width derived from the interval.
func (w RequestWindow) BucketWidth() time.Duration { return w.Interval.Duration() }

// ParseWindow validates raw query parameters and builds a RequestWindow.
//
// Rules:
//   - coin, from, to and interval are all required.
//   - from and to must be RFC 3339 date-times with from < to.
//   - interval must match ^\d+[mhd]$ with a positive value.
//
// All violations are reported as ValidationError.
func ParseWindow(coin, from, to, interval string) (RequestWindow, error) {
	if coin == "" || from == "" || to == "" || interval == "" {
		return RequestWindow{}, errs.NewValidation("missing required query params: coin, from, to, interval", nil)
	}

	fromTime, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return RequestWindow{}, errs.NewValidation(`invalid "from" format, use an ISO 8601 date-time (e.g. 2025-07-01T20:00:00Z)`, err)
	}
	toTime, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return RequestWindow{}, errs.NewValidation(`invalid "to" format, use an ISO 8601 date-time (e.g. 2025-07-01T20:00:00Z)`, err)
	}
	if !fromTime.Before(toTime) {
		return RequestWindow{}, errs.NewValidation(`"from" must be before "to"`, nil)
	}

	iv, err := ParseInterval(interval)
	if err != nil {
		return RequestWindow{}, err
	}

	return RequestWindow{Coin: coin, From: fromTime, To: toTime, Interval: iv}, nil
}
