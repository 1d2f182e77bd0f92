// Package retry wraps fallible upstream calls with exponential backoff.
package retry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/coinwatch/coinpulse/internal/domain/errs"
	"github.com/coinwatch/coinpulse/internal/logger"
)

// Policy configures retry behavior for one class of upstream operations.
//
// A failed attempt sleeps min(BaseDelay * BackoffFactor^attempt, MaxDelay)
// before the next try; the operation is invoked at most MaxRetries+1 times.
type Policy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// Default returns the policy used for upstream data sources: 3 retries,
// 1s base delay doubling up to 30s.
func Default() Policy {
	return Policy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second, BackoffFactor: 2}
}

// Run executes op, retrying transient failures per the policy. The name is
// only used in logs. Fatal errors and exhausted retries return the original
// error unchanged, so callers can still narrow it with errors.As.
// Context cancellation stops the wait between attempts.
func (p Policy) Run(ctx context.Context, name string, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.MaxInterval = p.MaxDelay
	bo.Multiplier = p.BackoffFactor
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset()

	attempt := 0
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return backoff.Permanent(err)
		}
		attempt++
		logger.L().Warn().
			Str("op", name).
			Int("attempt", attempt).
			Err(err).
			Msg("upstream call failed, retrying")
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.MaxRetries)), ctx))
}

// Retryable classifies an error as transient.
//
// Rules:
//   - ValidationError is never retried (the request itself is wrong).
//   - UpstreamError with a status code is transient only for 429 and 5xx.
//   - Anything without a status code (connection resets, timeouts, DNS
//     failures and other transport errors) is treated as transient.
func Retryable(err error) bool {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		return false
	}
	var ue *errs.UpstreamError
	if errors.As(err, &ue) && ue.Status != 0 {
		return ue.Status == http.StatusTooManyRequests || (ue.Status >= 500 && ue.Status <= 599)
	}
	return true
}
