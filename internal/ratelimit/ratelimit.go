// Package ratelimit throttles outbound calls to a rate-limited upstream
// using a sliding window over recorded request timestamps.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most max requests per window. One instance is shared by
// every caller hitting the same upstream; admission is serialized by a mutex
// and re-validated after each wait, so concurrent callers cannot overshoot
// the cap.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	stamps []time.Time
}

// New creates a Limiter admitting max requests per window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{max: max, window: window}
}

// Wait blocks until the caller may issue a request, then records it.
//
// Behavior:
//   - Timestamps older than the window are pruned.
//   - Under the cap: the call is recorded and Wait returns immediately.
//   - At the cap: Wait sleeps until the oldest recorded request leaves the
//     window, then re-checks from scratch (another caller may have been
//     admitted in the meantime).
//
// Returns the context error if the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()

		cut := 0
		for cut < len(l.stamps) && now.Sub(l.stamps[cut]) >= l.window {
			cut++
		}
		l.stamps = l.stamps[cut:]

		if len(l.stamps) < l.max {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}

		wait := l.window - now.Sub(l.stamps[0])
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
