package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestWait_UnderCapIsImmediate(t *testing.T) {
	l := New(3, time.Second)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("calls under the cap should not block, took %v", elapsed)
	}
}

func TestWait_BlocksAtCap(t *testing.T) {
	window := 150 * time.Millisecond
	l := New(2, window)

	_ = l.Wait(context.Background())
	_ = l.Wait(context.Background())

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("third wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < window/2 {
		t.Fatalf("third call should have waited for the window, took %v", elapsed)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := New(1, time.Hour)
	_ = l.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	if err == nil {
		t.Fatalf("expected context error")
	}
	if err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestWait_ConcurrentCallersNeverOvershoot(t *testing.T) {
	window := 100 * time.Millisecond
	max := 3
	l := New(max, window)

	var mu sync.Mutex
	var admitted []time.Time

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Wait(context.Background()); err != nil {
				t.Errorf("wait: %v", err)
				return
			}
			mu.Lock()
			admitted = append(admitted, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(admitted) != 9 {
		t.Fatalf("expected 9 admissions, got %d", len(admitted))
	}

	// No window of size `window` may contain more than max admissions.
	// Allow a small scheduling slop between Wait returning and the
	// admission timestamp being recorded.
	slop := 10 * time.Millisecond
	for i := range admitted {
		count := 0
		for j := range admitted {
			d := admitted[j].Sub(admitted[i])
			if d >= 0 && d < window-slop {
				count++
			}
		}
		if count > max {
			t.Fatalf("window starting at admission %d holds %d admissions, cap is %d", i, count, max)
		}
	}
}
