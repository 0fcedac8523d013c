package resilience

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	l := NewRateLimiter(5)

	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	var slept time.Duration
	l.sleep = func(_ context.Context, d time.Duration) error {
		slept += d
		now = now.Add(d)
		return nil
	}

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}

	// 5 tokens of burst, then 5 more at 5/s: at least ~1s of simulated waiting.
	if slept < 900*time.Millisecond {
		t.Fatalf("expected ≥900ms of waiting for 10 acquisitions at 5/s, got %s", slept)
	}
	if slept > 2*time.Second {
		t.Fatalf("waited too long: %s", slept)
	}
}

func TestRateLimiter_TenSequentialAtFivePerSecond(t *testing.T) {
	l := NewRateLimiter(5)
	// Drain the burst so the wall-clock floor is observable.
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	start := now
	l.now = func() time.Time { return now }
	l.sleep = func(_ context.Context, d time.Duration) error {
		now = now.Add(d)
		return nil
	}

	ctx := context.Background()
	for i := 0; i < 15; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}

	// 15 requests = 5 burst + 10 refilled; the trailing 10 need ≥1.8s elapsed.
	if elapsed := now.Sub(start); elapsed < 1800*time.Millisecond {
		t.Fatalf("expected ≥1.8s simulated wall clock, got %s", elapsed)
	}
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	l := NewRateLimiter(1)
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first acquire should not block: %v", err)
	}

	cancel()
	if err := l.Acquire(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
