package resilience

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// RateLimiter is a token bucket shared by every outbound request to one
// source. Capacity equals the refill rate, so a full bucket allows a burst
// of ratePerSec requests and then settles into ratePerSec sustained.
type RateLimiter struct {
	mu sync.Mutex

	ratePerSec float64
	capacity   float64
	tokens     float64
	lastRefill time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(ratePerSec float64) *RateLimiter {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	limiter := &RateLimiter{
		ratePerSec: ratePerSec,
		capacity:   ratePerSec,
		tokens:     ratePerSec,
		now:        time.Now,
		sleep:      sleepContext,
	}
	limiter.lastRefill = limiter.now()
	return limiter
}

// Acquire blocks until one token is available, then consumes it. Waiters are
// not FIFO; starvation is bounded by the refill rate.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	for {
		wait, ok := l.tryTake()
		if ok {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return crerr.Wrap(err, "rate limiter wait")
		}
	}
}

func (l *RateLimiter) tryTake() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(l.lastRefill).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.ratePerSec
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
		l.lastRefill = now
	}

	if l.tokens >= 1 {
		l.tokens--
		return 0, true
	}

	deficit := 1 - l.tokens
	wait := time.Duration(deficit / l.ratePerSec * float64(time.Second))
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
