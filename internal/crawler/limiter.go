package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks before each fetch to bound the request rate.
type Pacer interface {
	// Wait blocks until a request to authority may be sent, or ctx is done.
	Wait(ctx context.Context, authority string) error
}

// NewPacer returns a FixedDelay for a single worker and a DomainLimiter
// otherwise.
func NewPacer(delay time.Duration, workers int) Pacer {
	if workers <= 1 {
		return FixedDelay(delay)
	}
	return NewDomainLimiter(delay)
}

// FixedDelay sleeps for the same duration before every fetch.
type FixedDelay time.Duration

// Wait sleeps for the delay regardless of authority.
func (d FixedDelay) Wait(ctx context.Context, _ string) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DomainLimiter allows one request per delay per authority, so the rate
// seen by each site does not grow with the number of workers.
type DomainLimiter struct {
	delay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewDomainLimiter creates a limiter with one token per delay and burst 1.
func NewDomainLimiter(delay time.Duration) *DomainLimiter {
	return &DomainLimiter{
		delay:    delay,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the token bucket for authority has a token.
func (d *DomainLimiter) Wait(ctx context.Context, authority string) error {
	if d.delay <= 0 {
		return ctx.Err()
	}
	return d.limiter(authority).Wait(ctx)
}

func (d *DomainLimiter) limiter(authority string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.limiters[authority]
	if !ok {
		l = rate.NewLimiter(rate.Every(d.delay), 1)
		d.limiters[authority] = l
	}
	return l
}
