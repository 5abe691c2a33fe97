package scraper

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the pause between consecutive source fetches.
const DefaultInterval = 300 * time.Millisecond

// Pacer spaces out requests to the timetable site: one token per interval, burst 1.
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewPacer creates a Pacer. A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	p := &Pacer{interval: interval}
	if interval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return p
}

// Wait blocks until the next request may start or ctx is done.
// The first call returns immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Interval returns the configured spacing.
func (p *Pacer) Interval() time.Duration {
	if p == nil {
		return 0
	}
	return p.interval
}
