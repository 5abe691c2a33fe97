// Package retry repeats timetable page requests that failed for reasons likely to pass:
// server errors, throttling and dropped connections.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"flight-timetable/internal/observability/logging"

	"github.com/sony/gobreaker"
)

// StatusError is a non-200 answer to a timetable page request.
type StatusError struct {
	SourceID   int
	StatusCode int
	// RetryAfter is the wait the site asked for; zero when it sent none.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source %d: HTTP %d %s", e.SourceID, e.StatusCode, http.StatusText(e.StatusCode))
}

// Verdict is what to do after a failed attempt.
type Verdict int

const (
	// GiveUp means another attempt would fail the same way.
	GiveUp Verdict = iota
	// Again means the failure looks transient.
	Again
	// Throttled means the site asked us to slow down; wait at least its Retry-After.
	Throttled
)

func (v Verdict) String() string {
	switch v {
	case Again:
		return "again"
	case Throttled:
		return "throttled"
	default:
		return "give_up"
	}
}

// Classify decides whether a failed page request is worth another attempt.
// A request rejected by the breaker is never repeated: the breaker stays open for
// longer than one page's retry budget.
func Classify(err error) Verdict {
	if err == nil {
		return GiveUp
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return GiveUp
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusTooManyRequests:
			return Throttled
		case se.StatusCode == http.StatusServiceUnavailable && se.RetryAfter > 0:
			return Throttled
		case se.StatusCode >= 500, se.StatusCode == http.StatusRequestTimeout:
			return Again
		}
		return GiveUp
	}

	// Per-request client timeouts are retried; a canceled run is not.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Again
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return GiveUp
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return Again
	}
	return GiveUp
}

// Policy bounds the attempts spent on one page.
type Policy struct {
	// Attempts is the total number of requests, the first one included.
	Attempts int
	// BaseDelay is the wait after the first failure; it doubles with each further one.
	BaseDelay time.Duration
	// MaxDelay caps every wait. A Retry-After beyond it ends the retries.
	MaxDelay time.Duration
	// Jitter is the share of the wait added at random, 0 to 1.
	Jitter float64
}

// PagePolicy returns the policy for timetable pages: few, slow retries, since the
// site is rate-limited and a missed page only shrinks the dataset.
func PagePolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 2 * time.Second,
		MaxDelay:  10 * time.Second,
		Jitter:    0.2,
	}
}

// Wait returns the pause after failed attempt n (1-based), before jitter.
func (p Policy) Wait(n int, err error) time.Duration {
	d := p.MaxDelay
	if n >= 1 && n <= 16 {
		if backoff := p.BaseDelay << (n - 1); backoff < p.MaxDelay {
			d = backoff
		}
	}
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > d {
		d = se.RetryAfter
	}
	return d
}

// Do calls fetch until it succeeds, fails in a way not worth repeating, runs out of
// attempts, or ctx is done. Attempts are logged with sourceID on the logger in ctx.
func Do(ctx context.Context, p Policy, sourceID int, fetch func(ctx context.Context) error) error {
	logger := logging.FromContext(ctx).With(slog.Int("source_id", sourceID))

	for attempt := 1; ; attempt++ {
		err := fetch(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("page fetched after retry", slog.Int("attempt", attempt))
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(err, ctxErr) {
				return err
			}
			return fmt.Errorf("%w: %w", ctxErr, err)
		}

		verdict := Classify(err)
		if verdict == GiveUp {
			logger.Debug("page request failed, not retrying",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		}
		if attempt >= p.Attempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		wait := p.Wait(attempt, err)
		if wait > p.MaxDelay {
			return fmt.Errorf("throttled for %s, beyond the %s limit: %w", wait, p.MaxDelay, err)
		}
		wait = addJitter(wait, p.Jitter)

		logger.Warn("page request failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.Attempts),
			slog.String("verdict", verdict.String()),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry abandoned: %w", ctx.Err())
		}
	}
}

// ParseRetryAfter reads a Retry-After header given as seconds or as an HTTP date.
// Missing, malformed or past values yield zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	if fraction > 1 {
		fraction = 1
	}
	// #nosec G404 -- jitter does not need cryptographic randomness.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
