// Package circuitbreaker stops a scrape run from requesting pages once the timetable
// site is failing most of them.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"flight-timetable/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

// Settings decide when the site counts as down.
type Settings struct {
	// MinPages is how many requests the window needs before the failure ratio counts.
	MinPages uint32
	// FailureRatio trips the breaker, e.g. 0.8 for 80% of the window.
	FailureRatio float64
	// Window clears the counts while closed.
	Window time.Duration
	// Cooldown is how long the breaker stays open before probing the site again.
	Cooldown time.Duration
	// Probes is the number of requests let through while half-open.
	Probes uint32
}

// SiteSettings returns the settings for the timetable site. A run visits every source
// once, so the breaker trips only when most of a sizeable window failed, and stays open
// long enough to skip the rest of the run.
func SiteSettings() Settings {
	return Settings{
		MinPages:     10,
		FailureRatio: 0.8,
		Window:       5 * time.Minute,
		Cooldown:     10 * time.Minute,
		Probes:       2,
	}
}

// Breaker guards page requests to one site.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// New creates a Breaker named name.
func New(name string, s Settings) *Breaker {
	return &Breaker{
		name: name,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: s.Probes,
			Interval:    s.Window,
			Timeout:     s.Cooldown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				if c.Requests < s.MinPages {
					return false
				}
				return float64(c.TotalFailures)/float64(c.Requests) >= s.FailureRatio
			},
			IsSuccessful: siteHealthy,
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("timetable site breaker changed state",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// siteHealthy reports whether err leaves the site's health unquestioned. A source page
// that no longer exists, or a run that was canceled, says nothing about the site.
func siteHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *retry.StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusGone
	}
	return false
}

// Page runs fetch through the breaker. While open it returns gobreaker.ErrOpenState
// without calling fetch.
func (b *Breaker) Page(fetch func() (string, error)) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		page, err := fetch()
		return page, err
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// Open reports whether page requests are currently rejected.
func (b *Breaker) Open() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}
