package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"flight-timetable/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

func testSettings(cooldown time.Duration) Settings {
	return Settings{MinPages: 4, FailureRatio: 0.5, Window: 10 * time.Second, Cooldown: cooldown, Probes: 1}
}

func failWith(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

func page() (string, error) { return "<table></table>", nil }

func TestNew(t *testing.T) {
	b := New("ekitan", SiteSettings())

	if b.Name() != "ekitan" {
		t.Errorf("expected name ekitan, got %q", b.Name())
	}
	if b.State() != "closed" || b.Open() {
		t.Errorf("expected a closed breaker, got %s", b.State())
	}
}

func TestBreaker_Page(t *testing.T) {
	b := New("test", testSettings(time.Second))

	got, err := b.Page(page)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "<table></table>" {
		t.Errorf("unexpected page %q", got)
	}

	serverErr := &retry.StatusError{SourceID: 22, StatusCode: http.StatusBadGateway}
	if _, err := b.Page(failWith(serverErr)); !errors.Is(err, serverErr) {
		t.Errorf("expected the page error back, got %v", err)
	}
}

func TestBreaker_TripsOnSiteFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"server errors", &retry.StatusError{SourceID: 22, StatusCode: http.StatusServiceUnavailable}},
		{"throttling", &retry.StatusError{SourceID: 22, StatusCode: http.StatusTooManyRequests}},
		{"blocked", &retry.StatusError{SourceID: 22, StatusCode: http.StatusForbidden}},
		{"transport", errors.New("connection reset by peer")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("test", testSettings(time.Minute))
			for i := 0; i < 4; i++ {
				_, _ = b.Page(failWith(tt.err))
			}
			if !b.Open() {
				t.Fatalf("expected open after 4 failures, got %s", b.State())
			}

			called := false
			_, err := b.Page(func() (string, error) { called = true; return page() })
			if !errors.Is(err, gobreaker.ErrOpenState) {
				t.Errorf("expected ErrOpenState, got %v", err)
			}
			if called {
				t.Error("fetch must not run while open")
			}
			if retry.Classify(fmt.Errorf("fetch source 22: %w", err)) != retry.GiveUp {
				t.Error("a rejected request must not be retried")
			}
		})
	}
}

func TestBreaker_IgnoresMissingPagesAndCancellation(t *testing.T) {
	b := New("test", testSettings(time.Minute))

	for i := 0; i < 3; i++ {
		_, _ = b.Page(failWith(&retry.StatusError{SourceID: 900 + i, StatusCode: http.StatusNotFound}))
	}
	_, _ = b.Page(failWith(&retry.StatusError{SourceID: 950, StatusCode: http.StatusGone}))
	_, _ = b.Page(failWith(fmt.Errorf("get page: %w", context.Canceled)))

	if b.Open() {
		t.Errorf("missing pages and cancellation must not trip the breaker, got %s", b.State())
	}
}

func TestBreaker_BelowMinPagesStaysClosed(t *testing.T) {
	b := New("test", testSettings(time.Minute))

	for i := 0; i < 3; i++ {
		_, _ = b.Page(failWith(errors.New("timeout")))
	}
	if b.Open() {
		t.Error("three failures are below MinPages")
	}
}

func TestBreaker_RecoversAfterCooldown(t *testing.T) {
	b := New("test", testSettings(50*time.Millisecond))
	for i := 0; i < 4; i++ {
		_, _ = b.Page(failWith(errors.New("timeout")))
	}
	if !b.Open() {
		t.Fatal("expected open")
	}

	time.Sleep(80 * time.Millisecond)
	if b.State() != "half-open" {
		t.Fatalf("expected half-open after cooldown, got %s", b.State())
	}
	if _, err := b.Page(page); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if b.State() != "closed" {
		t.Errorf("expected closed after a successful probe, got %s", b.State())
	}
}

func TestSiteSettings(t *testing.T) {
	s := SiteSettings()
	if s.MinPages != 10 || s.FailureRatio != 0.8 || s.Cooldown != 10*time.Minute {
		t.Errorf("unexpected site settings %+v", s)
	}
}
