package retry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"

	"flight-timetable/internal/observability/logging"

	"github.com/sony/gobreaker"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "Client.Timeout exceeded while awaiting headers" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func fastPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 20 * time.Millisecond}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Verdict
	}{
		{"nil", nil, GiveUp},
		{"bad gateway", &StatusError{SourceID: 22, StatusCode: http.StatusBadGateway}, Again},
		{"request timeout", &StatusError{SourceID: 22, StatusCode: http.StatusRequestTimeout}, Again},
		{"unavailable without retry-after", &StatusError{SourceID: 22, StatusCode: http.StatusServiceUnavailable}, Again},
		{"unavailable with retry-after", &StatusError{SourceID: 22, StatusCode: http.StatusServiceUnavailable, RetryAfter: time.Second}, Throttled},
		{"too many requests", &StatusError{SourceID: 22, StatusCode: http.StatusTooManyRequests}, Throttled},
		{"source page gone", &StatusError{SourceID: 999, StatusCode: http.StatusNotFound}, GiveUp},
		{"blocked", &StatusError{SourceID: 22, StatusCode: http.StatusForbidden}, GiveUp},
		{"wrapped status", fmt.Errorf("fetch source 22: %w", &StatusError{SourceID: 22, StatusCode: 500}), Again},
		{"breaker open", fmt.Errorf("fetch source 22: %w", gobreaker.ErrOpenState), GiveUp},
		{"breaker probing", gobreaker.ErrTooManyRequests, GiveUp},
		{"client timeout", fmt.Errorf("get page: %w", timeoutErr{}), Again},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), Again},
		{"truncated body", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), Again},
		{"run canceled", fmt.Errorf("get page: %w", context.Canceled), GiveUp},
		{"run deadline", context.DeadlineExceeded, GiveUp},
		{"unknown", errors.New("malformed response"), GiveUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestPolicy_Wait(t *testing.T) {
	p := Policy{Attempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second}
	server := &StatusError{StatusCode: 502}

	tests := []struct {
		name    string
		attempt int
		err     error
		want    time.Duration
	}{
		{"first failure", 1, server, 2 * time.Second},
		{"second failure doubles", 2, server, 4 * time.Second},
		{"capped", 4, server, 10 * time.Second},
		{"far beyond cap", 70, server, 10 * time.Second},
		{"retry-after longer than backoff", 1, &StatusError{StatusCode: 429, RetryAfter: 7 * time.Second}, 7 * time.Second},
		{"retry-after shorter than backoff", 2, &StatusError{StatusCode: 429, RetryAfter: time.Second}, 4 * time.Second},
		{"retry-after beyond cap is kept", 1, &StatusError{StatusCode: 429, RetryAfter: time.Minute}, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Wait(tt.attempt, tt.err); got != tt.want {
				t.Errorf("Wait(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestDo_RecoversFromServerErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), 22, func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{SourceID: 22, StatusCode: http.StatusBadGateway}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopsOnMissingPage(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), 999, func(context.Context) error {
		calls++
		return &StatusError{SourceID: 999, StatusCode: http.StatusNotFound}
	})

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected the 404 StatusError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_StopsWhenBreakerRejects(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), 22, func(context.Context) error {
		calls++
		return gobreaker.ErrOpenState
	})

	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), 22, func(context.Context) error {
		calls++
		return &StatusError{SourceID: 22, StatusCode: http.StatusServiceUnavailable}
	})

	if err == nil || !strings.Contains(err.Error(), "gave up after 3 attempts") {
		t.Fatalf("unexpected error %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Errorf("expected the last StatusError to be wrapped, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ThrottledBeyondLimit(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), 22, func(context.Context) error {
		calls++
		return &StatusError{SourceID: 22, StatusCode: http.StatusTooManyRequests, RetryAfter: time.Hour}
	})

	if err == nil || !strings.Contains(err.Error(), "throttled for 1h0m0s") {
		t.Fatalf("unexpected error %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_HonorsRetryAfter(t *testing.T) {
	p := Policy{Attempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Second}
	calls := 0
	start := time.Now()
	err := Do(context.Background(), p, 22, func(context.Context) error {
		calls++
		if calls == 1 {
			return &StatusError{SourceID: 22, StatusCode: http.StatusTooManyRequests, RetryAfter: 50 * time.Millisecond}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected to wait at least 50ms, waited %v", elapsed)
	}
}

func TestDo_RunCanceledWhileWaiting(t *testing.T) {
	p := Policy{Attempts: 3, BaseDelay: time.Second, MaxDelay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	err := Do(ctx, p, 22, func(context.Context) error {
		cancel()
		return &StatusError{SourceID: 22, StatusCode: http.StatusBadGateway}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDo_LogsSourceID(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.New(&buf, "json", slog.LevelInfo))

	calls := 0
	err := Do(ctx, fastPolicy(), 47, func(context.Context) error {
		calls++
		if calls == 1 {
			return &StatusError{SourceID: 47, StatusCode: http.StatusInternalServerError}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a retry and a recovery record, got %q", buf.String())
	}
	for _, line := range lines {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if entry["source_id"] != float64(47) {
			t.Errorf("expected source_id=47 in %q", line)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 1, 4, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "120", 2 * time.Minute},
		{"padded", " 5 ", 5 * time.Second},
		{"zero", "0", 0},
		{"negative", "-3", 0},
		{"http date", "Thu, 01 Oct 2026 04:00:30 GMT", 30 * time.Second},
		{"past date", "Thu, 01 Oct 2026 03:00:00 GMT", 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRetryAfter(tt.in, now); got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	if got := addJitter(base, 0); got != base {
		t.Errorf("expected no jitter, got %v", got)
	}
	for i := 0; i < 50; i++ {
		got := addJitter(base, 5)
		if got < base || got > 2*base {
			t.Fatalf("jitter out of range: %v", got)
		}
	}
}
