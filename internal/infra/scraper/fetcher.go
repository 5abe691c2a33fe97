// Package scraper retrieves timetable pages over HTTP.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"flight-timetable/internal/observability/logging"
	"flight-timetable/internal/resilience/circuitbreaker"
	"flight-timetable/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

const (
	maxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultBaseURL is the timetable site root.
	DefaultBaseURL = "https://ekitan.com"

	// DefaultUserAgent is a desktop browser UA; the site serves a reduced page to bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultTimeout bounds one page request.
	DefaultTimeout = 15 * time.Second

	departuresPath = "/timetable/airplane/domestic/departure/all/%d"
)

// FetcherConfig configures a TimetableFetcher.
type FetcherConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// DefaultFetcherConfig returns the production fetcher settings.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Option customizes a TimetableFetcher.
type Option func(*TimetableFetcher)

// WithHTTPClient replaces the HTTP client. The client's own Timeout is used as is.
func WithHTTPClient(c *http.Client) Option {
	return func(f *TimetableFetcher) { f.client = c }
}

// WithRetryPolicy replaces the per-page retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(f *TimetableFetcher) { f.policy = p }
}

// WithBreaker replaces the site breaker.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(f *TimetableFetcher) { f.breaker = b }
}

// TimetableFetcher downloads one departures page per source id.
type TimetableFetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	breaker   *circuitbreaker.Breaker
	policy    retry.Policy
	now       func() time.Time
}

// NewTimetableFetcher creates a fetcher with retry and circuit breaking around every request.
// Zero fields in cfg take the defaults.
func NewTimetableFetcher(cfg FetcherConfig, opts ...Option) *TimetableFetcher {
	def := DefaultFetcherConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	f := &TimetableFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		breaker:   circuitbreaker.New("timetable-site", circuitbreaker.SiteSettings()),
		policy:    retry.PagePolicy(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the departures page address for a source id.
func (f *TimetableFetcher) URL(sourceID int) string {
	return f.baseURL + fmt.Sprintf(departuresPath, sourceID)
}

// Fetch returns the raw HTML of the departures page for sourceID. Once the site breaker
// is open, every remaining source fails fast with gobreaker.ErrOpenState.
func (f *TimetableFetcher) Fetch(ctx context.Context, sourceID int) (string, error) {
	pageURL := f.URL(sourceID)
	if f.breaker.Open() {
		logging.FromContext(ctx).Warn("timetable site breaker open, request skipped",
			slog.Int("source_id", sourceID),
			slog.String("url", pageURL),
			slog.String("circuit", f.breaker.Name()))
		return "", fmt.Errorf("fetch source %d: %w", sourceID, gobreaker.ErrOpenState)
	}

	var page string
	err := retry.Do(ctx, f.policy, sourceID, func(ctx context.Context) error {
		p, err := f.breaker.Page(func() (string, error) {
			return f.doFetch(ctx, sourceID, pageURL)
		})
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch source %d: %w", sourceID, err)
	}
	return page, nil
}

func (f *TimetableFetcher) doFetch(ctx context.Context, sourceID int, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.StatusError{
			SourceID:   sourceID,
			StatusCode: resp.StatusCode,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After"), f.now()),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
