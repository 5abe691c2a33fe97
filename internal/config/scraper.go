// Package config assembles the scraper and storage settings from environment variables.
package config

import (
	"fmt"
	"time"

	"flight-timetable/internal/infra/scraper"
	pkgconfig "flight-timetable/internal/pkg/config"
)

// DefaultOutputDir is where the one-shot command writes documents when nothing else is set.
const DefaultOutputDir = "data"

// ScraperConfig holds everything the pipeline needs besides the registry.
type ScraperConfig struct {
	// Fetcher is passed to scraper.NewTimetableFetcher.
	Fetcher scraper.FetcherConfig

	// FetchInterval is the pause between two source fetches. Zero disables pacing.
	FetchInterval time.Duration

	// OutputDir receives timetable.json, airports.json and timetable_meta.json.
	OutputDir string

	// SourceIDs restricts a run to these sources. Empty means every registry airport.
	SourceIDs []int
}

// DefaultScraperConfig returns the production settings.
func DefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		Fetcher:       scraper.DefaultFetcherConfig(),
		FetchInterval: scraper.DefaultInterval,
		OutputDir:     DefaultOutputDir,
	}
}

// LoadScraperConfig reads the scraper settings. Invalid values fall back to the defaults
// and are reported through tr, which may be nil.
//
// Environment variables:
//   - TIMETABLE_BASE_URL: http(s) site root (default: https://ekitan.com)
//   - TIMETABLE_USER_AGENT: request User-Agent (default: desktop Chrome)
//   - TIMETABLE_FETCH_TIMEOUT: per-request timeout, 1s-2m (default: 15s)
//   - TIMETABLE_FETCH_INTERVAL: pause between sources, 0-1m (default: 300ms)
//   - TIMETABLE_OUTPUT_DIR: output directory (default: data)
//   - TIMETABLE_SOURCE_IDS: comma-separated source ids (default: all)
func LoadScraperConfig(tr *pkgconfig.Tracker) *ScraperConfig {
	cfg := DefaultScraperConfig()

	cfg.Fetcher.BaseURL = pkgconfig.Use(tr, "base_url",
		pkgconfig.LoadString("TIMETABLE_BASE_URL", cfg.Fetcher.BaseURL, pkgconfig.ValidateHTTPURL))
	cfg.Fetcher.UserAgent = pkgconfig.Use(tr, "user_agent",
		pkgconfig.LoadString("TIMETABLE_USER_AGENT", cfg.Fetcher.UserAgent, nil))
	cfg.Fetcher.Timeout = pkgconfig.Use(tr, "fetch_timeout",
		pkgconfig.LoadDuration("TIMETABLE_FETCH_TIMEOUT", cfg.Fetcher.Timeout,
			pkgconfig.DurationRange(time.Second, 2*time.Minute)))
	cfg.FetchInterval = pkgconfig.Use(tr, "fetch_interval",
		pkgconfig.LoadDuration("TIMETABLE_FETCH_INTERVAL", cfg.FetchInterval,
			pkgconfig.DurationRange(0, time.Minute)))
	cfg.OutputDir = pkgconfig.Use(tr, "output_dir",
		pkgconfig.LoadString("TIMETABLE_OUTPUT_DIR", cfg.OutputDir, nil))
	cfg.SourceIDs = pkgconfig.Use(tr, "source_ids",
		pkgconfig.LoadIntList("TIMETABLE_SOURCE_IDS", cfg.SourceIDs, pkgconfig.PositiveInts))

	return &cfg
}

// Validate checks a config built by hand; LoadScraperConfig output always passes.
func (c *ScraperConfig) Validate() error {
	if err := pkgconfig.ValidateHTTPURL(c.Fetcher.BaseURL); err != nil {
		return fmt.Errorf("base url: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Fetcher.Timeout); err != nil {
		return fmt.Errorf("fetch timeout: %w", err)
	}
	if c.FetchInterval < 0 {
		return fmt.Errorf("fetch interval: must not be negative, got %v", c.FetchInterval)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir: cannot be empty")
	}
	if err := pkgconfig.PositiveInts(c.SourceIDs); err != nil {
		return fmt.Errorf("source ids: %w", err)
	}
	return nil
}
