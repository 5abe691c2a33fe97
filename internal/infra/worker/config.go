// Package worker holds the scheduled runner's settings, its health endpoints and metrics,
// and the Job that turns one scrape run into published documents.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"flight-timetable/internal/pkg/config"
)

// WorkerConfig controls the cron schedule and the bounds of each run.
//
// Example usage:
//
//	metrics := NewWorkerMetrics()
//	cfg := LoadConfigFromEnv(logger, metrics)
//	// cfg is always valid; invalid env values were replaced by defaults
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression.
	// Default: "0 4 1 * *" (04:00 on the first day of each month, when new schedules publish)
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in.
	// Default: "Asia/Tokyo"
	Timezone string

	// ScrapeTimeout bounds one full run, publishing included.
	// Range: 1m-4h. Default: 30m
	ScrapeTimeout time.Duration

	// HealthPort serves /health, /health/ready and /metrics.
	// Range: 1024-65535. Default: 9091
	HealthPort int

	// RunOnStart triggers one run immediately instead of waiting for the first tick.
	// Default: false
	RunOnStart bool
}

// DefaultConfig returns the production worker settings.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:  "0 4 1 * *",
		Timezone:      "Asia/Tokyo",
		ScrapeTimeout: 30 * time.Minute,
		HealthPort:    9091,
	}
}

// Validate checks every field and reports all failures together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.ScrapeTimeout); err != nil {
		errs = append(errs, fmt.Errorf("scrape timeout: %w", err))
	}
	if err := config.IntRange(1024, 65535)(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location resolves Timezone. A zone that cannot be loaded yields UTC.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv loads the worker settings with a fail-open strategy: every invalid
// value is replaced by its default, logged, and counted in metrics. It never fails.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default: "0 4 1 * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "Asia/Tokyo")
//   - SCRAPE_TIMEOUT: duration, 1m-4h (default: 30m)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
//   - WORKER_RUN_ON_START: boolean (default: false)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()

	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	tr := config.NewTracker(cm)

	cfg.CronSchedule = config.Use(tr, "cron_schedule",
		config.LoadString("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	cfg.Timezone = config.Use(tr, "timezone",
		config.LoadString("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.ScrapeTimeout = config.Use(tr, "scrape_timeout",
		config.LoadDuration("SCRAPE_TIMEOUT", cfg.ScrapeTimeout, config.DurationRange(time.Minute, 4*time.Hour)))
	cfg.HealthPort = config.Use(tr, "health_port",
		config.LoadInt("WORKER_HEALTH_PORT", cfg.HealthPort, config.IntRange(1024, 65535)))
	cfg.RunOnStart = config.Use(tr, "run_on_start",
		config.LoadBool("WORKER_RUN_ON_START", cfg.RunOnStart))

	tr.Done()
	for _, w := range tr.Warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}
	return &cfg
}
