package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule checks a five-field cron expression ("minute hour dom month dow")
// with the same parser the worker schedules with.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ValidateTimezone checks that timezone is a loadable IANA name such as "Asia/Tokyo".
// Containers without tzdata fail this for every name but "UTC".
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}
	return nil
}

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// DurationRange returns a validator accepting min <= d <= max.
func DurationRange(min, max time.Duration) func(time.Duration) error {
	return func(d time.Duration) error {
		if min > max {
			return fmt.Errorf("invalid range: min (%v) > max (%v)", min, max)
		}
		if d < min || d > max {
			return fmt.Errorf("duration %v out of range [%v, %v]", d, min, max)
		}
		return nil
	}
}

// IntRange returns a validator accepting min <= v <= max.
func IntRange(min, max int) func(int) error {
	return func(v int) error {
		if min > max {
			return fmt.Errorf("invalid range: min (%d) > max (%d)", min, max)
		}
		if v < min || v > max {
			return fmt.Errorf("value %d out of range [%d, %d]", v, min, max)
		}
		return nil
	}
}

// ValidateHTTPURL requires an absolute http or https URL with a host.
func ValidateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL '%s': %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL '%s': scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL '%s': missing host", raw)
	}
	return nil
}

// PositiveInts rejects lists containing zero or negative values.
func PositiveInts(vs []int) error {
	for _, v := range vs {
		if v <= 0 {
			return fmt.Errorf("value %d must be positive", v)
		}
	}
	return nil
}
