// Package config loads settings from environment variables without ever failing:
// an unset variable yields the default, and an unparsable or invalid one yields the
// default plus a warning. Fallbacks are counted in Prometheus so a misconfigured
// deployment is visible without crashing it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading one variable.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// Load reads key, parses it and validates it. A nil validate accepts every parsed value.
//
// Warning format:
//
//	"Invalid {key}='{raw}': {error}, falling back to default '{default}'"
func Load[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return Result[T]{Value: def}
	}

	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{
			Value:           def,
			Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", key, raw, err, def),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: v}
}

// LoadString loads a string.
func LoadString(key, def string, validate func(string) error) Result[string] {
	return Load(key, def, func(s string) (string, error) { return s, nil }, validate)
}

// LoadDuration loads a time.ParseDuration value such as "15s" or "1h30m".
func LoadDuration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return Load(key, def, time.ParseDuration, validate)
}

// LoadInt loads a base-10 integer.
func LoadInt(key string, def int, validate func(int) error) Result[int] {
	return Load(key, def, strconv.Atoi, validate)
}

// LoadBool loads a strconv.ParseBool value (1, t, true, 0, f, false, ...).
func LoadBool(key string, def bool) Result[bool] {
	return Load(key, def, strconv.ParseBool, nil)
}

// LoadIntList loads a comma-separated list of integers. Blank items are ignored.
func LoadIntList(key string, def []int, validate func([]int) error) Result[[]int] {
	return Load(key, def, parseIntList, validate)
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("item %q is not an integer", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// Tracker collects the fallbacks of one configuration load and reports them to metrics.
type Tracker struct {
	metrics  *ConfigMetrics
	Warnings []string
}

// NewTracker creates a Tracker. m may be nil.
func NewTracker(m *ConfigMetrics) *Tracker {
	return &Tracker{metrics: m}
}

// Use returns r.Value, recording r's warning under field when a fallback was applied.
// A nil Tracker records nothing.
func Use[T any](t *Tracker, field string, r Result[T]) T {
	if t != nil && r.FallbackApplied {
		t.Warnings = append(t.Warnings, r.Warning)
		if t.metrics != nil {
			t.metrics.RecordValidationError(field)
			t.metrics.RecordFallback(field)
		}
	}
	return r.Value
}

// FallbackApplied reports whether any tracked value fell back to its default.
func (t *Tracker) FallbackApplied() bool {
	return len(t.Warnings) > 0
}

// Done stamps the load time and publishes whether any fallback is active.
func (t *Tracker) Done() {
	if t.metrics == nil {
		return
	}
	t.metrics.RecordLoadTimestamp()
	t.metrics.SetFallbackActive(t.FallbackApplied())
}
