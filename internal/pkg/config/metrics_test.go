package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetricsWith(reg, "metrics_test")

	m.RecordValidationError("cron_schedule")
	m.RecordValidationError("cron_schedule")
	m.RecordFallback("timezone")
	m.SetFallbackActive(true)
	m.RecordLoadTimestamp()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("cron_schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("timezone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))

	m.SetFallbackActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "metrics_test_config_load_timestamp")
	assert.Contains(t, names, "metrics_test_config_validation_errors_total")
	assert.Contains(t, names, "metrics_test_config_fallbacks_total")
	assert.Contains(t, names, "metrics_test_config_fallback_active")
}

func TestNewConfigMetrics_DefaultRegistry(t *testing.T) {
	m := NewConfigMetrics("default_registry_test")
	require.NotNil(t, m)
	m.RecordFallback("x")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("x")))
}
