package stress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "default", cfg: *DefaultConfig()},
		{name: "paced", cfg: Config{Iterations: 5, Rate: 2}},
		{name: "no iterations", cfg: Config{}, wantErr: "iterations"},
		{name: "negative rate", cfg: Config{Iterations: 1, Rate: -1}, wantErr: "rate"},
		{name: "bad failure rate", cfg: Config{Iterations: 1, Thresholds: Thresholds{FailureRate: 2}}, wantErr: "failure rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseThresholds(t *testing.T) {
	th, err := ParseThresholds("p95<200ms, p99<=1s,max<2s,failures<5%")

	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, th.P95)
	assert.Equal(t, time.Second, th.P99)
	assert.Equal(t, 2*time.Second, th.MaxLatency)
	assert.InDelta(t, 0.05, th.FailureRate, 1e-9)
	assert.Equal(t, map[string]bool{"p99": true}, th.Inclusive)
	assert.True(t, th.HasThresholds())
}

func TestParseThresholds_OperatorAliases(t *testing.T) {
	th, err := ParseThresholds("maxlatency<=3s,errors<=2%,p95<=1s,p95<900ms")

	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"max": true, "failures": true}, th.Inclusive)
	assert.Equal(t, 900*time.Millisecond, th.P95)
}

func TestParseThresholds_Decimal(t *testing.T) {
	th, err := ParseThresholds("errors<0.1")

	require.NoError(t, err)
	assert.InDelta(t, 0.1, th.FailureRate, 1e-9)
}

func TestParseThresholds_Empty(t *testing.T) {
	th, err := ParseThresholds("")

	require.NoError(t, err)
	assert.False(t, th.HasThresholds())
}

func TestParseThresholds_Invalid(t *testing.T) {
	for _, s := range []string{"p95>200ms", "p95<fast", "rps<5", "nonsense"} {
		_, err := ParseThresholds(s)
		assert.Error(t, err, s)
	}
}
