// Package stress repeats the order lifecycle to check that its properties
// hold run after run, and reports per-step latency percentiles.
package stress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for a repeated run
type Config struct {
	// Iterations is how many times the chain runs.
	Iterations int
	// Rate caps chain starts per second. Zero runs back to back.
	Rate float64
	// StopOnFailure ends the loop at the first failed run.
	StopOnFailure bool
	Thresholds    Thresholds
}

// Thresholds defines pass/fail criteria over all runs
type Thresholds struct {
	P50         time.Duration // 50th percentile step latency
	P95         time.Duration // 95th percentile step latency
	P99         time.Duration // 99th percentile step latency
	MaxLatency  time.Duration // maximum allowed step latency
	FailureRate float64       // maximum share of failed runs (0.0 - 1.0)

	// Inclusive holds the metrics written with "<="; the others are strict.
	// Keys are p50, p95, p99, max and failures.
	Inclusive map[string]bool
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Iterations: 10,
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	if c.Thresholds.FailureRate < 0 || c.Thresholds.FailureRate > 1 {
		return fmt.Errorf("failure rate threshold must be between 0 and 1")
	}
	return nil
}

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*(<=?)\s*(.+)$`)

// ParseThresholds parses a threshold string like "p95<200ms,failures<1%"
func ParseThresholds(s string) (Thresholds, error) {
	var t Thresholds

	if s == "" {
		return t, nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := parseThresholdPart(part, &t); err != nil {
			return t, err
		}
	}

	return t, nil
}

func parseThresholdPart(part string, t *Thresholds) error {
	matches := thresholdPattern.FindStringSubmatch(part)
	if len(matches) != 4 {
		return fmt.Errorf("invalid threshold format: %s", part)
	}

	metric := strings.ToLower(matches[1])
	inclusive := matches[2] == "<="
	valueStr := strings.TrimSpace(matches[3])

	switch metric {
	case "p50", "p95", "p99", "max", "maxlatency":
		d, err := time.ParseDuration(valueStr)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", metric, valueStr)
		}
		switch metric {
		case "p50":
			t.P50 = d
		case "p95":
			t.P95 = d
		case "p99":
			t.P99 = d
		default:
			metric = "max"
			t.MaxLatency = d
		}
		t.setInclusive(metric, inclusive)

	case "failures", "failurerate", "errors":
		percent := strings.HasSuffix(valueStr, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(valueStr, "%"), 64)
		if err != nil {
			return fmt.Errorf("invalid failure rate: %s", valueStr)
		}
		if percent {
			f = f / 100
		}
		t.FailureRate = f
		t.setInclusive("failures", inclusive)

	default:
		return fmt.Errorf("unknown threshold metric: %s", metric)
	}

	return nil
}

func (t *Thresholds) setInclusive(metric string, inclusive bool) {
	if !inclusive {
		delete(t.Inclusive, metric)
		return
	}
	if t.Inclusive == nil {
		t.Inclusive = make(map[string]bool)
	}
	t.Inclusive[metric] = true
}

// within reports whether actual satisfies the limit for metric and renders
// the comparison the way it was written.
func (t Thresholds) within(metric string, actual, limit float64) (bool, string) {
	if t.Inclusive[metric] {
		return actual <= limit, "<="
	}
	return actual < limit, "<"
}

// HasThresholds returns true if any thresholds are configured
func (t *Thresholds) HasThresholds() bool {
	return t.P50 > 0 || t.P95 > 0 || t.P99 > 0 || t.MaxLatency > 0 || t.FailureRate > 0
}

// ThresholdResult holds the result of evaluating a threshold
type ThresholdResult struct {
	Name     string
	Passed   bool
	Expected string
	Actual   string
}
