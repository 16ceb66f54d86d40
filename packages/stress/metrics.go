package stress

import (
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Latencies are recorded in microseconds, 1us to 60s, 3 significant digits.
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatencyUs, maxLatencyUs, 3)
}

func clampUs(d time.Duration) int64 {
	us := d.Microseconds()
	if us < minLatencyUs {
		return minLatencyUs
	}
	if us > maxLatencyUs {
		return maxLatencyUs
	}
	return us
}

func quantile(h *hdrhistogram.Histogram, q float64) time.Duration {
	return time.Duration(h.ValueAtQuantile(q)) * time.Microsecond
}

// Metrics collects step latencies across runs
type Metrics struct {
	mu      sync.Mutex
	overall *hdrhistogram.Histogram
	steps   map[string]*stepMetrics
	order   []string
}

type stepMetrics struct {
	count     int64
	failures  int64
	histogram *hdrhistogram.Histogram
}

// NewMetrics creates a new Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		overall: newHistogram(),
		steps:   make(map[string]*stepMetrics),
	}
}

// Record records one executed step. Steps that never got a response still
// count, with their latency, as failures.
func (m *Metrics) Record(step string, duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sm, ok := m.steps[step]
	if !ok {
		sm = &stepMetrics{histogram: newHistogram()}
		m.steps[step] = sm
		m.order = append(m.order, step)
	}

	sm.count++
	if failed {
		sm.failures++
	}
	us := clampUs(duration)
	_ = sm.histogram.RecordValue(us)
	_ = m.overall.RecordValue(us)
}

// StepStats summarizes one step over all runs
type StepStats struct {
	Name     string
	Count    int64
	Failures int64
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Mean     time.Duration
	Max      time.Duration
}

// LatencyStats summarizes every recorded step
type LatencyStats struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
}

// Steps returns per-step statistics in first-seen order.
func (m *Metrics) Steps() []*StepStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*StepStats, 0, len(m.order))
	for _, name := range m.order {
		sm := m.steps[name]
		out = append(out, &StepStats{
			Name:     name,
			Count:    sm.count,
			Failures: sm.failures,
			P50:      quantile(sm.histogram, 50),
			P95:      quantile(sm.histogram, 95),
			P99:      quantile(sm.histogram, 99),
			Mean:     time.Duration(sm.histogram.Mean()) * time.Microsecond,
			Max:      time.Duration(sm.histogram.Max()) * time.Microsecond,
		})
	}
	return out
}

// Overall returns statistics across all steps.
func (m *Metrics) Overall() LatencyStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return LatencyStats{
		Count: m.overall.TotalCount(),
		P50:   quantile(m.overall, 50),
		P95:   quantile(m.overall, 95),
		P99:   quantile(m.overall, 99),
		Min:   time.Duration(m.overall.Min()) * time.Microsecond,
		Max:   time.Duration(m.overall.Max()) * time.Microsecond,
		Mean:  time.Duration(m.overall.Mean()) * time.Microsecond,
	}
}

// EvaluateThresholds checks the report against t
func EvaluateThresholds(t Thresholds, r *Report) []ThresholdResult {
	var results []ThresholdResult

	latency := func(name, metric string, limit, actual time.Duration) {
		if limit <= 0 {
			return
		}
		passed, op := t.within(metric, float64(actual), float64(limit))
		results = append(results, ThresholdResult{
			Name:     name,
			Passed:   passed,
			Expected: op + " " + limit.String(),
			Actual:   actual.String(),
		})
	}
	latency("p50", "p50", t.P50, r.Latency.P50)
	latency("p95", "p95", t.P95, r.Latency.P95)
	latency("p99", "p99", t.P99, r.Latency.P99)
	latency("max latency", "max", t.MaxLatency, r.Latency.Max)

	if t.FailureRate > 0 {
		passed, op := t.within("failures", r.FailureRate(), t.FailureRate)
		results = append(results, ThresholdResult{
			Name:     "failure rate",
			Passed:   passed,
			Expected: op + " " + formatPercent(t.FailureRate),
			Actual:   formatPercent(r.FailureRate()),
		})
	}

	return results
}

func formatPercent(f float64) string {
	return formatFloat(f*100) + "%"
}

func formatFloat(f float64) string {
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
