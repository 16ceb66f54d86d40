// Package metrics exports run outcomes and step latencies for scraping or
// archiving by CI.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/bookcheck/packages/stress"
)

// Formats lists the accepted --metrics values.
var Formats = []string{"prometheus", "json"}

// Snapshot is the exported view of one or more runs.
type Snapshot struct {
	Runs           int            `json:"runs"`
	Passed         int            `json:"passed"`
	Failed         int            `json:"failed"`
	DurationMs     float64        `json:"duration_ms"`
	FailuresByKind map[string]int `json:"failures_by_kind,omitempty"`
	Steps          []StepMetrics  `json:"steps"`
	Timestamp      time.Time      `json:"timestamp"`
}

// StepMetrics holds latency figures for one step across runs.
type StepMetrics struct {
	Name     string  `json:"name"`
	Count    int64   `json:"count"`
	Failures int64   `json:"failures"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
	MeanMs   float64 `json:"mean_ms"`
	MaxMs    float64 `json:"max_ms"`
}

// Exporter writes a snapshot to its destination
type Exporter interface {
	Export(s *Snapshot) error
}

// New returns the exporter for format writing to w.
func New(format string, w io.Writer) (Exporter, error) {
	switch format {
	case "prometheus":
		return NewPrometheusExporter(WithPrometheusWriter(w)), nil
	case "json":
		return NewJSONExporter(WithJSONWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown metrics format %q (want one of %v)", format, Formats)
}

// FromReport converts a repeated-run report.
func FromReport(r *stress.Report) *Snapshot {
	s := &Snapshot{
		Runs:       r.Iterations,
		Passed:     r.Passed,
		Failed:     r.Failed,
		DurationMs: ms(r.Duration),
		Timestamp:  time.Now(),
	}
	if len(r.Failures) > 0 {
		s.FailuresByKind = make(map[string]int, len(r.Failures))
		for kind, n := range r.Failures {
			s.FailuresByKind[string(kind)] = n
		}
	}
	for _, name := range r.StepOrder {
		s.Steps = append(s.Steps, stepMetrics(r.Steps[name]))
	}
	return s
}

// FromResult converts a single run.
func FromResult(r *runner.RunResult) *Snapshot {
	m := stress.NewMetrics()
	for _, step := range r.Steps {
		m.Record(step.Name, step.Duration, !step.Passed())
	}

	s := &Snapshot{
		Runs:       1,
		DurationMs: ms(r.Duration),
		Timestamp:  time.Now(),
	}
	if r.Passed() {
		s.Passed = 1
	} else {
		s.Failed = 1
		s.FailuresByKind = map[string]int{string(r.Failure.Kind): 1}
	}
	for _, st := range m.Steps() {
		s.Steps = append(s.Steps, stepMetrics(st))
	}
	return s
}

func stepMetrics(st *stress.StepStats) StepMetrics {
	return StepMetrics{
		Name:     st.Name,
		Count:    st.Count,
		Failures: st.Failures,
		P50Ms:    ms(st.P50),
		P95Ms:    ms(st.P95),
		P99Ms:    ms(st.P99),
		MeanMs:   ms(st.Mean),
		MaxMs:    ms(st.Max),
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func sortedKinds(m map[string]int) []string {
	kinds := make([]string, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
