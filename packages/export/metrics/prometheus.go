package metrics

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PrometheusExporter writes snapshots in the Prometheus text exposition
// format, suitable for a node_exporter textfile collector.
type PrometheusExporter struct {
	writer io.Writer
	prefix string
}

// PrometheusOption is a functional option for PrometheusExporter
type PrometheusOption func(*PrometheusExporter)

// WithPrometheusWriter sets the output writer for Prometheus metrics
func WithPrometheusWriter(w io.Writer) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.writer = w
	}
}

// WithPrometheusPrefix changes the metric name prefix
func WithPrometheusPrefix(prefix string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.prefix = prefix
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter
func NewPrometheusExporter(opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{prefix: "bookcheck"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PrometheusExporter) Export(s *Snapshot) error {
	if p.writer == nil {
		return fmt.Errorf("prometheus exporter has no writer")
	}
	w := bufio.NewWriter(p.writer)
	now := s.Timestamp.UnixMilli()

	p.header(w, "runs_total", "counter", "Lifecycle runs executed")
	fmt.Fprintf(w, "%s_runs_total %d %d\n", p.prefix, s.Runs, now)
	p.header(w, "runs_passed_total", "counter", "Lifecycle runs where every step passed")
	fmt.Fprintf(w, "%s_runs_passed_total %d %d\n", p.prefix, s.Passed, now)
	p.header(w, "runs_failed_total", "counter", "Lifecycle runs stopped by a failing step")
	fmt.Fprintf(w, "%s_runs_failed_total %d %d\n", p.prefix, s.Failed, now)

	if len(s.FailuresByKind) > 0 {
		p.header(w, "failures_total", "counter", "Failed runs by failure kind")
		for _, kind := range sortedKinds(s.FailuresByKind) {
			fmt.Fprintf(w, "%s_failures_total{kind=\"%s\"} %d %d\n", p.prefix, sanitizeLabel(kind), s.FailuresByKind[kind], now)
		}
	}

	if len(s.Steps) > 0 {
		p.header(w, "step_duration_ms", "summary", "Step latency in milliseconds")
		for _, st := range s.Steps {
			step := sanitizeLabel(st.Name)
			fmt.Fprintf(w, "%s_step_duration_ms{step=\"%s\",quantile=\"0.5\"} %.3f %d\n", p.prefix, step, st.P50Ms, now)
			fmt.Fprintf(w, "%s_step_duration_ms{step=\"%s\",quantile=\"0.95\"} %.3f %d\n", p.prefix, step, st.P95Ms, now)
			fmt.Fprintf(w, "%s_step_duration_ms{step=\"%s\",quantile=\"0.99\"} %.3f %d\n", p.prefix, step, st.P99Ms, now)
			fmt.Fprintf(w, "%s_step_duration_ms_sum{step=\"%s\"} %.3f %d\n", p.prefix, step, st.MeanMs*float64(st.Count), now)
			fmt.Fprintf(w, "%s_step_duration_ms_count{step=\"%s\"} %d %d\n", p.prefix, step, st.Count, now)
		}
		p.header(w, "step_failures_total", "counter", "Failures per step")
		for _, st := range s.Steps {
			fmt.Fprintf(w, "%s_step_failures_total{step=\"%s\"} %d %d\n", p.prefix, sanitizeLabel(st.Name), st.Failures, now)
		}
	}

	return w.Flush()
}

func (p *PrometheusExporter) header(w io.Writer, name, kind, help string) {
	fmt.Fprintf(w, "# HELP %s_%s %s\n", p.prefix, name, help)
	fmt.Fprintf(w, "# TYPE %s_%s %s\n", p.prefix, name, kind)
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
