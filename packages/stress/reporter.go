package stress

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"github.com/fatih/color"
)

// WriteReport prints the summary table of a repeated run.
func WriteReport(w io.Writer, r *Report) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)

	fmt.Fprintln(w)
	bold.Fprintln(w, "REPEATED RUN SUMMARY")
	fmt.Fprintln(w, strings.Repeat("─", 40))

	fmt.Fprintf(w, "Duration:   %s\n", formatDuration(r.Duration))
	fmt.Fprintf(w, "Runs:       ")
	bold.Fprintf(w, "%s", formatNumber(int64(r.Iterations)))
	if r.Interrupted {
		yellow.Fprintf(w, " (interrupted)")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Passed:     ")
	green.Fprintf(w, "%s\n", formatNumber(int64(r.Passed)))
	fmt.Fprintf(w, "Failed:     ")
	if r.Failed > 0 {
		red.Fprintf(w, "%s", formatNumber(int64(r.Failed)))
	} else {
		fmt.Fprintf(w, "%s", formatNumber(int64(r.Failed)))
	}
	fmt.Fprintf(w, " (%s)\n", formatPercent(r.FailureRate()))

	if len(r.Failures) > 0 {
		kinds := make([]string, 0, len(r.Failures))
		for k := range r.Failures {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-18s %d\n", k, r.Failures[runner.FailureKind(k)])
		}
	}
	if r.FirstFailure != nil {
		fmt.Fprintf(w, "First:      %s\n", r.FirstFailure.Error())
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "LATENCY (ms)")
	fmt.Fprintf(w, "  %-18s %8s %8s %8s %8s %8s\n", "step", "count", "p50", "p95", "p99", "max")
	for _, name := range r.StepOrder {
		st := r.Steps[name]
		line := fmt.Sprintf("  %-18s %8d %8s %8s %8s %8s",
			name, st.Count,
			formatLatencyMs(st.P50), formatLatencyMs(st.P95), formatLatencyMs(st.P99), formatLatencyMs(st.Max))
		if st.Failures > 0 {
			red.Fprintf(w, "%s  (%d failed)\n", line, st.Failures)
		} else {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintf(w, "  %-18s %8d %8s %8s %8s %8s\n", "all",
		r.Latency.Count,
		formatLatencyMs(r.Latency.P50), formatLatencyMs(r.Latency.P95),
		formatLatencyMs(r.Latency.P99), formatLatencyMs(r.Latency.Max))

	if len(r.Thresholds) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "THRESHOLDS")
		for _, tr := range r.Thresholds {
			if tr.Passed {
				green.Fprintf(w, "  ✓ ")
			} else {
				red.Fprintf(w, "  ✗ ")
			}
			fmt.Fprintf(w, "%s %s    (actual: %s)\n", tr.Name, tr.Expected, tr.Actual)
		}
	}

	fmt.Fprintln(w)
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// formatLatencyMs formats latency in milliseconds
func formatLatencyMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	if ms < 1 {
		return fmt.Sprintf("%.2f", ms)
	}
	if ms < 10 {
		return fmt.Sprintf("%.1f", ms)
	}
	return fmt.Sprintf("%.0f", ms)
}

// formatNumber formats a number with commas
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}

	result := make([]byte, 0, len(s)+(len(s)-1)/3)
	start := len(s) % 3
	if start == 0 {
		start = 3
	}
	result = append(result, s[:start]...)
	for i := start; i < len(s); i += 3 {
		result = append(result, ',')
		result = append(result, s[i:i+3]...)
	}
	return string(result)
}
