package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Running: "+result.Name))

	for _, r := range result.Steps {
		symbol := green("✓")
		if !r.Passed() {
			symbol = red("✗")
		}
		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

		if f.verbose && r.StatusCode != 0 {
			fmt.Fprintf(f.writer, "    Status: %d\n", r.StatusCode)
		}

		if r.Failure != nil {
			f.formatFailure(r.Failure)
		}

		if f.verbose && len(r.Captured) > 0 {
			fmt.Fprintf(f.writer, "    Captures:\n")
			keys := make([]string, 0, len(r.Captured))
			for k := range r.Captured {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(f.writer, "      %s = %s\n", k, formatValue(r.Captured[k], 100))
			}
		}

		if f.verbose {
			for _, a := range r.Attachments {
				fmt.Fprintf(f.writer, "    %s (%s):\n", a.Name, a.ContentType)
				for _, line := range strings.Split(strings.TrimRight(string(a.Content), "\n"), "\n") {
					fmt.Fprintf(f.writer, "      %s\n", line)
				}
			}
		}
	}

	for _, name := range result.Pending {
		fmt.Fprintf(f.writer, "  %s %s (not run)\n", yellow("-"), name)
	}

	passed, failed, skipped := stepCounts(result)
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Steps: ")
	if passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", passed)))
	}
	if failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", failed)))
	}
	if skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d not run", skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", passed+failed+skipped)
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) formatFailure(fail *runner.Failure) {
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(f.writer, "    %s %s\n", red("→"), fail.Kind)
	switch fail.Kind {
	case runner.FailureUnexpectedStatus:
		fmt.Fprintf(f.writer, "      Expected: %d\n", fail.ExpectedStatus)
		fmt.Fprintf(f.writer, "      Actual:   %d\n", fail.ActualStatus)
	case runner.FailureShapeViolation:
		fmt.Fprintf(f.writer, "      %s\n", fail.Reason)
		for _, v := range fail.Violations {
			fmt.Fprintf(f.writer, "      %s: %s\n", v.Field, v.Reason)
		}
	default:
		fmt.Fprintf(f.writer, "      %s\n", formatValue(fail.Reason, 300))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("bookcheck"), version)
}
