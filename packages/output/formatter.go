package output

import (
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
)

// Formatter renders run results as they complete.
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable formatters buffer results and write them in one go.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the accepted --output values.
var Formats = []string{"console", "json", "junit", "tap"}

// New returns the formatter for format writing to w.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want one of %v)", format, Formats)
}

// stepCounts splits a run into passed, failed and never-run steps.
func stepCounts(result *runner.RunResult) (passed, failed, skipped int) {
	for _, s := range result.Steps {
		if s.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed, len(result.Pending)
}

// failureDetail is the multi-line explanation of a failure.
func failureDetail(f *runner.Failure) string {
	switch f.Kind {
	case runner.FailureUnexpectedStatus:
		return fmt.Sprintf("expected status %d, got %d", f.ExpectedStatus, f.ActualStatus)
	case runner.FailureShapeViolation:
		if len(f.Violations) == 0 {
			return f.Reason
		}
		s := f.Reason
		for _, v := range f.Violations {
			s += "\n" + v.String()
		}
		return s
	}
	return f.Reason
}
