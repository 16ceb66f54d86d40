package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"gopkg.in/yaml.v3"
)

// TAPFormatter writes one TAP test point per step. Steps after a failure
// are reported as skipped.
type TAPFormatter struct {
	writer io.Writer
	points []tapPoint
}

type tapPoint struct {
	name       string
	passed     bool
	skipReason string
	diag       *tapDiagnostic
}

// tapDiagnostic is the YAML block following a failing point.
type tapDiagnostic struct {
	Kind       string   `yaml:"kind"`
	Message    string   `yaml:"message"`
	Expected   int      `yaml:"expected,omitempty"`
	Actual     int      `yaml:"actual,omitempty"`
	Violations []string `yaml:"violations,omitempty"`
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	prefix := ""
	if result.Name != "" {
		prefix = result.Name + ": "
	}

	for _, r := range result.Steps {
		p := tapPoint{name: prefix + r.Name, passed: r.Passed()}
		if fail := r.Failure; fail != nil {
			p.diag = &tapDiagnostic{
				Kind:     string(fail.Kind),
				Message:  fail.Reason,
				Expected: fail.ExpectedStatus,
				Actual:   fail.ActualStatus,
			}
			for _, v := range fail.Violations {
				p.diag.Violations = append(p.diag.Violations, v.String())
			}
		}
		f.points = append(f.points, p)
	}

	for _, name := range result.Pending {
		failed := "earlier step failed"
		if result.Failure != nil {
			failed = result.Failure.Step + " failed"
		}
		f.points = append(f.points, tapPoint{name: prefix + name, passed: true, skipReason: failed})
	}
}

func (f *TAPFormatter) FormatError(err error) {
	fmt.Fprintf(f.writer, "Bail out! %s\n", strings.ReplaceAll(err.Error(), "\n", " "))
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written in Flush
}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", len(f.points))

	for i, p := range f.points {
		n := i + 1
		switch {
		case p.skipReason != "":
			fmt.Fprintf(f.writer, "ok %d - %s # SKIP %s\n", n, p.name, p.skipReason)
		case p.passed:
			fmt.Fprintf(f.writer, "ok %d - %s\n", n, p.name)
		default:
			fmt.Fprintf(f.writer, "not ok %d - %s\n", n, p.name)
			if p.diag != nil {
				if err := f.writeDiagnostic(p.diag); err != nil {
					return err
				}
			}
		}
	}

	fmt.Fprintf(f.writer, "# time %dms\n", totalDuration.Milliseconds())
	return nil
}

func (f *TAPFormatter) writeDiagnostic(d *tapDiagnostic) error {
	out, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding TAP diagnostic: %w", err)
	}
	fmt.Fprintf(f.writer, "  ---\n")
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		fmt.Fprintf(f.writer, "  %s\n", line)
	}
	fmt.Fprintf(f.writer, "  ...\n")
	return nil
}
