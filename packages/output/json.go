package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Runs     []JSONRun   `json:"runs"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary counts runs, not steps.
type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONRun is one execution of the step chain.
type JSONRun struct {
	Name     string       `json:"name"`
	Passed   bool         `json:"passed"`
	Duration float64      `json:"duration"`
	Steps    []JSONStep   `json:"steps"`
	Failure  *JSONFailure `json:"failure,omitempty"`
}

// JSONStep represents a single step result
type JSONStep struct {
	Name       string         `json:"name"`
	Passed     bool           `json:"passed"`
	Skipped    bool           `json:"skipped,omitempty"`
	StatusCode int            `json:"statusCode,omitempty"`
	Duration   float64        `json:"duration"`
	Captures   map[string]any `json:"captures,omitempty"`
}

// JSONFailure is the first failure of a run.
type JSONFailure struct {
	Step           string          `json:"step"`
	Kind           string          `json:"kind"`
	Reason         string          `json:"reason"`
	ExpectedStatus int             `json:"expectedStatus,omitempty"`
	ActualStatus   int             `json:"actualStatus,omitempty"`
	Violations     []JSONViolation `json:"violations,omitempty"`
}

type JSONViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// JSONFormatter formats run results as JSON
type JSONFormatter struct {
	writer io.Writer
	runs   []JSONRun
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		runs:   make([]JSONRun, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	run := JSONRun{
		Name:     result.Name,
		Passed:   result.Passed(),
		Duration: float64(result.Duration.Milliseconds()),
		Steps:    make([]JSONStep, 0, len(result.Steps)+len(result.Pending)),
	}

	for _, r := range result.Steps {
		step := JSONStep{
			Name:       r.Name,
			Passed:     r.Passed(),
			StatusCode: r.StatusCode,
			Duration:   float64(r.Duration.Milliseconds()),
		}
		if len(r.Captured) > 0 {
			step.Captures = r.Captured
		}
		run.Steps = append(run.Steps, step)
	}
	for _, name := range result.Pending {
		run.Steps = append(run.Steps, JSONStep{Name: name, Skipped: true})
	}

	if fail := result.Failure; fail != nil {
		run.Failure = &JSONFailure{
			Step:           fail.Step,
			Kind:           string(fail.Kind),
			Reason:         fail.Reason,
			ExpectedStatus: fail.ExpectedStatus,
			ActualStatus:   fail.ActualStatus,
		}
		for _, v := range fail.Violations {
			run.Failure.Violations = append(run.Failure.Violations, JSONViolation{Field: v.Field, Reason: v.Reason})
		}
	}

	f.runs = append(f.runs, run)
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual run results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed int
	for _, r := range f.runs {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:  len(f.runs),
			Passed: passed,
			Failed: failed,
		},
		Runs:     f.runs,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
