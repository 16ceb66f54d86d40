package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/http"
	"github.com/abdul-hamid-achik/bookcheck/packages/shape"
)

// FailureKind classifies why a run stopped.
type FailureKind string

const (
	// FailureTransport means no response was received.
	FailureTransport FailureKind = "transport"
	// FailureRequest means the request could not be built.
	FailureRequest FailureKind = "request"
	// FailureUnexpectedStatus means the status differs from the expected one.
	FailureUnexpectedStatus FailureKind = "unexpected_status"
	// FailureShapeViolation means the body is missing fields or has wrong types.
	FailureShapeViolation FailureKind = "shape_violation"
	// FailureAssertion means a domain check on a conforming body failed.
	FailureAssertion FailureKind = "assertion"
	// FailureContextMissing means a step needed a key nobody produced.
	FailureContextMissing FailureKind = "context_missing"
	// FailureContextConflict means a step tried to overwrite or sneak in a key.
	FailureContextConflict FailureKind = "context_conflict"
	// FailureCanceled means the run context ended before the step ran.
	FailureCanceled FailureKind = "canceled"
)

// Failure is the first violation of a run.
type Failure struct {
	Kind           FailureKind
	Step           string
	Reason         string
	ActualStatus   int
	ExpectedStatus int
	Violations     []shape.Violation
	Err            error
}

func (f *Failure) Error() string {
	switch f.Kind {
	case FailureUnexpectedStatus:
		return fmt.Sprintf("%s: expected status %d, got %d", f.Step, f.ExpectedStatus, f.ActualStatus)
	case FailureShapeViolation:
		parts := make([]string, len(f.Violations))
		for i, v := range f.Violations {
			parts[i] = v.String()
		}
		return fmt.Sprintf("%s: %s (%s)", f.Step, f.Reason, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s: %s: %s", f.Step, f.Kind, f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Fields returns the offending field paths of a shape violation.
func (f *Failure) Fields() []string {
	fields := make([]string, len(f.Violations))
	for i, v := range f.Violations {
		fields[i] = v.Field
	}
	return fields
}

// StepResult is what one executed step produced.
type StepResult struct {
	Name        string
	StatusCode  int
	Response    *http.Response
	Duration    time.Duration
	Captured    map[string]any
	Attachments []Attachment
	Failure     *Failure
}

func (s *StepResult) Passed() bool {
	return s.Failure == nil
}

// RunResult reports a run: either every step completed or the first failure.
type RunResult struct {
	Name           string
	CompletedSteps []string
	Pending        []string
	Steps          []*StepResult
	Failure        *Failure
	Vars           map[string]any
	Duration       time.Duration
}

func (r *RunResult) Passed() bool {
	return r.Failure == nil
}

// Step returns the result of the named step, or nil if it never ran.
func (r *RunResult) Step(name string) *StepResult {
	for _, s := range r.Steps {
		if s.Name == name {
			return s
		}
	}
	return nil
}
