package runner

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/bookcheck/packages/capture"
	"github.com/abdul-hamid-achik/bookcheck/packages/core/env"
	"github.com/abdul-hamid-achik/bookcheck/packages/http"
	"github.com/abdul-hamid-achik/bookcheck/packages/shape"
)

// Action performs the single outbound call of a step.
type Action func(ctx context.Context, vars *env.Context) (*http.Response, error)

// Step is one HTTP interaction plus its expected outcome.
//
// Reads lists the context keys the step consumes and Writes the keys it adds
// beyond its Captures. Both are checked by Validate before anything runs.
type Step struct {
	Name           string
	Reads          []string
	Writes         []string
	Action         Action
	ExpectedStatus int
	Shape          *shape.Shape
	Captures       []capture.Capture

	// Extract derives extra context values once status and shape pass.
	Extract func(resp *http.Response, vars *env.Context) (map[string]any, error)
	// Check asserts domain expectations on a conforming response.
	Check func(resp *http.Response, vars *env.Context) error
	// Attachments adds step specific artifacts next to the response body.
	Attachments func(resp *http.Response) []Attachment
}

// Outputs returns every key the step writes: Writes followed by capture keys.
func (s *Step) Outputs() []string {
	out := make([]string, 0, len(s.Writes)+len(s.Captures))
	out = append(out, s.Writes...)
	out = append(out, capture.Keys(s.Captures)...)
	return out
}

// ContextMissingError is a step reading a key that no earlier step writes.
type ContextMissingError struct {
	Step string
	Key  string
}

func (e *ContextMissingError) Error() string {
	return fmt.Sprintf("step %q reads context key %q which no earlier step writes", e.Step, e.Key)
}

// ContextConflictError is a step writing a key that is already produced.
type ContextConflictError struct {
	Step  string
	Key   string
	Owner string
}

func (e *ContextConflictError) Error() string {
	return fmt.Sprintf("step %q writes context key %q already written by %q", e.Step, e.Key, e.Owner)
}

// SeedOwner names seeded keys in a ContextConflictError.
const SeedOwner = "(seed)"

// Validate checks a chain before any call is made: names are unique, every
// step has an action and an expected status, each read is produced by a
// strictly earlier step (or seeded), and no key is written twice.
func Validate(steps []*Step, seeded ...string) error {
	if len(steps) == 0 {
		return fmt.Errorf("no steps to run")
	}

	owners := make(map[string]string, len(seeded))
	for _, k := range seeded {
		owners[k] = SeedOwner
	}
	names := make(map[string]bool, len(steps))

	for i, s := range steps {
		if s == nil {
			return fmt.Errorf("step %d is nil", i)
		}
		if s.Name == "" {
			return fmt.Errorf("step %d has no name", i)
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate step name %q", s.Name)
		}
		names[s.Name] = true
		if s.Action == nil {
			return fmt.Errorf("step %q has no action", s.Name)
		}
		if s.ExpectedStatus < 100 || s.ExpectedStatus > 599 {
			return fmt.Errorf("step %q has invalid expected status %d", s.Name, s.ExpectedStatus)
		}

		for _, key := range s.Reads {
			if _, ok := owners[key]; !ok {
				return &ContextMissingError{Step: s.Name, Key: key}
			}
		}
		for _, key := range s.Outputs() {
			if owner, ok := owners[key]; ok {
				return &ContextConflictError{Step: s.Name, Key: key, Owner: owner}
			}
			owners[key] = s.Name
		}
	}

	return nil
}
