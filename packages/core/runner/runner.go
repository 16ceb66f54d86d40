package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/capture"
	"github.com/abdul-hamid-achik/bookcheck/packages/core/env"
	"github.com/abdul-hamid-achik/bookcheck/packages/http"
	"github.com/abdul-hamid-achik/bookcheck/packages/shape"
)

type Runner struct {
	config   *Config
	logger   *slog.Logger
	reporter Reporter
}

type Config struct {
	// Name labels the run in results and logs.
	Name string
	// Timeout bounds each step's call. Zero leaves it to the HTTP client.
	Timeout time.Duration
	// Seed pre-populates the context before the first step.
	Seed     map[string]any
	Logger   *slog.Logger
	Reporter Reporter
}

func New(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = discardReporter{}
	}

	return &Runner{
		config:   cfg,
		logger:   logger,
		reporter: reporter,
	}
}

func (r *Runner) seedKeys() []string {
	keys := make([]string, 0, len(r.config.Seed))
	for k := range r.config.Seed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Run executes steps in order and stops at the first failure. The returned
// error is non-nil only when the chain itself is invalid; every runtime
// failure is reported through RunResult.Failure.
func (r *Runner) Run(ctx context.Context, steps []*Step) (*RunResult, error) {
	if err := Validate(steps, r.seedKeys()...); err != nil {
		return nil, err
	}

	vars := env.NewContext()
	if err := vars.Merge(r.config.Seed); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &RunResult{Name: r.config.Name}
	logger := r.logger.With("run", r.config.Name)

	for i, step := range steps {
		var sr *StepResult
		if err := ctx.Err(); err != nil {
			sr = &StepResult{Name: step.Name, Failure: &Failure{
				Kind:           FailureCanceled,
				Step:           step.Name,
				Reason:         err.Error(),
				ExpectedStatus: step.ExpectedStatus,
				Err:            err,
			}}
		} else {
			logger.Debug("step started", "step", step.Name)
			sr = r.runStep(ctx, step, vars)
		}
		result.Steps = append(result.Steps, sr)

		if sr.Failure != nil {
			logger.Warn("step failed",
				"step", step.Name,
				"kind", sr.Failure.Kind,
				"reason", sr.Failure.Reason,
				"status", sr.StatusCode,
				"duration", sr.Duration,
			)
			result.Failure = sr.Failure
			for _, rest := range steps[i+1:] {
				result.Pending = append(result.Pending, rest.Name)
			}
			break
		}

		logger.Debug("step passed", "step", step.Name, "status", sr.StatusCode, "duration", sr.Duration)
		result.CompletedSteps = append(result.CompletedSteps, step.Name)
	}

	result.Vars = vars.Snapshot()
	result.Duration = time.Since(start)
	logger.Info("run finished",
		"passed", result.Passed(),
		"completed", len(result.CompletedSteps),
		"steps", len(steps),
		"duration", result.Duration,
	)
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, step *Step, vars *env.Context) *StepResult {
	sr := &StepResult{Name: step.Name}
	fail := func(kind FailureKind, reason string, err error) *StepResult {
		sr.Failure = &Failure{
			Kind:           kind,
			Step:           step.Name,
			Reason:         reason,
			ActualStatus:   sr.StatusCode,
			ExpectedStatus: step.ExpectedStatus,
			Err:            err,
		}
		return sr
	}

	stepCtx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := step.Action(stepCtx, vars)
	sr.Duration = time.Since(start)

	if err != nil {
		switch {
		case ctx.Err() != nil && errors.Is(err, ctx.Err()):
			return fail(FailureCanceled, err.Error(), err)
		case http.IsTransportError(err):
			return fail(FailureTransport, err.Error(), err)
		case errors.Is(err, env.ErrKeyMissing):
			return fail(FailureContextMissing, err.Error(), err)
		default:
			return fail(FailureRequest, err.Error(), err)
		}
	}
	if resp == nil {
		return fail(FailureRequest, "action returned no response", nil)
	}

	sr.Response = resp
	sr.StatusCode = resp.StatusCode
	sr.Duration = resp.Duration
	r.attach(sr, r.responseAttachment(step.Name, resp))

	if resp.StatusCode != step.ExpectedStatus {
		return fail(FailureUnexpectedStatus,
			fmt.Sprintf("expected status %d, got %d", step.ExpectedStatus, resp.StatusCode), nil)
	}

	if violations := shape.Validate(resp.Body, step.Shape); len(violations) > 0 {
		f := fail(FailureShapeViolation, fmt.Sprintf("response does not match %s shape", step.Shape.Name), nil)
		f.Failure.Violations = violations
		return f
	}

	if step.Check != nil {
		if err := step.Check(resp, vars); err != nil {
			return fail(FailureAssertion, err.Error(), err)
		}
	}

	if step.Attachments != nil {
		for _, a := range step.Attachments(resp) {
			r.attach(sr, a)
		}
	}

	captured, err := capture.ExtractAll(resp, step.Captures)
	if err != nil {
		var me *capture.MissingError
		if errors.As(err, &me) {
			f := fail(FailureShapeViolation, err.Error(), err)
			f.Failure.Violations = []shape.Violation{{Field: me.Path, Reason: "missing captured field"}}
			return f
		}
		return fail(FailureShapeViolation, err.Error(), err)
	}

	if step.Extract != nil {
		extracted, err := step.Extract(resp, vars)
		if err != nil {
			return fail(FailureAssertion, err.Error(), err)
		}
		declared := make(map[string]bool, len(step.Writes))
		for _, k := range step.Writes {
			declared[k] = true
		}
		for k, v := range extracted {
			if !declared[k] {
				return fail(FailureContextConflict, fmt.Sprintf("undeclared context key %q", k), nil)
			}
			captured[k] = v
		}
	}

	if err := vars.Merge(captured); err != nil {
		return fail(FailureContextConflict, err.Error(), err)
	}
	sr.Captured = captured

	return sr
}

func (r *Runner) responseAttachment(step string, resp *http.Response) Attachment {
	contentType := ContentTypeText
	if resp.IsJSON() {
		contentType = ContentTypeJSON
	}
	return Attachment{
		Name:        step + " response",
		Content:     resp.PrettyBody(),
		ContentType: contentType,
	}
}

func (r *Runner) attach(sr *StepResult, a Attachment) {
	sr.Attachments = append(sr.Attachments, a)
	r.reporter.Attach(a)
}
