package stress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"golang.org/x/time/rate"
)

// Report is the outcome of a repeated run.
type Report struct {
	Iterations int
	Passed     int
	Failed     int
	// Interrupted is set when the context ended before all iterations ran.
	Interrupted bool
	Duration    time.Duration

	Steps     map[string]*StepStats
	StepOrder []string
	Latency   LatencyStats

	// Failures counts failed runs by kind.
	Failures     map[runner.FailureKind]int
	FirstFailure *runner.Failure
	Thresholds   []ThresholdResult
}

// FailureRate is the share of executed runs that failed.
func (r *Report) FailureRate() float64 {
	if r.Iterations == 0 {
		return 0
	}
	return float64(r.Failed) / float64(r.Iterations)
}

// OK reports whether every run passed and every threshold held.
func (r *Report) OK() bool {
	if r.Failed > 0 && !r.hasFailureThreshold() {
		return false
	}
	for _, t := range r.Thresholds {
		if !t.Passed {
			return false
		}
	}
	return true
}

func (r *Report) hasFailureThreshold() bool {
	for _, t := range r.Thresholds {
		if t.Name == "failure rate" {
			return true
		}
	}
	return false
}

// Stress repeats a step chain through a runner.
type Stress struct {
	config  *Config
	runner  *runner.Runner
	build   func() []*runner.Step
	limiter *rate.Limiter
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Stress
type Option func(*Stress)

// WithLogger sets the progress logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stress) {
		s.logger = logger
	}
}

// New prepares a repeated run. build is called once per iteration so every
// run gets fresh identities.
func New(cfg *Config, r *runner.Runner, build func() []*runner.Step, opts ...Option) (*Stress, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stress config: %w", err)
	}
	if r == nil || build == nil {
		return nil, errors.New("stress needs a runner and a step builder")
	}

	s := &Stress{
		config:  cfg,
		runner:  r,
		build:   build,
		metrics: NewMetrics(),
		logger:  slog.Default(),
	}
	if cfg.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes the chain Iterations times. It returns an error only when
// the chain is invalid; failed runs are counted in the report.
func (s *Stress) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Failures: make(map[runner.FailureKind]int),
	}
	start := time.Now()

	for i := 0; i < s.config.Iterations; i++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				report.Interrupted = true
				break
			}
		}
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		result, err := s.runner.Run(ctx, s.build())
		if err != nil {
			return nil, err
		}

		report.Iterations++
		for _, step := range result.Steps {
			if step.Failure != nil && step.Failure.Kind == runner.FailureCanceled {
				continue
			}
			s.metrics.Record(step.Name, step.Duration, !step.Passed())
		}

		if result.Passed() {
			report.Passed++
			continue
		}

		report.Failed++
		report.Failures[result.Failure.Kind]++
		if report.FirstFailure == nil {
			report.FirstFailure = result.Failure
		}
		s.logger.Warn("iteration failed",
			"iteration", i+1,
			"step", result.Failure.Step,
			"kind", result.Failure.Kind)

		if result.Failure.Kind == runner.FailureCanceled {
			report.Interrupted = true
			break
		}
		if s.config.StopOnFailure {
			break
		}
	}

	report.Duration = time.Since(start)
	report.Steps = make(map[string]*StepStats)
	for _, st := range s.metrics.Steps() {
		report.Steps[st.Name] = st
		report.StepOrder = append(report.StepOrder, st.Name)
	}
	report.Latency = s.metrics.Overall()
	report.Thresholds = EvaluateThresholds(s.config.Thresholds, report)

	s.logger.Info("stress finished",
		"iterations", report.Iterations,
		"passed", report.Passed,
		"failed", report.Failed,
		"duration", report.Duration)
	return report, nil
}
