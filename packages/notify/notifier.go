// Package notify posts run outcomes to chat webhooks.
package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when a run fails
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when a run passes
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first pass after one
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn validates a --notify-on value.
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch n := NotifyOn(s); n {
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return n, nil
	}
	return "", fmt.Errorf("unknown notify policy %q (want always, failure, success or recovery)", s)
}

// RunSummary is what a notification reports about one run.
type RunSummary struct {
	Name       string        `json:"name"`
	BaseURL    string        `json:"base_url,omitempty"`
	Passed     bool          `json:"passed"`
	Completed  int           `json:"completed"`
	Pending    int           `json:"pending"`
	Duration   time.Duration `json:"duration"`
	Failure    *FailedStep   `json:"failure,omitempty"`
	IsRecovery bool          `json:"is_recovery,omitempty"`
}

// FailedStep describes the step that stopped the run.
type FailedStep struct {
	Step   string `json:"step"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Summarize condenses a run result for notification.
func Summarize(result *runner.RunResult, baseURL string) *RunSummary {
	s := &RunSummary{
		Name:      result.Name,
		BaseURL:   baseURL,
		Passed:    result.Passed(),
		Completed: len(result.CompletedSteps),
		Pending:   len(result.Pending),
		Duration:  result.Duration,
	}
	if f := result.Failure; f != nil {
		s.Failure = &FailedStep{Step: f.Step, Kind: string(f.Kind), Reason: f.Reason}
	}
	return s
}

// Notifier is the interface for notification services
type Notifier interface {
	Notify(summary *RunSummary) error
	Name() string
}

// Manager applies the notify policy across runs and fans out to notifiers.
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last run passed
}

// NewManager creates a new notification manager
func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true,
	}
}

// Notify sends summary to every notifier when the policy asks for it.
func (m *Manager) Notify(summary *RunSummary) error {
	shouldNotify := false

	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = !summary.Passed
	case NotifySuccess:
		shouldNotify = summary.Passed
	case NotifyRecovery:
		if !m.lastState && summary.Passed {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if !summary.Passed {
			shouldNotify = true
		}
	}

	m.lastState = summary.Passed

	if !shouldNotify {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(summary); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
