package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/bookcheck/packages/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passedRun() *runner.RunResult {
	return &runner.RunResult{
		Name:           "order lifecycle",
		CompletedSteps: []string{"Register", "CreateOrder"},
		Steps: []*runner.StepResult{
			{Name: "Register", StatusCode: 201, Duration: 12 * time.Millisecond, Captured: map[string]any{"access_token": "tok"}},
			{Name: "CreateOrder", StatusCode: 201, Duration: 8 * time.Millisecond},
		},
		Duration: 20 * time.Millisecond,
	}
}

func failedRun() *runner.RunResult {
	fail := &runner.Failure{
		Kind:           runner.FailureUnexpectedStatus,
		Step:           "CreateOrder",
		Reason:         "expected status 201, got 500",
		ExpectedStatus: 201,
		ActualStatus:   500,
	}
	return &runner.RunResult{
		Name:           "order lifecycle",
		CompletedSteps: []string{"Register"},
		Pending:        []string{"GetOrder", "DeleteOrder"},
		Steps: []*runner.StepResult{
			{Name: "Register", StatusCode: 201, Duration: 12 * time.Millisecond},
			{Name: "CreateOrder", StatusCode: 500, Duration: 3 * time.Millisecond, Failure: fail},
		},
		Failure:  fail,
		Duration: 15 * time.Millisecond,
	}
}

func shapeRun() *runner.RunResult {
	fail := &runner.Failure{
		Kind:           runner.FailureShapeViolation,
		Step:           "GetOrder",
		Reason:         "response does not match order shape",
		ExpectedStatus: 200,
		ActualStatus:   200,
		Violations:     []shape.Violation{{Field: "customerName", Reason: "missing required field"}},
	}
	return &runner.RunResult{
		Name:    "order lifecycle",
		Steps:   []*runner.StepResult{{Name: "GetOrder", StatusCode: 200, Failure: fail}},
		Failure: fail,
	}
}

func TestConsoleFormatter_Passed(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatResult(passedRun())

	out := buf.String()
	assert.Contains(t, out, "Running: order lifecycle")
	assert.Contains(t, out, "✓ Register (12ms)")
	assert.Contains(t, out, "✓ CreateOrder (8ms)")
	assert.Contains(t, out, "2 passed, 2 total")
	assert.NotContains(t, out, "access_token")
}

func TestConsoleFormatter_Failed(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatResult(failedRun())

	out := buf.String()
	assert.Contains(t, out, "✗ CreateOrder")
	assert.Contains(t, out, "unexpected_status")
	assert.Contains(t, out, "Expected: 201")
	assert.Contains(t, out, "Actual:   500")
	assert.Contains(t, out, "- GetOrder (not run)")
	assert.Contains(t, out, "1 passed, 1 failed, 2 not run, 4 total")
}

func TestConsoleFormatter_ShapeViolation(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleFormatter(WithWriter(&buf), WithNoColor(true)).FormatResult(shapeRun())

	assert.Contains(t, buf.String(), "customerName: missing required field")
}

func TestConsoleFormatter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	run := passedRun()
	run.Steps[0].Attachments = []runner.Attachment{{
		Name:        "Register response",
		Content:     []byte("{\n  \"accessToken\": \"tok\"\n}"),
		ContentType: runner.ContentTypeJSON,
	}}
	f.FormatResult(run)

	out := buf.String()
	assert.Contains(t, out, "Status: 201")
	assert.Contains(t, out, "access_token = tok")
	assert.Contains(t, out, "Register response (application/json):")
	assert.Contains(t, out, `"accessToken": "tok"`)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(passedRun())
	f.FormatResult(failedRun())
	require.NoError(t, f.Flush(35*time.Millisecond))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, JSONSummary{Total: 2, Passed: 1, Failed: 1}, out.Summary)
	assert.Equal(t, float64(35), out.Duration)

	failed := out.Runs[1]
	assert.False(t, failed.Passed)
	require.Len(t, failed.Steps, 4)
	assert.True(t, failed.Steps[2].Skipped)
	require.NotNil(t, failed.Failure)
	assert.Equal(t, "CreateOrder", failed.Failure.Step)
	assert.Equal(t, "unexpected_status", failed.Failure.Kind)
	assert.Equal(t, 201, failed.Failure.ExpectedStatus)
	assert.Equal(t, 500, failed.Failure.ActualStatus)
}

func TestJSONFormatter_Violations(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(shapeRun())
	require.NoError(t, f.Flush(0))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.NotNil(t, out.Runs[0].Failure)
	assert.Equal(t, []JSONViolation{{Field: "customerName", Reason: "missing required field"}}, out.Runs[0].Failure.Violations)
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	f.FormatResult(failedRun())
	require.NoError(t, f.Flush(15*time.Millisecond))

	assert.Contains(t, buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`)

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	assert.Equal(t, 4, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 2, suites.Skipped)
	require.Len(t, suites.TestSuites, 1)

	cases := suites.TestSuites[0].TestCases
	require.Len(t, cases, 4)
	assert.Nil(t, cases[0].Failure)
	require.NotNil(t, cases[1].Failure)
	assert.Equal(t, "unexpected_status", cases[1].Failure.Type)
	require.NotNil(t, cases[2].Skipped)
	assert.Contains(t, cases[2].Skipped.Message, "CreateOrder failed")
}

func TestJUnitFormatter_TransportIsError(t *testing.T) {
	fail := &runner.Failure{Kind: runner.FailureTransport, Step: "Register", Reason: "connection refused"}
	run := &runner.RunResult{
		Name:    "order lifecycle",
		Steps:   []*runner.StepResult{{Name: "Register", Failure: fail}},
		Failure: fail,
	}

	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatResult(run)
	require.NoError(t, f.Flush(0))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	assert.Equal(t, 1, suites.Errors)
	assert.Equal(t, 0, suites.Failures)
	require.NotNil(t, suites.TestSuites[0].TestCases[0].Error)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	f.FormatResult(failedRun())
	require.NoError(t, f.Flush(15*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "TAP version 13\n1..4\n")
	assert.Contains(t, out, "ok 1 - order lifecycle: Register\n")
	assert.Contains(t, out, "not ok 2 - order lifecycle: CreateOrder\n")
	assert.Contains(t, out, "  kind: unexpected_status\n")
	assert.Contains(t, out, "  expected: 201\n")
	assert.Contains(t, out, "ok 3 - order lifecycle: GetOrder # SKIP CreateOrder failed\n")
}

func TestTAPFormatter_BailOut(t *testing.T) {
	var buf bytes.Buffer
	NewTAPFormatter(TAPWithWriter(&buf)).FormatError(errors.New("bad\nconfig"))

	assert.Equal(t, "Bail out! bad config\n", buf.String())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	for _, format := range Formats {
		f, err := New(format, &buf, false, true)
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	f, err := New("", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	_, err = New("html", &buf, false, true)
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "[array with 2 items]", formatValue([]any{1, 2}, 10))
	assert.Equal(t, "{object with 1 keys}", formatValue(map[string]any{"a": 1}, 10))
	assert.Equal(t, "abcde...", formatValue("abcdefgh", 5))
}
