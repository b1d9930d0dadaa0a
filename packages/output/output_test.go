package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
	"github.com/abdul-hamid-achik/gqltester/packages/core/runner"
)

var pingRef = fixture.Ref{Suite: "ping", File: "ping_pong.test"}

func failedOutcome() *runner.Outcome {
	return &runner.Outcome{
		Ref:        pingRef,
		Name:       "Ping Pong",
		Status:     runner.StatusFailed,
		HTTPStatus: 200,
		Attempts:   1,
		Diff:       "  {\n-     \"ping\": \"pung\"\n+     \"ping\": \"pong\"\n  }\n",
	}
}

func serverErrorOutcome() *runner.Outcome {
	return &runner.Outcome{
		Ref:        pingRef,
		Name:       "Ping Pong",
		Status:     runner.StatusServerError,
		HTTPStatus: 503,
		Attempts:   4,
		Actual:     "upstream unavailable",
	}
}

func console(verbosity int) (*ConsoleFormatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewConsoleFormatter(WithWriter(&buf), WithVerbosity(verbosity), WithNoColor(true)), &buf
}

func TestConsoleFormatter_Passed(t *testing.T) {
	f, buf := console(VerbosityQuiet)
	f.SuiteStarted("ping", 1)
	f.OutcomeReady(&runner.Outcome{Ref: pingRef, Name: "Ping Pong", Status: runner.StatusPassed, Attempts: 1, Duration: 12 * time.Millisecond})

	out := buf.String()
	assert.Contains(t, out, "Running ping test suite")
	assert.Contains(t, out, suiteRule)
	assert.Contains(t, out, "✓ Ping Pong (12ms)")
	assert.NotContains(t, out, "attempts")
}

func TestConsoleFormatter_DiffVerbosity(t *testing.T) {
	t.Run("quiet hides the diff", func(t *testing.T) {
		f, buf := console(VerbosityQuiet)
		f.OutcomeReady(failedOutcome())
		assert.Contains(t, buf.String(), "✗ (200) Ping Pong (-1 +1 lines)")
		assert.NotContains(t, buf.String(), "pung")
	})

	t.Run("level one shows the diff", func(t *testing.T) {
		f, buf := console(VerbosityDiff)
		f.OutcomeReady(failedOutcome())
		assert.Contains(t, buf.String(), `-     "ping": "pung"`)
		assert.Contains(t, buf.String(), `+     "ping": "pong"`)
	})
}

func TestConsoleFormatter_ServerError(t *testing.T) {
	t.Run("level one hides the response", func(t *testing.T) {
		f, buf := console(VerbosityDiff)
		f.OutcomeReady(serverErrorOutcome())
		assert.Contains(t, buf.String(), "server is having issues with ping/ping_pong.test. Tried 4 times. Returned with 503.")
		assert.NotContains(t, buf.String(), "upstream unavailable")
		assert.NotContains(t, buf.String(), "it took", "server errors carry their attempt count already")
	})

	t.Run("level two shows the response", func(t *testing.T) {
		f, buf := console(VerbosityAll)
		f.OutcomeReady(serverErrorOutcome())
		assert.Contains(t, buf.String(), "and response: upstream unavailable")
	})
}

func TestConsoleFormatter_FixtureError(t *testing.T) {
	f, buf := console(VerbosityQuiet)
	f.OutcomeReady(&runner.Outcome{
		Ref:    pingRef,
		Name:   "Ping Pong",
		Status: runner.StatusFixtureError,
		Err:    fixture.ErrMalformed,
	})
	assert.Contains(t, buf.String(), "x Ping Pong (")
	assert.Contains(t, buf.String(), fixture.ErrMalformed.Error())
}

func TestConsoleFormatter_RetryWarning(t *testing.T) {
	f, buf := console(VerbosityQuiet)
	f.OutcomeReady(&runner.Outcome{Ref: pingRef, Name: "Ping Pong", Status: runner.StatusPassed, Attempts: 3})
	assert.Contains(t, buf.String(), "it took 3 attempts to get a 200 response code for Ping Pong")
}

func TestConsoleFormatter_Replaced(t *testing.T) {
	f, buf := console(VerbosityQuiet)
	o := failedOutcome()
	o.Replaced = true
	f.OutcomeReady(o)
	assert.Contains(t, buf.String(), "expectation replaced in ping/ping_pong.test")
}

func TestConsoleFormatter_Summary(t *testing.T) {
	report := &runner.Report{Outcomes: []*runner.Outcome{
		{Status: runner.StatusPassed, Attempts: 1, Duration: 5 * time.Millisecond},
		failedOutcome(),
		serverErrorOutcome(),
	}}

	f, buf := console(VerbosityQuiet)
	f.FormatSummary(report)
	assert.Contains(t, buf.String(), "Total tests run: 3. Failed tests: 2")
	assert.NotContains(t, buf.String(), "Latency")

	f, buf = console(VerbosityDiff)
	f.FormatSummary(report)
	assert.Contains(t, buf.String(), "Latency: min")

	report.Interrupted = true
	f, buf = console(VerbosityQuiet)
	f.FormatSummary(report)
	assert.Contains(t, buf.String(), "Interrupted")
}

func TestConsoleFormatter_NoColorIsPerFormatter(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	plain, plainBuf := console(VerbosityQuiet)
	plain.OutcomeReady(failedOutcome())
	assert.False(t, color.NoColor)
	assert.NotContains(t, plainBuf.String(), "\x1b[")

	var colored bytes.Buffer
	NewConsoleFormatter(WithWriter(&colored)).OutcomeReady(failedOutcome())
	assert.Contains(t, colored.String(), "\x1b[")
}

func TestConsoleFormatter_HeaderAndError(t *testing.T) {
	f, buf := console(VerbosityQuiet)
	f.FormatHeader("1.2.3")
	f.FormatError(errors.New("suite not found"))
	assert.Contains(t, buf.String(), "gqltester 1.2.3")
	assert.Contains(t, buf.String(), "Error: suite not found")
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	f.FormatHeader("dev")
	f.SuiteStarted("ping", 3)
	f.OutcomeReady(&runner.Outcome{Ref: fixture.Ref{Suite: "ping", File: "a.test"}, Status: runner.StatusPassed})
	f.OutcomeReady(failedOutcome())
	f.OutcomeReady(serverErrorOutcome())

	report := &runner.Report{Outcomes: []*runner.Outcome{{Status: runner.StatusPassed}, failedOutcome(), serverErrorOutcome()}}
	f.FormatSummary(report)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "TAP version 13", lines[0])
	assert.Equal(t, "# ping (3)", lines[1])
	assert.Equal(t, "ok 1 - ping/a.test", lines[2])
	assert.Equal(t, "not ok 2 - ping/ping_pong.test", lines[3])
	assert.Equal(t, "  ---", lines[4])

	out := buf.String()
	assert.Contains(t, out, "  status: failed\n")
	assert.Contains(t, out, "  removed_lines: 1\n")
	assert.Contains(t, out, "  added_lines: 1\n")
	assert.Contains(t, out, "  diff: ")
	assert.Contains(t, out, "not ok 3 - ping/ping_pong.test")
	assert.Contains(t, out, "  http_status: 503\n")
	assert.Contains(t, out, "  attempts: 4\n")
	assert.Contains(t, out, "  response: upstream unavailable\n")
	assert.Contains(t, out, "1..3\n")
	assert.NotContains(t, out, "Bail out!")
}

func TestTAPFormatter_Interrupted(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))
	f.FormatSummary(&runner.Report{Interrupted: true})

	assert.Equal(t, "TAP version 13\nBail out! Interrupted\n1..0\n# Total tests run: 0. Failed tests: 0\n", buf.String())
}

func TestNew(t *testing.T) {
	for _, name := range Formats {
		f, err := New(name, &bytes.Buffer{}, 0, true)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := New("junit", &bytes.Buffer{}, 0, true)
	assert.Error(t, err)
}
