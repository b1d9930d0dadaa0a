package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/gqltester/packages/compare"
	"github.com/abdul-hamid-achik/gqltester/packages/core/runner"
)

// TAPFormatter streams results in TAP (Test Anything Protocol) format.
// The plan is written last, once the number of tests is known.
type TAPFormatter struct {
	writer    io.Writer
	testCount int
	started   bool
}

// tapDiagnostic is the YAML block attached to a failing test line
type tapDiagnostic struct {
	Message    string `yaml:"message,omitempty"`
	Severity   string `yaml:"severity"`
	Status     string `yaml:"status"`
	HTTPStatus int    `yaml:"http_status,omitempty"`
	Attempts   int    `yaml:"attempts,omitempty"`
	Removed    int    `yaml:"removed_lines,omitempty"`
	Added      int    `yaml:"added_lines,omitempty"`
	Diff       string `yaml:"diff,omitempty"`
	Response   string `yaml:"response,omitempty"`
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

func (f *TAPFormatter) begin() {
	if !f.started {
		fmt.Fprintf(f.writer, "TAP version 13\n")
		f.started = true
	}
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written with the first result
}

func (f *TAPFormatter) SuiteStarted(suite string, fixtures int) {
	f.begin()
	fmt.Fprintf(f.writer, "# %s (%d)\n", suite, fixtures)
}

func (f *TAPFormatter) OutcomeReady(o *runner.Outcome) {
	f.begin()
	f.testCount++

	name := o.Ref.String()
	if o.Passed() {
		fmt.Fprintf(f.writer, "ok %d - %s\n", f.testCount, name)
		return
	}

	fmt.Fprintf(f.writer, "not ok %d - %s\n", f.testCount, name)

	diag := tapDiagnostic{
		Severity:   "fail",
		Status:     o.Status.String(),
		HTTPStatus: o.HTTPStatus,
		Attempts:   o.Attempts,
		Diff:       o.Diff,
	}
	if o.Err != nil {
		diag.Message = o.Err.Error()
	}
	switch o.Status {
	case runner.StatusFailed:
		diag.Removed, diag.Added = compare.Changed(o.Diff)
	case runner.StatusServerError:
		diag.Response = o.Actual
	case runner.StatusFixtureError:
		diag.Severity = "error"
	}
	f.writeDiagnostic(diag)
}

func (f *TAPFormatter) writeDiagnostic(diag tapDiagnostic) {
	data, err := yaml.Marshal(diag)
	if err != nil {
		return
	}

	fmt.Fprintf(f.writer, "  ---\n")
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fmt.Fprintf(f.writer, "  %s\n", line)
	}
	fmt.Fprintf(f.writer, "  ...\n")
}

func (f *TAPFormatter) FormatSummary(report *runner.Report) {
	f.begin()
	if report.Interrupted {
		fmt.Fprintf(f.writer, "Bail out! Interrupted\n")
	} else if report.TimedOut {
		fmt.Fprintf(f.writer, "Bail out! Suite timed out\n")
	}
	fmt.Fprintf(f.writer, "1..%d\n", f.testCount)
	fmt.Fprintf(f.writer, "# Total tests run: %d. Failed tests: %d\n", report.Total(), report.Failed())
}

func (f *TAPFormatter) FormatError(err error) {
	f.begin()
	fmt.Fprintf(f.writer, "Bail out! %v\n", err)
}
