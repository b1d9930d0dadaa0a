package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/gqltester/packages/compare"
	"github.com/abdul-hamid-achik/gqltester/packages/core/runner"
)

// Verbosity levels
const (
	// VerbosityQuiet prints one line per fixture and the summary
	VerbosityQuiet = 0
	// VerbosityDiff adds the diff of failing fixtures that got a 200
	VerbosityDiff = 1
	// VerbosityAll also prints the body of non-200 responses
	VerbosityAll = 2
)

const suiteRule = "================================"

type ConsoleFormatter struct {
	writer    io.Writer
	verbosity int
	noColor   bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbosity(v int) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbosity = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// paint returns a printer for attrs, uncolored when built WithNoColor.
func (f *ConsoleFormatter) paint(attrs ...color.Attribute) func(a ...interface{}) string {
	c := color.New(attrs...)
	if f.noColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

func (f *ConsoleFormatter) SuiteStarted(suite string, fixtures int) {
	bold := f.paint(color.Bold)
	fmt.Fprintf(f.writer, "\n%s\n%s\n", bold("Running "+suite+" test suite"), suiteRule)
}

func (f *ConsoleFormatter) OutcomeReady(o *runner.Outcome) {
	green := f.paint(color.FgGreen)
	red := f.paint(color.FgRed)
	yellow := f.paint(color.FgYellow)
	cyan := f.paint(color.FgCyan)

	switch o.Status {
	case runner.StatusPassed:
		fmt.Fprintf(f.writer, "  %s %s %s\n", green("✓"), o.Name, cyan(fmt.Sprintf("(%dms)", o.Duration.Milliseconds())))

	case runner.StatusFailed:
		removed, added := compare.Changed(o.Diff)
		fmt.Fprintf(f.writer, "  %s %s %s %s\n", red("✗"), red(fmt.Sprintf("(%d)", o.HTTPStatus)), o.Name,
			cyan(fmt.Sprintf("(-%d +%d lines)", removed, added)))
		if f.verbosity >= VerbosityDiff {
			f.writeDiff(o.Diff)
		}
		if o.Replaced {
			fmt.Fprintf(f.writer, "    %s expectation replaced in %s\n", cyan("→"), o.Ref)
		}
		if o.ReplaceErr != nil {
			fmt.Fprintf(f.writer, "    %s could not replace expectation: %v\n", red("→"), o.ReplaceErr)
		}

	case runner.StatusServerError:
		fmt.Fprintf(f.writer, "  %s server is having issues with %s. Tried %d times. Returned with %d.\n",
			red("✗"), o.Ref, o.Attempts, o.HTTPStatus)
		if o.Err != nil {
			fmt.Fprintf(f.writer, "    %s\n", red(o.Err.Error()))
		}
		if f.verbosity >= VerbosityAll && o.Actual != "" {
			fmt.Fprintf(f.writer, "    and response: %s\n", o.Actual)
		}

	case runner.StatusFixtureError:
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), o.Name, red(fmt.Sprintf("(%v)", o.Err)))
	}

	if o.Retried() {
		fmt.Fprintf(f.writer, "  %s it took %d attempts to get a 200 response code for %s\n",
			yellow("⚠"), o.Attempts, o.Name)
	}
}

func (f *ConsoleFormatter) writeDiff(diff string) {
	red := f.paint(color.FgRed)
	green := f.paint(color.FgGreen)

	for _, line := range compare.SplitLines(diff) {
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "- "):
			line = red(line)
		case strings.HasPrefix(line, "+ "):
			line = green(line)
		}
		fmt.Fprintf(f.writer, "    %s\n", line)
	}
}

func (f *ConsoleFormatter) FormatSummary(report *runner.Report) {
	red := f.paint(color.FgRed)
	yellow := f.paint(color.FgYellow)

	fmt.Fprintf(f.writer, "\n")
	if report.Interrupted {
		fmt.Fprintf(f.writer, "%s\n", yellow("Interrupted, results below cover the fixtures that finished"))
	}
	if report.TimedOut {
		fmt.Fprintf(f.writer, "%s\n", red("Suite timed out"))
	}

	fmt.Fprintf(f.writer, "Total tests run: %d. Failed tests: %d\n", report.Total(), report.Failed())

	if f.verbosity >= VerbosityDiff && report.Total() > 0 {
		l := report.Latency()
		if l.Count > 0 {
			fmt.Fprintf(f.writer, "Latency: min %s, p50 %s, p95 %s, p99 %s, max %s\n",
				l.Min, l.P50, l.P95, l.P99, l.Max)
		}
		if n := report.Replaced(); n > 0 {
			fmt.Fprintf(f.writer, "Replaced expectations: %d\n", n)
		}
		fmt.Fprintf(f.writer, "Time:  %dms\n", report.Duration.Milliseconds())
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := f.paint(color.FgRed)
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := f.paint(color.Bold)
	fmt.Fprintf(f.writer, "%s %s\n", bold("gqltester"), version)
}
