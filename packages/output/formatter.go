package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/gqltester/packages/core/runner"
)

// Formatter renders a run. It is driven from a single goroutine.
type Formatter interface {
	runner.Observer
	FormatHeader(version string)
	FormatSummary(report *runner.Report)
	FormatError(err error)
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "tap"}

// New returns the formatter registered under name.
func New(name string, w io.Writer, verbosity int, noColor bool) (Formatter, error) {
	switch name {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbosity(verbosity), WithNoColor(noColor)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}
