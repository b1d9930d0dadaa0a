package runner

import (
	"time"

	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
)

type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusServerError
	StatusFixtureError
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusServerError:
		return "server error"
	case StatusFixtureError:
		return "fixture error"
	default:
		return "unknown"
	}
}

// Outcome is the result of running one fixture.
type Outcome struct {
	Ref    fixture.Ref
	Name   string
	Status Status

	// Expected and Actual are canonical texts. Actual is also set for
	// server errors so the response can be shown.
	Expected string
	Actual   string
	Diff     string

	// HTTPStatus is the last status seen; 0 means no response arrived.
	HTTPStatus int
	Attempts   int
	Err        error

	// Replaced is set when the fixture's expectation was rewritten.
	Replaced   bool
	ReplaceErr error

	Duration time.Duration

	interrupted bool
}

func (o *Outcome) Passed() bool {
	return o.Status == StatusPassed
}

// Retried reports whether more than one attempt was needed to get a 200.
func (o *Outcome) Retried() bool {
	return o.Attempts > 1 && (o.Status == StatusPassed || o.Status == StatusFailed)
}

// Interrupted reports whether the fixture was cut short by cancellation.
// Such outcomes say nothing about the server and are not reported.
func (o *Outcome) Interrupted() bool {
	return o.interrupted
}
