package runner

import (
	"time"

	"github.com/samber/lo"

	"github.com/abdul-hamid-achik/gqltester/packages/metrics"
)

// Report holds every collected outcome of a run. It is written only by the
// collecting goroutine.
type Report struct {
	Outcomes    []*Outcome
	Interrupted bool
	TimedOut    bool
	Duration    time.Duration
}

func (r *Report) add(o *Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Report) Total() int {
	return len(r.Outcomes)
}

func (r *Report) Passed() int {
	return r.Count(StatusPassed)
}

// Failed counts every outcome that did not pass.
func (r *Report) Failed() int {
	return r.Total() - r.Passed()
}

func (r *Report) Count(status Status) int {
	return lo.CountBy(r.Outcomes, func(o *Outcome) bool {
		return o.Status == status
	})
}

func (r *Report) Replaced() int {
	return lo.CountBy(r.Outcomes, func(o *Outcome) bool {
		return o.Replaced
	})
}

// OK is true when the run finished and every outcome passed.
func (r *Report) OK() bool {
	return !r.Interrupted && !r.TimedOut && r.Failed() == 0
}

// Latency summarizes the durations of outcomes that reached the server.
func (r *Report) Latency() metrics.Summary {
	durations := lo.FilterMap(r.Outcomes, func(o *Outcome, _ int) (time.Duration, bool) {
		return o.Duration, o.Attempts > 0
	})
	return metrics.Summarize(durations)
}
