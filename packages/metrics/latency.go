// Package metrics summarizes how long fixtures took to run.
package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// histogram range in microseconds: 1us to 10 minutes
	minLatencyUs = 1
	maxLatencyUs = 600_000_000
	sigFigs      = 3
)

// Summary holds latency percentiles of a set of durations.
type Summary struct {
	Count int64
	Min   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// Summarize builds a Summary from durations. It is computed on demand so
// callers never keep a second copy of their data.
func Summarize(durations []time.Duration) Summary {
	if len(durations) == 0 {
		return Summary{}
	}

	h := hdrhistogram.New(minLatencyUs, maxLatencyUs, sigFigs)
	for _, d := range durations {
		us := d.Microseconds()
		if us < minLatencyUs {
			us = minLatencyUs
		}
		if us > maxLatencyUs {
			us = maxLatencyUs
		}
		_ = h.RecordValue(us)
	}

	return Summary{
		Count: h.TotalCount(),
		Min:   usToDuration(h.Min()),
		Mean:  time.Duration(h.Mean() * float64(time.Microsecond)),
		P50:   usToDuration(h.ValueAtQuantile(50)),
		P95:   usToDuration(h.ValueAtQuantile(95)),
		P99:   usToDuration(h.ValueAtQuantile(99)),
		Max:   usToDuration(h.Max()),
	}
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
