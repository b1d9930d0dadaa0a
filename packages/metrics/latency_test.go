package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarize(t *testing.T) {
	var durations []time.Duration
	for i := 1; i <= 100; i++ {
		durations = append(durations, time.Duration(i)*time.Millisecond)
	}

	s := Summarize(durations)

	assert.Equal(t, int64(100), s.Count)
	assert.InDelta(t, float64(time.Millisecond), float64(s.Min), float64(10*time.Microsecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(s.Max), float64(time.Millisecond))
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(95*time.Millisecond), float64(s.P95), float64(time.Millisecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(s.P99), float64(time.Millisecond))
	assert.True(t, s.P50 <= s.P95 && s.P95 <= s.P99 && s.P99 <= s.Max)
}

func TestSummarize_ClampsOutOfRange(t *testing.T) {
	s := Summarize([]time.Duration{0, time.Hour})

	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, time.Microsecond, s.Min)
	assert.InDelta(t, float64(10*time.Minute), float64(s.Max), float64(time.Second))
}
