// Package calibrate turns measured echo latencies into sync timings.
//
// An echo latency is the time between a programmatic scroll write and the
// host delivering the resulting scroll event. The suppression delay must
// outlast nearly all echoes, and the idle window must outlast the
// suppression delay so a late echo still finds a live source.
package calibrate

import (
	"errors"
	"math"
	"slices"
	"time"
)

// ErrNoSamples is returned when there is nothing to summarize.
var ErrNoSamples = errors.New("no latency samples")

const (
	// MinSuppress is the smallest suppression delay recommended: one
	// frame at 60Hz.
	MinSuppress = 16 * time.Millisecond
	// MinIdle is the smallest idle window recommended.
	MinIdle = 100 * time.Millisecond

	suppressFactor = 2
	idleFactor     = 3
	roundTo        = 5 * time.Millisecond
)

// Summary describes a latency distribution.
type Summary struct {
	Samples int
	Min     time.Duration
	Median  time.Duration
	P95     time.Duration
	P99     time.Duration
	Max     time.Duration
}

// Recommendation holds suggested sync timings.
type Recommendation struct {
	SuppressDelay time.Duration
	IdleWindow    time.Duration
}

// Summarize computes order statistics. The input is not modified.
func Summarize(latencies []time.Duration) (Summary, error) {
	if len(latencies) == 0 {
		return Summary{}, ErrNoSamples
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	return Summary{
		Samples: len(sorted),
		Min:     sorted[0],
		Median:  Percentile(sorted, 50),
		P95:     Percentile(sorted, 95),
		P99:     Percentile(sorted, 99),
		Max:     sorted[len(sorted)-1],
	}, nil
}

// Percentile returns the nearest-rank p-th percentile of sorted values.
// p is clamped to [0, 100]; an empty slice yields 0.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(100, p))
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// Recommend suggests timings from a summary: twice the p99 latency for
// suppression (at least MinSuppress, rounded up to 5ms), and three times
// that for the idle window (at least MinIdle).
func Recommend(s Summary) Recommendation {
	suppress := max(MinSuppress, suppressFactor*s.P99)
	suppress = roundUp(suppress, roundTo)
	idle := max(MinIdle, idleFactor*suppress)
	return Recommendation{SuppressDelay: suppress, IdleWindow: idle}
}

func roundUp(d, unit time.Duration) time.Duration {
	if r := d % unit; r != 0 {
		return d + unit - r
	}
	return d
}
