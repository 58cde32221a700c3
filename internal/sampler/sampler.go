// Package sampler turns tracks into dense, evenly spaced value sequences.
// The grid always contains the duration endpoint: consumers such as CSV
// export and telemetry previously under-reported the tail value when the
// last sample fell short of the duration, and the count formula here exists
// to keep that from coming back.
package sampler

import (
	"math"

	"github.com/GT-karny/GUI-TimelineTool/internal/interp"
	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// Count returns the number of samples for a duration at a given rate:
// one sample for an empty timeline, otherwise floor(duration*rate)+1 with a
// floor of two so both ends are always present.
func Count(durationS, rateHz float64) int {
	if durationS <= 0 {
		return 1
	}
	rate := math.Max(1, rateHz)
	n := int(math.Floor(durationS*rate)) + 1
	if n < 2 {
		n = 2
	}
	return n
}

// Times builds the sample grid over [0, duration], inclusive of both ends.
// The final timestamp is exactly the duration.
func Times(durationS, rateHz float64) []float64 {
	n := Count(durationS, rateHz)
	ts := make([]float64, n)
	if n == 1 {
		return ts
	}
	for i := 1; i < n-1; i++ {
		ts[i] = durationS * float64(i) / float64(n-1)
	}
	ts[n-1] = durationS
	return ts
}

// Track samples a single track over the given duration.
func Track(tr *timeline.Track, durationS, rateHz float64) (ts, vs []float64) {
	ts = Times(durationS, rateHz)
	return ts, interp.Evaluate(tr, ts)
}

// Timeline samples every track of a timeline on one shared grid. The value
// slices are parallel to tl.Tracks.
func Timeline(tl *timeline.Timeline, rateHz float64) (ts []float64, values [][]float64) {
	ts = Times(tl.DurationS, rateHz)
	values = make([][]float64, len(tl.Tracks))
	for i, tr := range tl.Tracks {
		values[i] = interp.Evaluate(tr, ts)
	}
	return ts, values
}
