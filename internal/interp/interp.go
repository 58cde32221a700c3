// Package interp evaluates tracks at arbitrary timestamps. Evaluation is
// pure: the same track and times always produce bit-identical output, and
// no function here mutates the track. Degenerate inputs degrade to simpler
// curves instead of failing; an editor can hand this package anything.
package interp

import (
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// haveSpline gates the natural-spline implementation of Cubic mode. When
// false, Cubic always takes the Linear fallback branch. Tests flip this to
// exercise the fallback path directly.
var haveSpline = true

// Evaluate computes the track's value at each query time. The result has
// the same length as times. Times outside the key range clamp to the first
// or last key's value (Cubic extrapolates by the spline's own rule, as the
// spline library defines it).
func Evaluate(tr *timeline.Track, times []float64) []float64 {
	switch tr.Interp {
	case timeline.InterpLinear:
		return evalLinear(tr, times)
	case timeline.InterpStep:
		return evalStep(tr, times)
	case timeline.InterpBezier:
		return evalBezier(tr, times)
	case timeline.InterpCubic:
		return evalCubic(tr, times)
	default:
		// Unknown modes read as cubic, the track default.
		return evalCubic(tr, times)
	}
}

// sortedArrays splits the sorted keys into parallel time/value slices.
func sortedArrays(tr *timeline.Track) (ts, vs []float64) {
	ks := tr.Sorted()
	ts = make([]float64, len(ks))
	vs = make([]float64, len(ks))
	for i, k := range ks {
		ts[i] = k.T
		vs[i] = k.V
	}
	return ts, vs
}

func evalLinear(tr *timeline.Track, times []float64) []float64 {
	ts, vs := sortedArrays(tr)
	return lerpSeries(ts, vs, times)
}

// lerpSeries is piecewise-linear interpolation over sorted keys with flat
// extrapolation. Zero keys evaluate to zero, one key to a constant.
func lerpSeries(ts, vs, times []float64) []float64 {
	out := make([]float64, len(times))
	switch len(ts) {
	case 0:
		return out
	case 1:
		for i := range out {
			out[i] = vs[0]
		}
		return out
	}
	last := len(ts) - 1
	for i, t := range times {
		switch {
		case t <= ts[0]:
			out[i] = vs[0]
		case t >= ts[last]:
			out[i] = vs[last]
		default:
			j := sort.SearchFloat64s(ts, t)
			if ts[j] == t {
				out[i] = vs[j]
				continue
			}
			out[i] = lerpSegment(ts[j-1], vs[j-1], ts[j], vs[j], t)
		}
	}
	return out
}

// lerpSegment interpolates between two keys, returning the start value when
// the span is too small to divide by.
func lerpSegment(t0, v0, t1, v1, t float64) float64 {
	span := t1 - t0
	if span <= 1e-12 {
		return v0
	}
	return v0 + (v1-v0)*(t-t0)/span
}

func evalStep(tr *timeline.Track, times []float64) []float64 {
	ts, vs := sortedArrays(tr)
	out := make([]float64, len(times))
	switch len(ts) {
	case 0:
		return out
	case 1:
		for i := range out {
			out[i] = vs[0]
		}
		return out
	}
	for i, t := range times {
		// Index of the latest key at or before t; before the first key the
		// track holds the first key's value.
		j := sort.Search(len(ts), func(n int) bool { return ts[n] > t }) - 1
		if j < 0 {
			j = 0
		}
		out[i] = vs[j]
	}
	return out
}

func evalCubic(tr *timeline.Track, times []float64) []float64 {
	ts, vs := sortedArrays(tr)
	if len(ts) < 3 || !haveSpline || !strictlyIncreasing(ts) {
		return lerpSeries(ts, vs, times)
	}
	var spline interp.NaturalCubic
	if err := spline.Fit(ts, vs); err != nil {
		return lerpSeries(ts, vs, times)
	}
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = spline.Predict(t)
	}
	return out
}

func strictlyIncreasing(ts []float64) bool {
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			return false
		}
	}
	return true
}
