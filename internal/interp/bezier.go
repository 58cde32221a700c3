package interp

import (
	"math"
	"sort"

	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// Bezier solver tuning. The segment-monotonicity precondition makes the
// time-axis cubic invertible; Newton handles the smooth cases and bisection
// mops up anything Newton diverges on near inflections.
const (
	bezMinSpan     = 1e-9
	newtonIters    = 8
	newtonStepTol  = 1e-8
	newtonDerivTol = 1e-12
	residualTol    = 1e-6
	bisectIters    = 24
)

// segment is one cubic Bezier span between two consecutive keys, with the
// four control points split into time and value axes.
type segment struct {
	t0, t1, t2, t3 float64
	v0, v1, v2, v3 float64
}

// newSegment builds the segment between k0 and k1. A missing handle falls
// back to the one-third lerp between the keys, which reproduces a straight
// uniformly-parameterized segment when both handles are absent.
func newSegment(k0, k1 *timeline.Keyframe) segment {
	s := segment{
		t0: k0.T, v0: k0.V,
		t3: k1.T, v3: k1.V,
	}
	if h := k0.HandleOut; h != nil {
		s.t1, s.v1 = h.T, h.V
	} else {
		s.t1 = k0.T + (k1.T-k0.T)/3
		s.v1 = k0.V + (k1.V-k0.V)/3
	}
	if h := k1.HandleIn; h != nil {
		s.t2, s.v2 = h.T, h.V
	} else {
		s.t2 = k0.T + (k1.T-k0.T)*2/3
		s.v2 = k0.V + (k1.V-k0.V)*2/3
	}
	return s
}

// invertible reports whether the time control points are monotonic and the
// span is wide enough for parameter inversion to be well-defined.
func (s segment) invertible() bool {
	return s.t0 <= s.t1 && s.t1 <= s.t2 && s.t2 <= s.t3 && s.t3-s.t0 > bezMinSpan
}

// valueAt solves the time axis for the Bezier parameter at target, then
// reads the value axis at that parameter.
func (s segment) valueAt(target float64) float64 {
	u := s.solveTime(target)
	return cubicBez(u, s.v0, s.v1, s.v2, s.v3)
}

// solveTime inverts the time-axis cubic: find u in [0,1] with
// Bezier(u) == target. Newton from a lerp seed, bisection as the guard.
func (s segment) solveTime(target float64) float64 {
	if target <= s.t0 {
		return 0
	}
	if target >= s.t3 {
		return 1
	}

	u := clamp01((target - s.t0) / (s.t3 - s.t0))
	for i := 0; i < newtonIters; i++ {
		f := cubicBez(u, s.t0, s.t1, s.t2, s.t3) - target
		d := cubicBezDeriv(u, s.t0, s.t1, s.t2, s.t3)
		if math.Abs(d) < newtonDerivTol {
			break
		}
		next := clamp01(u - f/d)
		if math.Abs(next-u) < newtonStepTol {
			u = next
			break
		}
		u = next
	}

	if math.Abs(cubicBez(u, s.t0, s.t1, s.t2, s.t3)-target) > residualTol {
		// Newton diverged; the segment is monotonic in time, so bisection
		// converges unconditionally.
		lo, hi := 0.0, 1.0
		for i := 0; i < bisectIters; i++ {
			mid := 0.5 * (lo + hi)
			if cubicBez(mid, s.t0, s.t1, s.t2, s.t3) < target {
				lo = mid
			} else {
				hi = mid
			}
		}
		u = 0.5 * (lo + hi)
	}
	return u
}

// cubicBez evaluates a scalar cubic Bezier in Bernstein form.
func cubicBez(u, p0, p1, p2, p3 float64) float64 {
	mu := 1 - u
	return mu*mu*mu*p0 + 3*mu*mu*u*p1 + 3*mu*u*u*p2 + u*u*u*p3
}

// cubicBezDeriv is the derivative of cubicBez with respect to u.
func cubicBezDeriv(u, p0, p1, p2, p3 float64) float64 {
	mu := 1 - u
	return 3*mu*mu*(p1-p0) + 6*mu*u*(p2-p1) + 3*u*u*(p3-p2)
}

func clamp01(u float64) float64 {
	return math.Min(1, math.Max(0, u))
}

// evalBezier evaluates Bezier mode. Query times are bucketed by the segment
// they fall in, each segment's geometry is validated once, and results are
// written back by original position. Segments with non-monotonic or
// overlapping time controls degrade to plain linear interpolation.
func evalBezier(tr *timeline.Track, times []float64) []float64 {
	ts, vs := sortedArrays(tr)
	if len(ts) < 2 {
		return lerpSeries(ts, vs, times)
	}
	ks := tr.Sorted()
	out := make([]float64, len(times))
	last := len(ts) - 1

	// Bucket query indices by segment.
	buckets := make(map[int][]int)
	for i, t := range times {
		switch {
		case t <= ts[0]:
			out[i] = vs[0]
		case t >= ts[last]:
			out[i] = vs[last]
		default:
			j := sort.Search(len(ts), func(n int) bool { return ts[n] > t }) - 1
			if j < 0 {
				j = 0
			}
			if j > last-1 {
				j = last - 1
			}
			buckets[j] = append(buckets[j], i)
		}
	}

	for j, idxs := range buckets {
		seg := newSegment(ks[j], ks[j+1])
		if seg.invertible() {
			for _, i := range idxs {
				out[i] = seg.valueAt(times[i])
			}
			continue
		}
		for _, i := range idxs {
			out[i] = lerpSegment(ts[j], vs[j], ts[j+1], vs[j+1], times[i])
		}
	}
	return out
}
