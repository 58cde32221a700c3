package sampler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name      string
		durationS float64
		rateHz    float64
		want      int
	}{
		{"one second at 2hz", 1.0, 2.0, 3},
		{"ten seconds at 90hz", 10.0, 90.0, 901},
		{"zero duration", 0, 90, 1},
		{"negative duration", -3, 90, 1},
		{"tiny duration floors at two", 0.001, 10, 2},
		{"rate below one is clamped", 5, 0.1, 6},
		{"fractional product truncates", 1.5, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Count(tt.durationS, tt.rateHz))
		})
	}
}

func TestTimesEndpoints(t *testing.T) {
	ts := Times(1.0, 2.0)
	want := []float64{0, 0.5, 1.0}
	if diff := cmp.Diff(want, ts, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestTimesLastSampleIsExactlyDuration(t *testing.T) {
	// 0.1 is not representable in binary; accumulating steps would drift,
	// so the tail must be pinned to the duration verbatim.
	for _, d := range []float64{0.1, 1.0 / 3.0, 7.3, 10.0} {
		ts := Times(d, 90)
		require.NotEmpty(t, ts)
		assert.Equal(t, 0.0, ts[0])
		assert.Equal(t, d, ts[len(ts)-1], "duration %v", d)
	}
}

func TestTimesZeroDuration(t *testing.T) {
	assert.Equal(t, []float64{0}, Times(0, 90))
}

func TestTimesMonotonic(t *testing.T) {
	ts := Times(7.3, 90)
	for i := 1; i < len(ts); i++ {
		assert.Greater(t, ts[i], ts[i-1], "index %d", i)
	}
}

func TestTrackSamplesThroughInterpolation(t *testing.T) {
	k0 := timeline.NewKeyframe(0, 0)
	k1 := timeline.NewKeyframe(1, 2)
	tr := timeline.NewTrackWithKeys("ramp", timeline.InterpLinear, []*timeline.Keyframe{k0, k1})

	ts, vs := Track(tr, 1.0, 4.0)
	require.Len(t, vs, len(ts))
	want := []float64{0, 0.5, 1.0, 1.5, 2.0}
	if diff := cmp.Diff(want, vs, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestTimelineSharedGrid(t *testing.T) {
	tl := timeline.NewTimeline()
	tl.SetDuration(1.0)

	a := timeline.NewTrackWithKeys("a", timeline.InterpLinear, []*timeline.Keyframe{
		timeline.NewKeyframe(0, 0),
		timeline.NewKeyframe(1, 1),
	})
	b := timeline.NewTrackWithKeys("b", timeline.InterpStep, []*timeline.Keyframe{
		timeline.NewKeyframe(0, 5),
		timeline.NewKeyframe(0.5, 6),
	})
	tl.Tracks = []*timeline.Track{a, b}

	ts, values := Timeline(tl, 2.0)
	require.Len(t, values, 2)
	require.Len(t, ts, 3)
	assert.Equal(t, []float64{0, 0.5, 1.0}, ts)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1.0}, values[0], 1e-12)
	assert.Equal(t, []float64{5, 6, 6}, values[1])
}
