// Package actions is the pure editing layer: keyframe add/delete/move
// utilities, reversible commands, and the CSV export entry point. UI
// concerns (redraw, dialogs) belong to the caller.
package actions

import (
	"math"

	"github.com/GT-karny/GUI-TimelineTool/internal/export"
	"github.com/GT-karny/GUI-TimelineTool/internal/interp"
	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// TimelineActions bundles editing operations against one timeline. The
// sample rate getter lets the host supply the current export rate lazily.
type TimelineActions struct {
	Timeline   *timeline.Timeline
	SampleRate func() float64
}

func NewTimelineActions(tl *timeline.Timeline, sampleRate func() float64) *TimelineActions {
	if sampleRate == nil {
		sampleRate = func() float64 { return 90.0 }
	}
	return &TimelineActions{Timeline: tl, SampleRate: sampleRate}
}

// AddKeyAt inserts a key at time t on the first track, seeding its value
// from the current curve so the edit does not visibly jump.
func (a *TimelineActions) AddKeyAt(t float64) *timeline.Keyframe {
	return a.AddKeyOnTrack(a.Timeline.Track(), t)
}

// AddKeyOnTrack inserts a curve-valued key on a specific track.
func (a *TimelineActions) AddKeyOnTrack(tr *timeline.Track, t float64) *timeline.Keyframe {
	t = math.Max(0, t)
	v := interp.Evaluate(tr, []float64{t})[0]
	k := timeline.NewKeyframe(t, v)
	tr.Keys = append(tr.Keys, k)
	tr.ClampTimes()
	if tr.Interp == timeline.InterpBezier {
		tr.InitializeHandles(k)
	}
	return k
}

// DeleteByIDs removes keys from the first track by stable ID and returns
// how many were removed.
func (a *TimelineActions) DeleteByIDs(ids map[uint64]bool) int {
	tr := a.Timeline.Track()
	before := len(tr.Keys)
	removeKeys(tr, ids)
	return before - len(tr.Keys)
}

// ResetTwoPoints reinitializes the first track to zero-valued keys at the
// start and end of the timeline.
func (a *TimelineActions) ResetTwoPoints() {
	tr := a.Timeline.Track()
	tr.Keys = []*timeline.Keyframe{
		timeline.NewKeyframe(0, 0),
		timeline.NewKeyframe(a.Timeline.DurationS, 0),
	}
	tr.ClampTimes()
}

// MoveKey shifts a single key by (dt, dv) and re-normalizes.
func (a *TimelineActions) MoveKey(tr *timeline.Track, k *timeline.Keyframe, dt, dv float64) {
	k.Translate(dt, dv)
	tr.ClampTimes()
}

// MoveKeysBulk shifts several keys by the same delta, normalizing once.
func (a *TimelineActions) MoveKeysBulk(tr *timeline.Track, keys []*timeline.Keyframe, dt, dv float64) {
	for _, k := range keys {
		k.Translate(dt, dv)
	}
	tr.ClampTimes()
}

// ExportCSV writes the sampled timeline to path at the current rate.
func (a *TimelineActions) ExportCSV(path string) error {
	return export.CSV(path, a.Timeline, a.SampleRate())
}
