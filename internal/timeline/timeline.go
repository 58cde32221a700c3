// Package timeline holds the keyframe data model: handles, keyframes,
// tracks and the timeline that owns them. Ownership is strictly tree
// shaped; nothing here evaluates curves (see internal/interp).
package timeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// InterpMode selects how a track turns its keys into a curve.
type InterpMode string

const (
	InterpLinear InterpMode = "linear"
	InterpCubic  InterpMode = "cubic"
	InterpStep   InterpMode = "step"
	InterpBezier InterpMode = "bezier"
)

// ParseInterpMode converts a serialized mode string.
func ParseInterpMode(s string) (InterpMode, error) {
	switch m := InterpMode(s); m {
	case InterpLinear, InterpCubic, InterpStep, InterpBezier:
		return m, nil
	}
	return "", fmt.Errorf("unknown interpolation mode %q", s)
}

// clampEps is the forward bump applied to colliding key times during
// normalization. Kept small enough to be invisible to any sampler.
const clampEps = 1e-9

// Track is one animated scalar channel: an interpolation mode plus an
// unordered key list. Keys may be appended or removed freely; callers must
// invoke ClampTimes after structural or positional edits and before the
// next evaluation.
type Track struct {
	Name   string
	Interp InterpMode
	Keys   []*Keyframe

	trackID string
}

// NewTrack creates a track with the default pair of keys at (0,0) and (5,0).
func NewTrack(name string) *Track {
	if name == "" {
		name = "FloatTrack"
	}
	return &Track{
		Name:    name,
		Interp:  InterpCubic,
		Keys:    []*Keyframe{NewKeyframe(0, 0), NewKeyframe(5, 0)},
		trackID: uuid.NewString(),
	}
}

// NewTrackWithKeys creates a track around an explicit key list.
func NewTrackWithKeys(name string, interp InterpMode, keys []*Keyframe) *Track {
	tr := NewTrack(name)
	tr.Interp = interp
	tr.Keys = keys
	return tr
}

// TrackID returns the track's immutable identity, assigned at creation.
func (tr *Track) TrackID() string {
	return tr.trackID
}

// Sorted returns the keys stably ordered by (t, v) without mutating the track.
func (tr *Track) Sorted() []*Keyframe {
	ks := make([]*Keyframe, len(tr.Keys))
	copy(ks, tr.Keys)
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].T != ks[j].T {
			return ks[i].T < ks[j].T
		}
		return ks[i].V < ks[j].V
	})
	return ks
}

// ClampTimes re-normalizes the key list: keys are stably sorted by (t, v)
// and any key not strictly after its predecessor is bumped forward by a
// small epsilon. A bumped key can land on its successor, so the walk keeps
// comparing left to right; bumping forward never breaks the sort order.
func (tr *Track) ClampTimes() {
	ks := tr.Sorted()
	for i := 1; i < len(ks); i++ {
		if ks[i].T <= ks[i-1].T {
			ks[i].SetTime(ks[i-1].T + clampEps)
		}
	}
	tr.Keys = ks
}

// KeyByID looks up a keyframe by its stable ID, or nil.
func (tr *Track) KeyByID(id uint64) *Keyframe {
	for _, k := range tr.Keys {
		if k.id == id {
			return k
		}
	}
	return nil
}

// InitializeHandles gives a key flat default handles, one third of the gap
// toward each neighbor. Keys at the track edge use the opposite gap so a
// lone neighbor still produces a usable tangent.
func (tr *Track) InitializeHandles(k *Keyframe) {
	ks := tr.Sorted()
	idx := -1
	for i, kk := range ks {
		if kk == k {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	prevGap, nextGap := 0.0, 0.0
	if idx > 0 {
		prevGap = k.T - ks[idx-1].T
	}
	if idx+1 < len(ks) {
		nextGap = ks[idx+1].T - k.T
	}
	if prevGap <= 0 {
		prevGap = nextGap
	}
	if nextGap <= 0 {
		nextGap = prevGap
	}
	k.HandleIn = &Handle{T: k.T - prevGap/3, V: k.V}
	k.HandleOut = &Handle{T: k.T + nextGap/3, V: k.V}
}

// Clone deep-copies the track, preserving the track ID and all key IDs.
func (tr *Track) Clone() *Track {
	keys := make([]*Keyframe, len(tr.Keys))
	for i, k := range tr.Keys {
		keys[i] = k.Clone()
	}
	return &Track{
		Name:    tr.Name,
		Interp:  tr.Interp,
		Keys:    keys,
		trackID: tr.trackID,
	}
}

// Timeline owns an ordered set of tracks sharing one duration.
type Timeline struct {
	DurationS float64
	Tracks    []*Track
}

// NewTimeline creates a 10 second timeline with one default track.
func NewTimeline() *Timeline {
	return &Timeline{
		DurationS: 10.0,
		Tracks:    []*Track{NewTrack("FloatTrack")},
	}
}

// SetDuration clamps the duration to a strictly positive floor.
func (tl *Timeline) SetDuration(d float64) {
	tl.DurationS = math.Max(0.001, d)
}

// Track returns the first track. Single-track callers and legacy project
// files address the timeline through this accessor.
func (tl *Timeline) Track() *Track {
	return tl.Tracks[0]
}

// AddTrack appends the track and returns it.
func (tl *Timeline) AddTrack(tr *Track) *Track {
	tl.Tracks = append(tl.Tracks, tr)
	return tr
}

// RemoveTrack removes the track with the given ID. Removing the last
// remaining track is silently ignored; a timeline never has zero tracks.
func (tl *Timeline) RemoveTrack(id string) bool {
	if len(tl.Tracks) <= 1 {
		return false
	}
	for i, tr := range tl.Tracks {
		if tr.trackID == id {
			tl.Tracks = append(tl.Tracks[:i], tl.Tracks[i+1:]...)
			return true
		}
	}
	return false
}

// TrackByID looks up a track by its stable ID, or nil.
func (tl *Timeline) TrackByID(id string) *Track {
	for _, tr := range tl.Tracks {
		if tr.trackID == id {
			return tr
		}
	}
	return nil
}

// Clone deep-copies the timeline, preserving all track and key IDs.
func (tl *Timeline) Clone() *Timeline {
	tracks := make([]*Track, len(tl.Tracks))
	for i, tr := range tl.Tracks {
		tracks[i] = tr.Clone()
	}
	return &Timeline{DurationS: tl.DurationS, Tracks: tracks}
}
