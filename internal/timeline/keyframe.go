package timeline

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

// ErrMalformedHandle is returned when handle data from an untrusted source
// (project files, tooling input) contains non-finite components.
var ErrMalformedHandle = errors.New("malformed handle")

// Handle is a 2D control point attached to one side of a keyframe.
// It shapes the tangent of a Bezier segment and has no identity of its own.
type Handle struct {
	T float64
	V float64
}

// NewHandle validates handle coordinates coming from external payloads.
// Silently coercing corrupt handle data would poison saved projects, so this
// is the one place the model fails hard.
func NewHandle(t, v float64) (Handle, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) || math.IsNaN(v) || math.IsInf(v, 0) {
		return Handle{}, fmt.Errorf("%w: (%v, %v)", ErrMalformedHandle, t, v)
	}
	return Handle{T: t, V: v}, nil
}

var keyframeSeq atomic.Uint64

// Keyframe is a time/value anchor with optional Bezier handles.
// Editors reference keyframes by ID rather than slice position, because
// normalization can reorder a track's key list at any time.
type Keyframe struct {
	T         float64
	V         float64
	HandleIn  *Handle
	HandleOut *Handle

	id uint64
}

// NewKeyframe creates a keyframe at (t, v) with a fresh stable ID.
// Times are clamped to zero; keys never sit before the timeline origin.
func NewKeyframe(t, v float64) *Keyframe {
	return &Keyframe{
		T:  math.Max(0, t),
		V:  v,
		id: keyframeSeq.Add(1),
	}
}

// ID returns the keyframe's stable identity. IDs are assigned at creation
// and never reused.
func (k *Keyframe) ID() uint64 {
	return k.id
}

// SetTime moves the keyframe to time t, dragging both handles by the same
// delta so their offsets relative to the key are preserved.
func (k *Keyframe) SetTime(t float64) {
	t = math.Max(0, t)
	dt := t - k.T
	k.T = t
	if k.HandleIn != nil {
		k.HandleIn.T += dt
	}
	if k.HandleOut != nil {
		k.HandleOut.T += dt
	}
}

// SetValue moves the keyframe to value v, dragging both handles along.
func (k *Keyframe) SetValue(v float64) {
	dv := v - k.V
	k.V = v
	if k.HandleIn != nil {
		k.HandleIn.V += dv
	}
	if k.HandleOut != nil {
		k.HandleOut.V += dv
	}
}

// Translate shifts the keyframe and its handles by (dt, dv).
func (k *Keyframe) Translate(dt, dv float64) {
	k.SetTime(k.T + dt)
	k.SetValue(k.V + dv)
}

// Clone returns a deep copy sharing the original's ID. History snapshots use
// this so a restored keyframe is still the same logical key to the editor.
func (k *Keyframe) Clone() *Keyframe {
	c := &Keyframe{T: k.T, V: k.V, id: k.id}
	if k.HandleIn != nil {
		h := *k.HandleIn
		c.HandleIn = &h
	}
	if k.HandleOut != nil {
		h := *k.HandleOut
		c.HandleOut = &h
	}
	return c
}
