// Package history provides a bounded snapshot-based undo/redo stack for
// timelines. Snapshots are deep copies that keep track and keyframe IDs, so
// an editor's selection stays valid across undo and redo.
package history

import "github.com/GT-karny/GUI-TimelineTool/internal/timeline"

// History records timeline states and restores them in place.
type History struct {
	timeline *timeline.Timeline
	limit    int
	states   []*timeline.Timeline
	index    int
}

// DefaultLimit is the number of retained states when none is given.
const DefaultLimit = 200

// New captures the timeline's current state as the baseline.
func New(tl *timeline.Timeline, limit int) *History {
	if limit < 2 {
		limit = 2
	}
	return &History{
		timeline: tl,
		limit:    limit,
		states:   []*timeline.Timeline{tl.Clone()},
	}
}

// Push captures the current state as a new undo step, discarding any redo
// states and trimming the oldest entries past the limit.
func (h *History) Push() {
	if h.index+1 < len(h.states) {
		h.states = h.states[:h.index+1]
	}
	h.states = append(h.states, h.timeline.Clone())
	h.index++
	if len(h.states) > h.limit {
		drop := len(h.states) - h.limit
		h.states = h.states[drop:]
		h.index -= drop
		if h.index < 0 {
			h.index = 0
		}
	}
}

func (h *History) CanUndo() bool { return h.index > 0 }

func (h *History) CanRedo() bool { return h.index+1 < len(h.states) }

// Undo restores the previous state, reporting whether anything changed.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.index--
	h.apply(h.states[h.index])
	return true
}

// Redo restores the next state, reporting whether anything changed.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.index++
	h.apply(h.states[h.index])
	return true
}

// apply copies a snapshot into the live timeline. The snapshot is cloned
// again so stored states stay immutable under later edits.
func (h *History) apply(snap *timeline.Timeline) {
	restored := snap.Clone()
	h.timeline.DurationS = restored.DurationS
	h.timeline.Tracks = restored.Tracks
}
