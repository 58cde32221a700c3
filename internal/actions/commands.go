package actions

import (
	"math"
	"sort"

	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// Command is a reversible edit. Redo applies the edit (also used for the
// initial execution), Undo reverts it. Commands that move keys in time
// re-normalize their track so the ordering invariant holds before the next
// evaluation.
type Command interface {
	Label() string
	Redo()
	Undo()
}

// Stack executes commands and keeps them for undo/redo.
type Stack struct {
	done   []Command
	undone []Command
}

// Push executes the command and records it, clearing the redo list.
func (s *Stack) Push(c Command) {
	c.Redo()
	s.done = append(s.done, c)
	s.undone = s.undone[:0]
}

func (s *Stack) Undo() bool {
	if len(s.done) == 0 {
		return false
	}
	c := s.done[len(s.done)-1]
	s.done = s.done[:len(s.done)-1]
	c.Undo()
	s.undone = append(s.undone, c)
	return true
}

func (s *Stack) Redo() bool {
	if len(s.undone) == 0 {
		return false
	}
	c := s.undone[len(s.undone)-1]
	s.undone = s.undone[:len(s.undone)-1]
	c.Redo()
	s.done = append(s.done, c)
	return true
}

// AddKeyCommand inserts a single key at (t, v).
type AddKeyCommand struct {
	Track *timeline.Track
	key   *timeline.Keyframe
	t, v  float64
}

func NewAddKeyCommand(tr *timeline.Track, t, v float64) *AddKeyCommand {
	return &AddKeyCommand{Track: tr, t: t, v: v}
}

func (c *AddKeyCommand) Label() string { return "Add Key" }

func (c *AddKeyCommand) Redo() {
	if c.key == nil {
		c.key = timeline.NewKeyframe(c.t, c.v)
	}
	if c.Track.KeyByID(c.key.ID()) == nil {
		c.Track.Keys = append(c.Track.Keys, c.key)
		c.Track.ClampTimes()
	}
}

func (c *AddKeyCommand) Undo() {
	removeKeys(c.Track, map[uint64]bool{c.key.ID(): true})
}

// Key returns the created keyframe after the first Redo.
func (c *AddKeyCommand) Key() *timeline.Keyframe { return c.key }

// DeleteKeysCommand removes a set of keys, restoring them at their original
// positions on undo.
type DeleteKeysCommand struct {
	Track *timeline.Track
	items []deletedKey
}

type deletedKey struct {
	index int
	key   *timeline.Keyframe
}

func NewDeleteKeysCommand(tr *timeline.Track, ids map[uint64]bool) *DeleteKeysCommand {
	c := &DeleteKeysCommand{Track: tr}
	for i, k := range tr.Keys {
		if ids[k.ID()] {
			c.items = append(c.items, deletedKey{index: i, key: k})
		}
	}
	sort.Slice(c.items, func(i, j int) bool { return c.items[i].index < c.items[j].index })
	return c
}

func (c *DeleteKeysCommand) Label() string { return "Delete Keys" }

func (c *DeleteKeysCommand) Redo() {
	ids := make(map[uint64]bool, len(c.items))
	for _, it := range c.items {
		ids[it.key.ID()] = true
	}
	removeKeys(c.Track, ids)
}

func (c *DeleteKeysCommand) Undo() {
	for _, it := range c.items {
		if c.Track.KeyByID(it.key.ID()) != nil {
			continue
		}
		at := it.index
		if at > len(c.Track.Keys) {
			at = len(c.Track.Keys)
		}
		c.Track.Keys = append(c.Track.Keys[:at], append([]*timeline.Keyframe{it.key}, c.Track.Keys[at:]...)...)
	}
	c.Track.ClampTimes()
}

// MoveKeyCommand moves one key between two (t, v) positions.
type MoveKeyCommand struct {
	Track            *timeline.Track
	Key              *timeline.Keyframe
	beforeT, beforeV float64
	afterT, afterV   float64
}

func NewMoveKeyCommand(tr *timeline.Track, k *timeline.Keyframe, beforeT, beforeV, afterT, afterV float64) *MoveKeyCommand {
	return &MoveKeyCommand{
		Track: tr, Key: k,
		beforeT: beforeT, beforeV: beforeV,
		afterT: afterT, afterV: afterV,
	}
}

func (c *MoveKeyCommand) Label() string { return "Move Key" }

func (c *MoveKeyCommand) apply(t, v float64) {
	c.Key.SetTime(math.Max(0, t))
	c.Key.SetValue(v)
	c.Track.ClampTimes()
}

func (c *MoveKeyCommand) Redo() { c.apply(c.afterT, c.afterV) }
func (c *MoveKeyCommand) Undo() { c.apply(c.beforeT, c.beforeV) }

// SetKeyTimeCommand changes only a key's time.
type SetKeyTimeCommand struct {
	Track      *timeline.Track
	Key        *timeline.Keyframe
	oldT, newT float64
}

func NewSetKeyTimeCommand(tr *timeline.Track, k *timeline.Keyframe, oldT, newT float64) *SetKeyTimeCommand {
	return &SetKeyTimeCommand{Track: tr, Key: k, oldT: oldT, newT: newT}
}

func (c *SetKeyTimeCommand) Label() string { return "Set Time" }

func (c *SetKeyTimeCommand) Redo() {
	c.Key.SetTime(math.Max(0, c.newT))
	c.Track.ClampTimes()
}

func (c *SetKeyTimeCommand) Undo() {
	c.Key.SetTime(math.Max(0, c.oldT))
	c.Track.ClampTimes()
}

// SetKeyValueCommand changes only a key's value. Values do not affect
// ordering, so no re-normalization is needed.
type SetKeyValueCommand struct {
	Key        *timeline.Keyframe
	oldV, newV float64
}

func NewSetKeyValueCommand(k *timeline.Keyframe, oldV, newV float64) *SetKeyValueCommand {
	return &SetKeyValueCommand{Key: k, oldV: oldV, newV: newV}
}

func (c *SetKeyValueCommand) Label() string { return "Set Value" }
func (c *SetKeyValueCommand) Redo()         { c.Key.SetValue(c.newV) }
func (c *SetKeyValueCommand) Undo()         { c.Key.SetValue(c.oldV) }

// removeKeys filters keys by ID in place.
func removeKeys(tr *timeline.Track, ids map[uint64]bool) {
	kept := tr.Keys[:0]
	for _, k := range tr.Keys {
		if !ids[k.ID()] {
			kept = append(kept, k)
		}
	}
	tr.Keys = kept
}
