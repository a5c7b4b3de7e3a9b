// Package history wraps the timeline reducer with bounded undo and redo
// stacks of track snapshots.
package history

import "github.com/3menions-ctrl/genesis-director-sub010/internal/timeline"

// DefaultDepth is the number of snapshots each stack keeps.
const DefaultDepth = 50

// nonUndoable lists actions that touch view, playback or selection state, or
// that restore whole projects. They are applied without recording history.
var nonUndoable = map[timeline.ActionType]bool{
	timeline.ActionSetPlayhead:    true,
	timeline.ActionSetPlaying:     true,
	timeline.ActionSelectClip:     true,
	timeline.ActionSetZoom:        true,
	timeline.ActionSetScrollX:     true,
	timeline.ActionLoadProject:    true,
	timeline.ActionSetLoop:        true,
	timeline.ActionSetAspectRatio: true,
	timeline.ActionToggleSnap:     true,
	timeline.ActionSelectAllClips: true,
}

// Undoable reports whether dispatching a records an undo snapshot.
func Undoable(a timeline.Action) bool {
	return !nonUndoable[a.Type()]
}

// Engine owns the current timeline state and its history. It is not safe
// for concurrent use.
type Engine struct {
	state timeline.State
	undo  [][]timeline.Track
	redo  [][]timeline.Track
	depth int
}

type Option func(*Engine)

// WithDepth bounds both stacks to n entries. Values below 1 are ignored.
func WithDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.depth = n
		}
	}
}

func New(initial timeline.State, opts ...Option) *Engine {
	e := &Engine{state: initial, depth: DefaultDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current state. Callers must treat it as read-only.
func (e *Engine) State() timeline.State {
	return e.state
}

// Dispatch applies a and returns the new state. Undoable actions push a
// snapshot of the current tracks and clear the redo stack first.
func (e *Engine) Dispatch(a timeline.Action) timeline.State {
	if Undoable(a) {
		e.undo = e.push(e.undo, timeline.CloneTracks(e.state.Tracks))
		e.redo = nil
	}
	e.state = timeline.Reduce(e.state, a)
	return e.state
}

// Undo restores the tracks from before the last undoable action. It reports
// false when there is nothing to undo.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = e.push(e.redo, timeline.CloneTracks(e.state.Tracks))
	e.restore(prev)
	return true
}

// Redo re-applies the tracks from the last undo. It reports false when there
// is nothing to redo.
func (e *Engine) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = e.push(e.undo, timeline.CloneTracks(e.state.Tracks))
	e.restore(next)
	return true
}

func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }

func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

func (e *Engine) UndoDepth() int { return len(e.undo) }

func (e *Engine) RedoDepth() int { return len(e.redo) }

// Reset replaces the state and forgets all history.
func (e *Engine) Reset(s timeline.State) {
	e.state = s
	e.undo = nil
	e.redo = nil
}

func (e *Engine) restore(tracks []timeline.Track) {
	e.state = timeline.Reduce(e.state, timeline.LoadProject{Patch: timeline.Patch{Tracks: &tracks}})
}

// push appends a snapshot and evicts the oldest entries beyond the depth.
func (e *Engine) push(stack [][]timeline.Track, snap []timeline.Track) [][]timeline.Track {
	stack = append(stack, snap)
	if over := len(stack) - e.depth; over > 0 {
		stack = append([][]timeline.Track(nil), stack[over:]...)
	}
	return stack
}
