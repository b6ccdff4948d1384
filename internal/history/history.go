// Package history records reversible mutations as actions on a pair of
// undo/redo stacks.
package history

import "github.com/kaiwen/cms/internal/model"

// Kind classifies an action for undo/redo dispatch.
type Kind string

const (
	KindInsert  Kind = "insert"
	KindUpdate  Kind = "update"
	KindDelete  Kind = "delete"
	KindRestore Kind = "restore"
)

// Action describes one reversible state transition.
//
// Insert carries After (the inserted record), Update carries Before and
// After, Delete carries Before (the removed record). Restore marks a
// wholesale replacement of the store from the backup file and carries no
// per-record payload.
type Action struct {
	Kind   Kind
	Before model.Record
	After  model.Record
}

// ID returns the record ID an action applies to, for rendering. Restore
// actions have no subject record and return 0.
func (a Action) ID() int {
	if a.Kind == KindDelete {
		return a.Before.ID
	}
	return a.After.ID
}

// Log holds the undo and redo stacks. Every user-initiated mutation pushes
// exactly one action; undo and redo shuttle actions between the two stacks
// without ever creating new ones.
type Log struct {
	undo []Action
	redo []Action
}

// Record pushes a top-level action onto the undo stack and clears the redo
// stack: a new edit invalidates any redo history.
func (l *Log) Record(a Action) {
	l.undo = append(l.undo, a)
	l.redo = l.redo[:0]
}

// PopUndo removes and returns the most recent undoable action.
func (l *Log) PopUndo() (Action, bool) {
	n := len(l.undo)
	if n == 0 {
		return Action{}, false
	}
	a := l.undo[n-1]
	l.undo = l.undo[:n-1]
	return a, true
}

// PopRedo removes and returns the most recent redoable action.
func (l *Log) PopRedo() (Action, bool) {
	n := len(l.redo)
	if n == 0 {
		return Action{}, false
	}
	a := l.redo[n-1]
	l.redo = l.redo[:n-1]
	return a, true
}

// PushRedo returns an undone action to the redo stack.
func (l *Log) PushRedo(a Action) {
	l.redo = append(l.redo, a)
}

// PushUndo returns a redone action to the undo stack. Unlike Record it does
// not clear the redo stack.
func (l *Log) PushUndo(a Action) {
	l.undo = append(l.undo, a)
}

// UndoLen returns the number of undoable actions.
func (l *Log) UndoLen() int { return len(l.undo) }

// RedoLen returns the number of redoable actions.
func (l *Log) RedoLen() int { return len(l.redo) }
