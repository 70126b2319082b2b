package edit

import (
	"github.com/golang/glog"
)

// DefaultMaxUndo is the undo stack depth used when none is configured.
const DefaultMaxUndo = 256

type (
	// History is an undo manager. It is a Sink: connect it to every store
	// taking part in an undoable action. Edits received between Begin and End
	// are grouped into one Compound; edits received outside of Begin/End
	// become compounds of their own.
	//
	// History is owned by the editing goroutine, like the stores it records.
	History struct {
		MaxUndo int

		undoStack []*Compound
		redoStack []*Compound
		current   *Compound
		depth     int
		replaying bool
	}

	// Compound is the list of edits of one user action.
	Compound struct {
		Name  string
		Edits []*Edit
	}
)

func NewHistory(maxUndo int) *History {
	if maxUndo <= 0 {
		maxUndo = DefaultMaxUndo
	}
	return &History{MaxUndo: maxUndo}
}

// Undo undoes the edits in reverse order.
func (c *Compound) Undo() {
	for i := len(c.Edits) - 1; i >= 0; i-- {
		c.Edits[i].Undo()
	}
}

// Redo redoes the edits in the original order.
func (c *Compound) Redo() {
	for _, e := range c.Edits {
		e.Redo()
	}
}

// EditHappened records e. Edits produced while an undo or redo is running are
// ignored, as they are replays of edits already on the stacks.
func (h *History) EditHappened(e *Edit) {
	if h.replaying {
		return
	}
	if h.current != nil {
		h.current.Edits = append(h.current.Edits, e)
		return
	}
	h.push(&Compound{Name: e.Name, Edits: []*Edit{e}})
}

// Begin starts a compound edit. Calls can be nested; only the outermost
// Begin/End pair delimits the compound.
func (h *History) Begin(name string) {
	if h.depth == 0 {
		h.current = &Compound{Name: name}
	}
	h.depth++
}

// End closes the compound edit started by Begin. Empty compounds are dropped.
func (h *History) End() {
	if h.depth == 0 {
		panic("edit: History.End without Begin")
	}
	h.depth--
	if h.depth > 0 {
		return
	}
	c := h.current
	h.current = nil
	if len(c.Edits) > 0 {
		h.push(c)
	}
}

// Do runs fn inside a compound edit named name. If the outermost fn returns
// an error, the edits it already made are undone and discarded, leaving the
// stores as they were before Do.
func (h *History) Do(name string, fn func() error) error {
	h.Begin(name)
	err := fn()
	if err == nil || h.depth > 1 {
		h.End()
		return err
	}
	c := h.current
	h.current = nil
	h.depth = 0
	h.replay(c.Undo)
	glog.V(1).Infof("rolled back %q (%d edits): %v", name, len(c.Edits), err)
	return err
}

// Undo undoes the last compound edit. Returns false if there is nothing to
// undo or a compound edit is being recorded.
func (h *History) Undo() bool {
	if len(h.undoStack) == 0 || h.current != nil {
		return false
	}
	c := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.replay(c.Undo)
	h.redoStack = append(h.redoStack, c)
	return true
}

// Redo redoes the last undone compound edit.
func (h *History) Redo() bool {
	if len(h.redoStack) == 0 || h.current != nil {
		return false
	}
	c := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.replay(c.Redo)
	h.undoStack = append(h.undoStack, c)
	return true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 && h.current == nil }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 && h.current == nil }

// UndoName returns the name of the compound that Undo would undo.
func (h *History) UndoName() string {
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].Name
}

// RedoName returns the name of the compound that Redo would redo.
func (h *History) RedoName() string {
	if len(h.redoStack) == 0 {
		return ""
	}
	return h.redoStack[len(h.redoStack)-1].Name
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

func (h *History) replay(f func()) {
	h.replaying = true
	defer func() { h.replaying = false }()
	f()
}

func (h *History) push(c *Compound) {
	h.undoStack = append(h.undoStack, c)
	if len(h.undoStack) > h.MaxUndo {
		copy(h.undoStack, h.undoStack[len(h.undoStack)-h.MaxUndo:])
		h.undoStack = h.undoStack[:h.MaxUndo]
	}
	h.redoStack = nil
}
