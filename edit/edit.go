package edit

type (
	// Edit is a recorded change. Undo and Redo restore the state before and
	// after the change, respectively, and re-emit the corresponding events.
	Edit struct {
		Name string
		undo func()
		redo func()
	}

	// Sink receives the edits of a store, in the order they happen.
	Sink interface {
		EditHappened(e *Edit)
	}

	// SinkFunc adapts a function to the Sink interface.
	SinkFunc func(e *Edit)
)

func New(name string, undo, redo func()) *Edit {
	return &Edit{Name: name, undo: undo, redo: redo}
}

func (e *Edit) Undo() {
	if e.undo != nil {
		e.undo()
	}
}

func (e *Edit) Redo() {
	if e.redo != nil {
		e.redo()
	}
}

func (f SinkFunc) EditHappened(e *Edit) { f(e) }
