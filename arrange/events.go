package arrange

type (
	// Event describes one change of an arrangement. Events re-emitted by undo
	// or redo report Replayed() == true.
	Event interface {
		Replayed() bool
		reverse() Event
		replay() Event
	}

	PartsAdded struct {
		replayFlag
		Parts []Part
	}

	PartsRemoved struct {
		replayFlag
		Parts []Part
	}

	// PartsResized lists the parts by their start bar before the change.
	PartsResized struct {
		replayFlag
		Resizes []Resize
	}

	Resize struct {
		StartBar  int
		OldLength int
		NewLength int
	}

	// PartsReplaced is emitted when New[i] takes the place of Old[i].
	PartsReplaced struct {
		replayFlag
		Old, New []Part
	}

	PartsRenamed struct {
		replayFlag
		Renames []Rename
	}

	Rename struct {
		StartBar int
		Old, New string
	}

	ParameterChanged struct {
		replayFlag
		Part     Part
		ID       string
		Old, New int
	}

	ActionStarted struct {
		replayFlag
		Name string
	}

	ActionCompleted struct {
		replayFlag
		Name string
	}

	replayFlag struct{ replayed bool }
)

func (f replayFlag) Replayed() bool { return f.replayed }

func (e PartsAdded) reverse() Event { return PartsRemoved{replayFlag{true}, e.Parts} }
func (e PartsAdded) replay() Event  { e.replayed = true; return e }

func (e PartsRemoved) reverse() Event { return PartsAdded{replayFlag{true}, e.Parts} }
func (e PartsRemoved) replay() Event  { e.replayed = true; return e }

func (e PartsResized) reverse() Event {
	rs := make([]Resize, len(e.Resizes))
	for i, r := range e.Resizes {
		rs[i] = Resize{StartBar: r.StartBar, OldLength: r.NewLength, NewLength: r.OldLength}
	}
	return PartsResized{replayFlag{true}, rs}
}
func (e PartsResized) replay() Event { e.replayed = true; return e }

func (e PartsReplaced) reverse() Event { return PartsReplaced{replayFlag{true}, e.New, e.Old} }
func (e PartsReplaced) replay() Event  { e.replayed = true; return e }

func (e PartsRenamed) reverse() Event {
	rs := make([]Rename, len(e.Renames))
	for i, r := range e.Renames {
		rs[i] = Rename{StartBar: r.StartBar, Old: r.New, New: r.Old}
	}
	return PartsRenamed{replayFlag{true}, rs}
}
func (e PartsRenamed) replay() Event { e.replayed = true; return e }

func (e ParameterChanged) reverse() Event {
	return ParameterChanged{replayFlag{true}, e.Part, e.ID, e.New, e.Old}
}
func (e ParameterChanged) replay() Event { e.replayed = true; return e }

func (e ActionStarted) reverse() Event { return ActionCompleted{replayFlag{true}, e.Name} }
func (e ActionStarted) replay() Event  { e.replayed = true; return e }

func (e ActionCompleted) reverse() Event { return ActionStarted{replayFlag{true}, e.Name} }
func (e ActionCompleted) replay() Event  { e.replayed = true; return e }
