package sheet

import "github.com/vsariola/jamsheet"

type (
	// Event describes one change of a leadsheet. Authorizers receive the
	// event before the change is applied, listeners after. Events re-emitted
	// by undo or redo report Replayed() == true.
	Event interface {
		Replayed() bool
		reverse() Event
		replay() Event
	}

	SizeChanged struct {
		replayFlag
		Old, New int
	}

	// ItemsAdded is emitted when items, sections included, are inserted.
	ItemsAdded struct {
		replayFlag
		Items []*Item
	}

	// ItemsRemoved is emitted when items are removed. The removed items keep
	// the position they had before removal.
	ItemsRemoved struct {
		replayFlag
		Items []*Item
	}

	// ItemChanged is emitted when the data of an item changes, including the
	// renaming and time signature changes of sections.
	ItemChanged struct {
		replayFlag
		Item     *Item
		Old, New jamsheet.ItemData
	}

	// ItemsMoved is emitted when items other than sections change position
	// within the leadsheet, either by the user or by remapping.
	ItemsMoved struct {
		replayFlag
		Moves []Move
	}

	Move struct {
		Item     *Item
		Old, New jamsheet.Position
	}

	// SectionMoved is emitted when a section moves to another bar.
	SectionMoved struct {
		replayFlag
		Section        *Item
		OldBar, NewBar int
	}

	// ItemsBarShifted is emitted when bars are inserted or deleted and the
	// items after them shift by Delta bars.
	ItemsBarShifted struct {
		replayFlag
		Items []*Item
		Delta int
	}

	// ActionStarted and ActionCompleted delimit the events of a composite
	// operation.
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

func (e SizeChanged) reverse() Event { return SizeChanged{replayFlag{true}, e.New, e.Old} }
func (e SizeChanged) replay() Event  { e.replayed = true; return e }

func (e ItemsAdded) reverse() Event { return ItemsRemoved{replayFlag{true}, e.Items} }
func (e ItemsAdded) replay() Event  { e.replayed = true; return e }

func (e ItemsRemoved) reverse() Event { return ItemsAdded{replayFlag{true}, e.Items} }
func (e ItemsRemoved) replay() Event  { e.replayed = true; return e }

func (e ItemChanged) reverse() Event { return ItemChanged{replayFlag{true}, e.Item, e.New, e.Old} }
func (e ItemChanged) replay() Event  { e.replayed = true; return e }

func (e ItemsMoved) reverse() Event {
	moves := make([]Move, len(e.Moves))
	for i, m := range e.Moves {
		moves[i] = Move{Item: m.Item, Old: m.New, New: m.Old}
	}
	return ItemsMoved{replayFlag{true}, moves}
}
func (e ItemsMoved) replay() Event { e.replayed = true; return e }

func (e SectionMoved) reverse() Event {
	return SectionMoved{replayFlag{true}, e.Section, e.NewBar, e.OldBar}
}
func (e SectionMoved) replay() Event { e.replayed = true; return e }

func (e ItemsBarShifted) reverse() Event { return ItemsBarShifted{replayFlag{true}, e.Items, -e.Delta} }
func (e ItemsBarShifted) replay() Event  { e.replayed = true; return e }

func (e ActionStarted) reverse() Event { return ActionCompleted{replayFlag{true}, e.Name} }
func (e ActionStarted) replay() Event  { e.replayed = true; return e }

func (e ActionCompleted) reverse() Event { return ActionStarted{replayFlag{true}, e.Name} }
func (e ActionCompleted) replay() Event  { e.replayed = true; return e }

// Sections returns the sections among the added items.
func (e ItemsAdded) Sections() []*Item { return sections(e.Items) }

// Sections returns the sections among the removed items.
func (e ItemsRemoved) Sections() []*Item { return sections(e.Items) }

// Sections returns the sections among the shifted items.
func (e ItemsBarShifted) Sections() []*Item { return sections(e.Items) }

// IsSection reports if the changed item is a section.
func (e ItemChanged) IsSection() bool { return e.Item.IsSection() }

func sections(items []*Item) (ret []*Item) {
	for _, it := range items {
		if it.IsSection() {
			ret = append(ret, it)
		}
	}
	return
}
