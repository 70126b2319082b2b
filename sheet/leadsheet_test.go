package sheet_test

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
	"github.com/vsariola/jamsheet/sheet"
)

func newSheet(t *testing.T, size int) (*sheet.Leadsheet, *edit.History) {
	t.Helper()
	ls, err := sheet.New(jamsheet.Section{Name: "A", TimeSignature: jamsheet.FourFour}, size, 64)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h := edit.NewHistory(100)
	ls.AddEditSink(h)
	return ls, h
}

func do(t *testing.T, h *edit.History, name string, fn func() error) {
	t.Helper()
	if err := h.Do(name, fn); err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
}

func pos(bar int, beat float64) jamsheet.Position {
	return jamsheet.Position{Bar: bar, Beat: beat}
}

// checkOrdered fails if two items share a position and a kind, or if they
// are out of order.
func checkOrdered(t *testing.T, ls *sheet.Leadsheet) {
	t.Helper()
	items := ls.Items()
	for i := 1; i < len(items); i++ {
		a, b := items[i-1], items[i]
		c := a.Position().Compare(b.Position())
		if c > 0 || (c == 0 && a.Kind() >= b.Kind()) {
			t.Fatalf("items %v and %v are not strictly ordered", a, b)
		}
	}
	if s := ls.SectionAt(0); s == nil {
		t.Fatal("no section at bar 0")
	}
}

func TestNew(t *testing.T) {
	_, err := sheet.New(jamsheet.Section{Name: "A", TimeSignature: jamsheet.FourFour}, 0, 10)
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	_, err = sheet.New(jamsheet.Section{Name: "A", TimeSignature: jamsheet.TimeSignature{Upper: 11, Lower: 16}}, 4, 10)
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	ls, err := sheet.New(jamsheet.Section{Name: "A", TimeSignature: jamsheet.ThreeFour}, 4, 0)
	assert.Equal(t, err, nil)
	assert.Equal(t, ls.MaxSize(), sheet.DefaultMaxSize)
	assert.Equal(t, ls.TimeSignatureAt(3), jamsheet.ThreeFour)
}

func TestAddItemSnapsAndIgnoresDuplicates(t *testing.T) {
	ls, h := newSheet(t, 4)
	do(t, h, "add", func() error { return ls.AddItem(sheet.NewChord(pos(1, 7), "C")) })
	do(t, h, "add", func() error { return ls.AddItem(sheet.NewChord(pos(1, 3), "D")) })
	do(t, h, "add", func() error { return ls.AddItem(sheet.NewAnnotation(pos(1, 3), "fine")) })
	items := ls.ItemsInBars(1, 1)
	assert.Equal(t, len(items), 2)
	assert.Equal(t, items[0].Position(), pos(1, 3))
	assert.Equal(t, items[0].Data(), jamsheet.ChordSymbol{Chord: "C"})
	assert.Equal(t, items[1].Kind(), jamsheet.AnnotationKind)
	checkOrdered(t, ls)
}

func TestAddItemPreconditions(t *testing.T) {
	ls, _ := newSheet(t, 4)
	err := ls.AddItem(sheet.NewChord(pos(4, 0), "C"))
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	err = ls.AddItem(sheet.NewSection(2, "B", jamsheet.FourFour))
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	err = ls.AddItem(sheet.NewChord(pos(1, 0), ""))
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	assert.Equal(t, len(ls.Items()), 1)
}

func TestAuthorizerVetoMutatesNothing(t *testing.T) {
	ls, h := newSheet(t, 4)
	ls.AddAuthorizer(sheet.AuthorizerFunc(func(ev sheet.Event) error {
		if _, ok := ev.(sheet.ItemsAdded); ok {
			return edit.Veto("no new items")
		}
		return nil
	}))
	err := ls.AddItem(sheet.NewChord(pos(1, 0), "C"))
	assert.Equal(t, edit.IsVeto(err), true)
	assert.Equal(t, len(ls.Items()), 1)
	assert.Equal(t, h.CanUndo(), false)
}

func TestRejectedAddKeepsItemPosition(t *testing.T) {
	ls, h := newSheet(t, 4)
	do(t, h, "add", func() error { return ls.AddItem(sheet.NewChord(pos(1, 3), "C")) })
	dup := sheet.NewChord(pos(1, 7), "C")
	assert.Equal(t, ls.AddItem(dup), nil)
	assert.Equal(t, dup.Position(), pos(1, 7))
	assert.Equal(t, ls.Contains(dup), false)

	ls.AddAuthorizer(sheet.AuthorizerFunc(func(ev sheet.Event) error {
		if _, ok := ev.(sheet.ItemsAdded); ok {
			return edit.Veto("no new items")
		}
		return nil
	}))
	chord := sheet.NewChord(pos(2, 9), "D")
	assert.Equal(t, edit.IsVeto(ls.AddItem(chord)), true)
	assert.Equal(t, chord.Position(), pos(2, 9))
	sec := sheet.NewItem(pos(2, 1.5), jamsheet.Section{Name: "B", TimeSignature: jamsheet.ThreeFour})
	assert.Equal(t, edit.IsVeto(ls.AddSection(sec)), true)
	assert.Equal(t, sec.Position(), pos(2, 1.5))
	assert.Equal(t, len(ls.Sections()), 1)
}

func TestListenerErrorsAreJoined(t *testing.T) {
	ls, h := newSheet(t, 4)
	e1, e2 := errors.New("one"), errors.New("two")
	ls.AddListener(sheet.ListenerFunc(func(sheet.Event) error { return e1 }))
	ls.AddListener(sheet.ListenerFunc(func(sheet.Event) error { return e2 }))
	err := ls.AddItem(sheet.NewChord(pos(1, 0), "C"))
	assert.Equal(t, errors.Is(err, e1), true)
	assert.Equal(t, errors.Is(err, e2), true)
	// the change happened and was recorded before the listeners ran
	assert.Equal(t, len(ls.Items()), 2)
	assert.Equal(t, h.CanUndo(), true)
	h.Undo()
	assert.Equal(t, len(ls.Items()), 1)
}

func TestMoveAndChangeItem(t *testing.T) {
	ls, h := newSheet(t, 4)
	c := sheet.NewChord(pos(0, 1), "C")
	do(t, h, "add", func() error { return ls.AddItem(c) })
	do(t, h, "move", func() error { return ls.MoveItem(c, pos(2, 2.5)) })
	assert.Equal(t, c.Position(), pos(2, 2.5))
	do(t, h, "change", func() error { return ls.ChangeItem(c, jamsheet.ChordSymbol{Chord: "Am7"}) })
	assert.Equal(t, c.Data(), jamsheet.ChordSymbol{Chord: "Am7"})
	err := ls.ChangeItem(c, jamsheet.Annotation{Text: "x"})
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	h.Undo()
	h.Undo()
	assert.Equal(t, c.Position(), pos(0, 1))
	assert.Equal(t, c.Data(), jamsheet.ChordSymbol{Chord: "C"})
	h.Redo()
	assert.Equal(t, c.Position(), pos(2, 2.5))
}

func TestSetSizeRemovesItemsBeyond(t *testing.T) {
	ls, h := newSheet(t, 8)
	do(t, h, "add", func() error { return ls.AddSection(sheet.NewSection(6, "B", jamsheet.FourFour)) })
	do(t, h, "add", func() error { return ls.AddItem(sheet.NewChord(pos(5, 0), "C")) })
	do(t, h, "add", func() error { return ls.AddItem(sheet.NewChord(pos(7, 0), "D")) })
	before := ls.Snapshot()
	do(t, h, "shrink", func() error { return ls.SetSize(6) })
	assert.Equal(t, ls.Size(), 6)
	assert.Equal(t, len(ls.Sections()), 1)
	assert.Equal(t, len(ls.ItemsInBars(5, 5)), 1)
	h.Undo()
	assert.Equal(t, ls.Snapshot(), before)
}

func TestActionEvents(t *testing.T) {
	ls, h := newSheet(t, 4)
	var started, completed int
	ls.AddListener(sheet.ListenerFunc(func(ev sheet.Event) error {
		switch ev.(type) {
		case sheet.ActionStarted:
			started++
			if name, ok := ls.ActiveAction(); !ok || name != "insert bars" {
				t.Errorf("active action %q, %v", name, ok)
			}
		case sheet.ActionCompleted:
			completed++
		}
		return nil
	}))
	do(t, h, "insert", func() error { return ls.InsertBars(0, 2) })
	assert.Equal(t, started, 1)
	assert.Equal(t, completed, 1)
	_, ok := ls.ActiveAction()
	assert.Equal(t, ok, false)
}

func TestReplayedEvents(t *testing.T) {
	ls, h := newSheet(t, 4)
	var replayed []sheet.Event
	ls.AddListener(sheet.ListenerFunc(func(ev sheet.Event) error {
		if ev.Replayed() {
			replayed = append(replayed, ev)
		}
		return nil
	}))
	do(t, h, "add", func() error { return ls.AddItem(sheet.NewChord(pos(1, 0), "C")) })
	assert.Equal(t, len(replayed), 0)
	h.Undo()
	assert.Equal(t, len(replayed), 1)
	_, ok := replayed[0].(sheet.ItemsRemoved)
	assert.Equal(t, ok, true)
	h.Redo()
	_, ok = replayed[1].(sheet.ItemsAdded)
	assert.Equal(t, ok, true)
}
