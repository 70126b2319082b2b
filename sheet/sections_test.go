package sheet_test

import (
	"errors"
	"math"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
	"github.com/vsariola/jamsheet/sheet"
)

func TestAddSectionRemapsGovernedItems(t *testing.T) {
	ls, h := newSheet(t, 8)
	chord := sheet.NewChord(pos(5, 3.5), "G7")
	early := sheet.NewChord(pos(3, 3.5), "D7")
	do(t, h, "add", func() error { return ls.AddItem(chord) })
	do(t, h, "add", func() error { return ls.AddItem(early) })
	before := ls.Snapshot()
	ls.AddListener(sheet.ListenerFunc(func(ev sheet.Event) error {
		if e, ok := ev.(sheet.ItemsAdded); ok && len(e.Sections()) > 0 {
			for _, it := range ls.ItemsInBars(4, 7) {
				if !it.Position().Valid(ls.TimeSignatureAt(it.Bar())) {
					t.Errorf("%v is not valid when the section is added", it)
				}
			}
		}
		return nil
	}))
	sec := sheet.NewSection(4, "B", jamsheet.ThreeFour)
	do(t, h, "add section", func() error { return ls.AddSection(sec) })
	assert.Equal(t, chord.Position(), pos(5, 2.625))
	assert.Equal(t, early.Position(), pos(3, 3.5))
	assert.Equal(t, ls.SectionFor(5) == sec, true)
	assert.Equal(t, ls.TimeSignatureAt(7), jamsheet.ThreeFour)
	checkOrdered(t, ls)
	h.Undo()
	assert.Equal(t, ls.Snapshot(), before)
}

func TestAddSectionAtExistingSectionChangesIt(t *testing.T) {
	ls, h := newSheet(t, 8)
	first := ls.SectionAt(0)
	do(t, h, "add section", func() error { return ls.AddSection(sheet.NewSection(0, "Intro", jamsheet.SixEight)) })
	assert.Equal(t, len(ls.Sections()), 1)
	s, _ := first.Section()
	assert.Equal(t, s, jamsheet.Section{Name: "Intro", TimeSignature: jamsheet.SixEight})
}

func TestAddSectionPutsSectionAtBarStart(t *testing.T) {
	ls, h := newSheet(t, 8)
	sec := sheet.NewItem(pos(2, 1.5), jamsheet.Section{Name: "B", TimeSignature: jamsheet.FourFour})
	do(t, h, "add section", func() error { return ls.AddSection(sec) })
	assert.Equal(t, sec.Position(), pos(2, 0))
	assert.Equal(t, ls.SectionAt(2) == sec, true)
}

func TestRemapDropsCollidingItems(t *testing.T) {
	ls, h := newSheet(t, 4)
	// two beats one float step apart that scale to the same beat
	b1 := math.Nextafter(math.Nextafter(1.5, 2), 2)
	b2 := math.Nextafter(b1, 2)
	if b1*3/4 != b2*3/4 {
		t.Fatalf("beats %v and %v do not collide in 3/4", b1, b2)
	}
	first := sheet.NewChord(pos(1, b1), "C")
	second := sheet.NewChord(pos(1, b2), "G")
	do(t, h, "add", func() error { return ls.AddItem(first) })
	do(t, h, "add", func() error { return ls.AddItem(second) })
	before := ls.Snapshot()
	do(t, h, "3/4", func() error { return ls.SetSectionTimeSignature(ls.SectionAt(0), jamsheet.ThreeFour) })
	assert.Equal(t, ls.ItemsInBars(1, 1), []*sheet.Item{first})
	assert.Equal(t, first.Position(), pos(1, b1*3/4))
	assert.Equal(t, ls.Contains(second), false)
	checkOrdered(t, ls)
	h.Undo()
	assert.Equal(t, ls.Snapshot(), before)
}

func TestSectionNamesAreUnique(t *testing.T) {
	ls, h := newSheet(t, 8)
	do(t, h, "add section", func() error { return ls.AddSection(sheet.NewSection(4, "B", jamsheet.FourFour)) })
	err := ls.AddSection(sheet.NewSection(6, "A", jamsheet.FourFour))
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	err = ls.SetSectionName(ls.SectionAt(4), "A")
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	assert.Equal(t, len(ls.Sections()), 2)
}

func TestRemapIdempotence(t *testing.T) {
	ls, h := newSheet(t, 4)
	var chords []*sheet.Item
	for bar, beat := range []float64{0, 1.5, 2, 3.5} {
		c := sheet.NewChord(pos(bar, beat), "C")
		chords = append(chords, c)
		do(t, h, "add", func() error { return ls.AddItem(c) })
	}
	before := ls.Snapshot()
	first := ls.SectionAt(0)
	do(t, h, "3/4", func() error { return ls.SetSectionTimeSignature(first, jamsheet.ThreeFour) })
	assert.Equal(t, chords[3].Position(), pos(3, 2.625))
	do(t, h, "4/4", func() error { return ls.SetSectionTimeSignature(first, jamsheet.FourFour) })
	assert.Equal(t, ls.Snapshot(), before)
}

func TestRemoveSection(t *testing.T) {
	ls, h := newSheet(t, 8)
	sec := sheet.NewSection(4, "B", jamsheet.ThreeFour)
	do(t, h, "add section", func() error { return ls.AddSection(sec) })
	chord := sheet.NewChord(pos(6, 1.5), "C")
	do(t, h, "add", func() error { return ls.AddItem(chord) })
	before := ls.Snapshot()
	err := ls.RemoveSection(ls.SectionAt(0))
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
	do(t, h, "remove section", func() error { return ls.RemoveItem(sec) })
	assert.Equal(t, len(ls.Sections()), 1)
	assert.Equal(t, chord.Position(), pos(6, 2))
	h.Undo()
	assert.Equal(t, ls.Snapshot(), before)
}

func TestMoveSection(t *testing.T) {
	ls, h := newSheet(t, 8)
	sec := sheet.NewSection(4, "B", jamsheet.ThreeFour)
	do(t, h, "add section", func() error { return ls.AddSection(sec) })
	chord := sheet.NewChord(pos(2, 3), "C")
	do(t, h, "add", func() error { return ls.AddItem(chord) })
	before := ls.Snapshot()
	do(t, h, "move", func() error { return ls.MoveSection(sec, 2) })
	assert.Equal(t, sec.Bar(), 2)
	assert.Equal(t, chord.Position(), pos(2, 2.25))
	assert.Equal(t, ls.TimeSignatureAt(3), jamsheet.ThreeFour)
	do(t, h, "move", func() error { return ls.MoveSection(sec, 6) })
	assert.Equal(t, chord.Position(), pos(2, 3))
	assert.Equal(t, ls.TimeSignatureAt(5), jamsheet.FourFour)
	checkOrdered(t, ls)
	h.Undo()
	h.Undo()
	assert.Equal(t, ls.Snapshot(), before)
	err := ls.MoveSection(ls.SectionAt(0), 3)
	assert.Equal(t, errors.Is(err, edit.ErrPrecondition), true)
}

func TestMoveSectionPastAnother(t *testing.T) {
	ls, h := newSheet(t, 12)
	b := sheet.NewSection(4, "B", jamsheet.ThreeFour)
	c := sheet.NewSection(8, "C", jamsheet.SixEight)
	do(t, h, "add section", func() error { return ls.AddSection(b) })
	do(t, h, "add section", func() error { return ls.AddSection(c) })
	chord := sheet.NewChord(pos(5, 1.5), "C")
	do(t, h, "add", func() error { return ls.AddItem(chord) })
	before := ls.Snapshot()
	do(t, h, "move", func() error { return ls.MoveSection(b, 10) })
	// bar 5 now belongs to A, in 4/4
	assert.Equal(t, chord.Position(), pos(5, 2))
	assert.Equal(t, ls.TimeSignatureAt(9), jamsheet.SixEight)
	assert.Equal(t, ls.TimeSignatureAt(11), jamsheet.ThreeFour)
	names := []string{}
	for _, s := range ls.Sections() {
		d, _ := s.Section()
		names = append(names, d.Name)
	}
	assert.Equal(t, names, []string{"A", "C", "B"})
	h.Undo()
	assert.Equal(t, ls.Snapshot(), before)
}
