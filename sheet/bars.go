package sheet

import (
	"strconv"

	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
)

// InsertBars inserts count empty bars before bar at; at == Size() appends.
// The inserted bars belong to the section governing bar at - 1. When
// inserting at bar 0, the section at bar 0 gets a new unique name and moves
// along with the other items, and a new section with its original name and
// time signature starts the leadsheet.
func (ls *Leadsheet) InsertBars(at, count int) error {
	if count < 1 {
		return edit.Preconditionf("cannot insert %d bars", count)
	}
	if at < 0 || at > ls.size {
		return edit.Preconditionf("bar %d not in [0,%d]", at, ls.size)
	}
	if ls.size+count > ls.maxSize {
		return edit.Preconditionf("size %d exceeds the maximum %d", ls.size+count, ls.maxSize)
	}
	defer ls.action("insert bars")()
	if err := ls.setSize(ls.size + count); err != nil {
		return err
	}
	var first *Item
	var orig jamsheet.Section
	if at == 0 {
		first = ls.sectionAt(0)
		orig = first.data.(jamsheet.Section)
		renamed := orig
		renamed.Name = ls.uniqueName(orig.Name)
		if err := ls.changeSection(first, renamed); err != nil {
			return err
		}
	}
	if shifted := ls.items.inBars(at, ls.size); len(shifted) > 0 {
		if err := ls.shiftItems(shifted, count); err != nil {
			return err
		}
	}
	if first != nil {
		return ls.addItems("add section", []*Item{{data: orig}})
	}
	return nil
}

// DeleteBars deletes the bars [from, to]. The items in them are removed,
// the later items shift back and the leadsheet shrinks. When deleting from
// bar 0 and a section starts right after the deleted bars, that section is
// removed and the section at bar 0 takes its name and time signature.
func (ls *Leadsheet) DeleteBars(from, to int) error {
	if from < 0 || to < from || to >= ls.size {
		return edit.Preconditionf("bars [%d,%d] not in [0,%d)", from, to, ls.size)
	}
	count := to - from + 1
	if count >= ls.size {
		return edit.Preconditionf("cannot delete all %d bars", ls.size)
	}
	defer ls.action("delete bars")()
	var doomed, sections []*Item
	for _, it := range ls.items.inBars(from, to) {
		switch {
		case it.pos.Bar == 0 && it.IsSection():
		case it.IsSection():
			sections = append(sections, it)
		default:
			doomed = append(doomed, it)
		}
	}
	if len(doomed) > 0 {
		if err := ls.removeItems("delete bars", doomed); err != nil {
			return err
		}
	}
	for _, s := range sections {
		if err := ls.RemoveSection(s); err != nil {
			return err
		}
	}
	if from == 0 {
		if next := ls.sectionAt(to + 1); next != nil {
			data := next.data.(jamsheet.Section)
			if err := ls.RemoveSection(next); err != nil {
				return err
			}
			if err := ls.changeSection(ls.sectionAt(0), data); err != nil {
				return err
			}
		}
	}
	if shifted := ls.items.inBars(to+1, ls.size); len(shifted) > 0 {
		if err := ls.shiftItems(shifted, -count); err != nil {
			return err
		}
	}
	return ls.setSize(ls.size - count)
}

// uniqueName derives a section name not in use from base.
func (ls *Leadsheet) uniqueName(base string) string {
	for i := 1; ; i++ {
		if name := base + "_" + strconv.Itoa(i); ls.sectionByName(name) == nil {
			return name
		}
	}
}
