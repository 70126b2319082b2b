package sheet

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
)

// AddSection adds a new section at the start of its bar. The items governed
// by the new section are remapped to its time signature first. If there
// already is a section at that bar, that section is renamed and its time
// signature changed instead, and it is not added.
func (ls *Leadsheet) AddSection(it *Item) error {
	if err := ls.checkNew(it); err != nil {
		return err
	}
	s, ok := it.Section()
	if !ok {
		return edit.Preconditionf("item %v is not a section", it)
	}
	if existing := ls.sectionAt(it.pos.Bar); existing != nil {
		return ls.changeSection(existing, s)
	}
	if other := ls.sectionByName(s.Name); other != nil {
		return edit.Preconditionf("section name %q already used at bar %d", s.Name, other.pos.Bar)
	}
	defer ls.action("add section")()
	end := ls.size
	if next := ls.nextSection(it.pos.Bar); next != nil {
		end = next.pos.Bar
	}
	if err := ls.remap(it.pos.Bar, end, s.TimeSignature); err != nil {
		return err
	}
	return ls.addItemAt("add section", it, jamsheet.Position{Bar: it.pos.Bar})
}

// RemoveSection removes a section other than the one at bar 0. The items it
// governed are remapped to the time signature of the preceding section.
func (ls *Leadsheet) RemoveSection(it *Item) error {
	if err := ls.checkSection(it); err != nil {
		return err
	}
	if it.pos.Bar == 0 {
		return edit.Preconditionf("the section at bar 0 cannot be removed")
	}
	defer ls.action("remove section")()
	start, end := ls.sectionRange(it)
	if err := ls.remap(start, end, ls.timeSignatureAt(start-1)); err != nil {
		return err
	}
	return ls.removeItems("remove section", []*Item{it})
}

// MoveSection moves a section other than the one at bar 0 to the start of an
// empty bar. The items whose governing section changes are remapped: first
// the ones at the destination, then the ones left behind.
func (ls *Leadsheet) MoveSection(it *Item, bar int) error {
	if err := ls.checkSection(it); err != nil {
		return err
	}
	oldBar := it.pos.Bar
	if oldBar == 0 {
		return edit.Preconditionf("the section at bar 0 cannot be moved")
	}
	if bar < 1 || bar >= ls.size {
		return edit.Preconditionf("bar %d not in [1,%d)", bar, ls.size)
	}
	if bar == oldBar {
		return nil
	}
	if other := ls.sectionAt(bar); other != nil {
		return edit.Preconditionf("bar %d already has section %v", bar, other)
	}
	defer ls.action("move section")()
	s := it.data.(jamsheet.Section)
	if err := ls.remap(bar, ls.nextSectionExcept(bar, it), s.TimeSignature); err != nil {
		return err
	}
	originEnd := ls.nextSectionExcept(oldBar, it)
	if bar > oldBar && bar < originEnd {
		originEnd = bar
	}
	ts := s.TimeSignature
	if gov := ls.sectionForExcept(oldBar, it); gov != nil && (bar > oldBar || gov.pos.Bar >= bar) {
		ts = gov.data.(jamsheet.Section).TimeSignature
	}
	if err := ls.remap(oldBar, originEnd, ts); err != nil {
		return err
	}
	ev := SectionMoved{Section: it, OldBar: oldBar, NewBar: bar}
	return ls.commit("move section", ev, ls.size, []itemState{{item: it, pos: jamsheet.Position{Bar: bar}, data: it.data, present: true}})
}

// SetSectionName renames a section. Names are unique within a leadsheet.
func (ls *Leadsheet) SetSectionName(it *Item, name string) error {
	if err := ls.checkSection(it); err != nil {
		return err
	}
	s := it.data.(jamsheet.Section)
	s.Name = name
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", edit.ErrPrecondition, err)
	}
	return ls.changeSection(it, s)
}

// SetSectionTimeSignature changes the time signature of a section, remapping
// the items it governs.
func (ls *Leadsheet) SetSectionTimeSignature(it *Item, ts jamsheet.TimeSignature) error {
	if err := ls.checkSection(it); err != nil {
		return err
	}
	s := it.data.(jamsheet.Section)
	s.TimeSignature = ts
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", edit.ErrPrecondition, err)
	}
	return ls.changeSection(it, s)
}

func (ls *Leadsheet) changeSection(it *Item, s jamsheet.Section) error {
	old := it.data.(jamsheet.Section)
	if old == s {
		return nil
	}
	if other := ls.sectionByName(s.Name); other != nil && other != it {
		return edit.Preconditionf("section name %q already used at bar %d", s.Name, other.pos.Bar)
	}
	defer ls.action("change section")()
	if old.TimeSignature != s.TimeSignature {
		start, end := ls.sectionRange(it)
		if err := ls.remap(start, end, s.TimeSignature); err != nil {
			return err
		}
	}
	return ls.changeData("change section", it, s)
}

func (ls *Leadsheet) checkSection(it *Item) error {
	if it == nil || !ls.items.contains(it) {
		return edit.Preconditionf("item %v is not in the leadsheet", it)
	}
	if !it.IsSection() {
		return edit.Preconditionf("item %v is not a section", it)
	}
	return nil
}

// nextSectionExcept returns the bar of the first section after bar other
// than skip, or the size if there is none.
func (ls *Leadsheet) nextSectionExcept(bar int, skip *Item) int {
	for _, it := range ls.items.inBars(bar+1, ls.size) {
		if it.IsSection() && it != skip {
			return it.pos.Bar
		}
	}
	return ls.size
}

func (ls *Leadsheet) sectionForExcept(bar int, skip *Item) *Item {
	var ret *Item
	for _, it := range ls.items.inBars(0, bar) {
		if it.IsSection() && it != skip {
			ret = it
		}
	}
	return ret
}

// remap converts the positions of the chord symbols and annotations in bars
// [from, to) from the time signature currently governing them to ts. An item
// whose converted position is already taken by an equal item is removed.
func (ls *Leadsheet) remap(from, to int, ts jamsheet.TimeSignature) error {
	type target struct {
		item *Item
		pos  jamsheet.Position
	}
	var targets []target
	batch := map[*Item]bool{}
	taken := map[itemKey]bool{}
	for _, it := range ls.items.inBars(from, to-1) {
		if it.IsSection() {
			continue
		}
		pos := it.pos.Converted(ls.timeSignatureAt(it.pos.Bar), ts)
		if !pos.Valid(ts) {
			pos = pos.Adjusted(ts)
		}
		if pos == it.pos {
			taken[it.key()] = true
			continue
		}
		batch[it] = true
		targets = append(targets, target{it, pos})
	}
	if len(targets) == 0 {
		return nil
	}
	var moves []Move
	var dropped []*Item
	for _, t := range targets {
		k := itemKey{t.pos, t.item.Kind()}
		if other := ls.items.at(k); taken[k] || (other != nil && !batch[other]) {
			glog.V(1).Infof("remap to %v: %v collides at %v and is removed", ts, t.item, t.pos)
			dropped = append(dropped, t.item)
			continue
		}
		taken[k] = true
		moves = append(moves, Move{Item: t.item, Old: t.item.pos, New: t.pos})
	}
	if len(dropped) > 0 {
		if err := ls.removeItems("remap", dropped); err != nil {
			return err
		}
	}
	if len(moves) == 0 {
		return nil
	}
	return ls.moveItems("remap", moves)
}
