package sheet

import (
	"fmt"
	"reflect"

	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
)

// SetSize changes the number of bars. When shrinking, the items at or beyond
// the new size are removed first.
func (ls *Leadsheet) SetSize(n int) error {
	if n < 1 || n > ls.maxSize {
		return edit.Preconditionf("size %d not in [1,%d]", n, ls.maxSize)
	}
	if n == ls.size {
		return nil
	}
	defer ls.action("set size")()
	if n < ls.size {
		if doomed := ls.items.inBars(n, ls.size); len(doomed) > 0 {
			if err := ls.removeItems("remove items", doomed); err != nil {
				return err
			}
		}
	}
	return ls.setSize(n)
}

// AddItem adds a chord symbol or an annotation. The beat is snapped to the
// time signature of the bar. Adding over an equal item does nothing.
func (ls *Leadsheet) AddItem(it *Item) error {
	if err := ls.checkNew(it); err != nil {
		return err
	}
	if it.IsSection() {
		return edit.Preconditionf("use AddSection to add section %v", it)
	}
	pos := it.pos.Adjusted(ls.timeSignatureAt(it.pos.Bar))
	if ls.items.at(itemKey{pos, it.Kind()}) != nil {
		return nil
	}
	return ls.addItemAt("add item", it, pos)
}

// RemoveItem removes an item. Sections are removed as in RemoveSection.
func (ls *Leadsheet) RemoveItem(it *Item) error {
	if !ls.items.contains(it) {
		return edit.Preconditionf("item %v is not in the leadsheet", it)
	}
	if it.IsSection() {
		return ls.RemoveSection(it)
	}
	return ls.removeItems("remove item", []*Item{it})
}

// RemoveItems removes several chord symbols and annotations as one change.
func (ls *Leadsheet) RemoveItems(items []*Item) error {
	for _, it := range items {
		if !ls.items.contains(it) {
			return edit.Preconditionf("item %v is not in the leadsheet", it)
		}
		if it.IsSection() {
			return edit.Preconditionf("use RemoveSection to remove section %v", it)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return ls.removeItems("remove items", items)
}

// MoveItem moves a chord symbol or an annotation; sections are moved as in
// MoveSection. If an equal item already sits at the destination, nothing
// happens.
func (ls *Leadsheet) MoveItem(it *Item, pos jamsheet.Position) error {
	if !ls.items.contains(it) {
		return edit.Preconditionf("item %v is not in the leadsheet", it)
	}
	if pos.Bar < 0 || pos.Bar >= ls.size {
		return edit.Preconditionf("bar %d not in [0,%d)", pos.Bar, ls.size)
	}
	if it.IsSection() {
		return ls.MoveSection(it, pos.Bar)
	}
	pos = pos.Adjusted(ls.timeSignatureAt(pos.Bar))
	if pos == it.pos || ls.items.at(itemKey{pos, it.Kind()}) != nil {
		return nil
	}
	return ls.moveItems("move item", []Move{{Item: it, Old: it.pos, New: pos}})
}

// ChangeItem replaces the data of an item with data of the same kind. For
// sections, this renames the section and changes its time signature as in
// SetSectionName and SetSectionTimeSignature.
func (ls *Leadsheet) ChangeItem(it *Item, data jamsheet.ItemData) error {
	if !ls.items.contains(it) {
		return edit.Preconditionf("item %v is not in the leadsheet", it)
	}
	if data == nil || data.Kind() != it.Kind() {
		return edit.Preconditionf("cannot change %v to %v", it, data)
	}
	if err := data.Validate(); err != nil {
		return fmt.Errorf("%w: %w", edit.ErrPrecondition, err)
	}
	if s, ok := data.(jamsheet.Section); ok {
		return ls.changeSection(it, s)
	}
	if reflect.DeepEqual(data, it.data) {
		return nil
	}
	return ls.changeData("change item", it, data)
}

func (ls *Leadsheet) checkNew(it *Item) error {
	if it == nil || it.data == nil {
		return edit.Preconditionf("nil item")
	}
	if ls.items.contains(it) {
		return edit.Preconditionf("item %v is already in the leadsheet", it)
	}
	if it.pos.Bar < 0 || it.pos.Bar >= ls.size {
		return edit.Preconditionf("bar %d not in [0,%d)", it.pos.Bar, ls.size)
	}
	if err := it.data.Validate(); err != nil {
		return fmt.Errorf("%w: %w", edit.ErrPrecondition, err)
	}
	return nil
}

// The primitives below each make one recorded change.

func (ls *Leadsheet) setSize(n int) error {
	return ls.commit("set size", SizeChanged{Old: ls.size, New: n}, n, nil)
}

func (ls *Leadsheet) addItems(name string, items []*Item) error {
	states := make([]itemState, len(items))
	for i, it := range items {
		states[i] = itemState{item: it, pos: it.pos, data: it.data, present: true}
	}
	return ls.commit(name, ItemsAdded{Items: items}, ls.size, states)
}

// addItemAt adds it at pos. The item keeps its old position if it is not
// added.
func (ls *Leadsheet) addItemAt(name string, it *Item, pos jamsheet.Position) error {
	old := it.pos
	it.pos = pos
	err := ls.addItems(name, []*Item{it})
	if err != nil && !ls.Contains(it) {
		it.pos = old
	}
	return err
}

func (ls *Leadsheet) removeItems(name string, items []*Item) error {
	states := make([]itemState, len(items))
	for i, it := range items {
		states[i] = itemState{item: it, pos: it.pos, data: it.data}
	}
	return ls.commit(name, ItemsRemoved{Items: items}, ls.size, states)
}

func (ls *Leadsheet) moveItems(name string, moves []Move) error {
	states := make([]itemState, len(moves))
	for i, m := range moves {
		states[i] = itemState{item: m.Item, pos: m.New, data: m.Item.data, present: true}
	}
	return ls.commit(name, ItemsMoved{Moves: moves}, ls.size, states)
}

func (ls *Leadsheet) changeData(name string, it *Item, data jamsheet.ItemData) error {
	ev := ItemChanged{Item: it, Old: it.data, New: data}
	return ls.commit(name, ev, ls.size, []itemState{{item: it, pos: it.pos, data: data, present: true}})
}

func (ls *Leadsheet) shiftItems(items []*Item, delta int) error {
	states := make([]itemState, len(items))
	for i, it := range items {
		states[i] = itemState{item: it, pos: jamsheet.Position{Bar: it.pos.Bar + delta, Beat: it.pos.Beat}, data: it.data, present: true}
	}
	return ls.commit("shift items", ItemsBarShifted{Items: items, Delta: delta}, ls.size, states)
}
