package sheet

import (
	"fmt"

	"github.com/vsariola/jamsheet"
	"golang.org/x/exp/slices"
)

// Item is an element placed on a leadsheet. Items have identity: the same
// *Item stays in the leadsheet when it is moved or its data changes, and undo
// puts back the very same *Item that was removed. The position and data of an
// item in a leadsheet change only through the operations of the leadsheet,
// which also means they should be read from the goroutine that edits the
// leadsheet; other goroutines should use Leadsheet.Snapshot.
type Item struct {
	pos  jamsheet.Position
	data jamsheet.ItemData
}

func NewItem(pos jamsheet.Position, data jamsheet.ItemData) *Item {
	return &Item{pos: pos, data: data}
}

// NewSection returns a new section item at the start of bar.
func NewSection(bar int, name string, ts jamsheet.TimeSignature) *Item {
	return &Item{pos: jamsheet.Position{Bar: bar}, data: jamsheet.Section{Name: name, TimeSignature: ts}}
}

func NewChord(pos jamsheet.Position, chord string) *Item {
	return &Item{pos: pos, data: jamsheet.ChordSymbol{Chord: chord}}
}

func NewAnnotation(pos jamsheet.Position, text string) *Item {
	return &Item{pos: pos, data: jamsheet.Annotation{Text: text}}
}

func (it *Item) Position() jamsheet.Position { return it.pos }
func (it *Item) Bar() int                    { return it.pos.Bar }
func (it *Item) Data() jamsheet.ItemData     { return it.data }
func (it *Item) Kind() jamsheet.ItemKind     { return it.data.Kind() }
func (it *Item) IsSection() bool             { return it.data.Kind() == jamsheet.SectionKind }

// Section returns the section data of the item; ok is false if the item is
// not a section.
func (it *Item) Section() (s jamsheet.Section, ok bool) {
	s, ok = it.data.(jamsheet.Section)
	return
}

// Copy returns a detached item with the same position and data.
func (it *Item) Copy() *Item {
	if it == nil {
		return nil
	}
	return &Item{pos: it.pos, data: it.data}
}

func (it *Item) String() string {
	return fmt.Sprintf("%v %v %v", it.pos, it.data.Kind(), it.data)
}

func (it *Item) key() itemKey { return itemKey{it.pos, it.data.Kind()} }

// itemKey is the sort key of an item. Items with equal keys compare equal,
// and a leadsheet never holds two of them.
type itemKey struct {
	pos  jamsheet.Position
	kind jamsheet.ItemKind
}

func (k itemKey) compare(o itemKey) int {
	if c := k.pos.Compare(o.pos); c != 0 {
		return c
	}
	return int(k.kind) - int(o.kind)
}

func compareItemKey(it *Item, k itemKey) int { return it.key().compare(k) }

// itemList is the sorted item container of a leadsheet.
type itemList []*Item

func (l itemList) search(k itemKey) (int, bool) {
	return slices.BinarySearchFunc(l, k, compareItemKey)
}

// at returns the item with key k, or nil.
func (l itemList) at(k itemKey) *Item {
	if i, ok := l.search(k); ok {
		return l[i]
	}
	return nil
}

func (l itemList) indexOf(it *Item) int {
	if i, ok := l.search(it.key()); ok && l[i] == it {
		return i
	}
	return -1
}

func (l itemList) contains(it *Item) bool { return l.indexOf(it) >= 0 }

func (l *itemList) insert(it *Item) {
	i, ok := l.search(it.key())
	if ok {
		panic(fmt.Sprintf("sheet: inserting %v over %v", it, (*l)[i]))
	}
	*l = slices.Insert(*l, i, it)
}

func (l *itemList) remove(it *Item) {
	i := l.indexOf(it)
	if i < 0 {
		panic(fmt.Sprintf("sheet: removing %v, which is not in the leadsheet", it))
	}
	*l = slices.Delete(*l, i, i+1)
}

// between returns the items with positions in [from, to].
func (l itemList) between(from, to jamsheet.Position) []*Item {
	return l.span(itemKey{from, jamsheet.SectionKind}, itemKey{to, jamsheet.AnnotationKind + 1})
}

// inBars returns the items in bars [from, to].
func (l itemList) inBars(from, to int) []*Item {
	return l.span(itemKey{jamsheet.Position{Bar: from}, jamsheet.SectionKind}, itemKey{jamsheet.Position{Bar: to + 1}, jamsheet.SectionKind})
}

// span returns the items with keys in [lo, hi).
func (l itemList) span(lo, hi itemKey) []*Item {
	i, _ := l.search(lo)
	j, _ := l.search(hi)
	if j <= i {
		return nil
	}
	return slices.Clone(l[i:j])
}

func (l itemList) sections() (ret []*Item) {
	for _, it := range l {
		if it.IsSection() {
			ret = append(ret, it)
		}
	}
	return
}
