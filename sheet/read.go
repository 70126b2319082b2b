package sheet

import (
	"github.com/vsariola/jamsheet"
	"golang.org/x/exp/slices"
)

func (ls *Leadsheet) Size() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.size
}

func (ls *Leadsheet) MaxSize() int { return ls.maxSize }

// Items returns all items in order.
func (ls *Leadsheet) Items() []*Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return slices.Clone(ls.items)
}

// ItemsInRange returns the items with positions in [from, to].
func (ls *Leadsheet) ItemsInRange(from, to jamsheet.Position) []*Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.items.between(from, to)
}

// ItemsInBars returns the items in bars [from, to].
func (ls *Leadsheet) ItemsInBars(from, to int) []*Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.items.inBars(from, to)
}

func (ls *Leadsheet) Contains(it *Item) bool {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.items.contains(it)
}

// Sections returns the sections in order; the first one is at bar 0.
func (ls *Leadsheet) Sections() []*Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.items.sections()
}

// SectionAt returns the section starting at bar, or nil.
func (ls *Leadsheet) SectionAt(bar int) *Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.sectionAt(bar)
}

// SectionFor returns the section governing bar: the last section starting at
// or before it.
func (ls *Leadsheet) SectionFor(bar int) *Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.sectionFor(bar)
}

func (ls *Leadsheet) SectionByName(name string) *Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.sectionByName(name)
}

// NextSection returns the first section after it, or nil.
func (ls *Leadsheet) NextSection(it *Item) *Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.nextSection(it.pos.Bar)
}

// PrevSection returns the last section before it, or nil.
func (ls *Leadsheet) PrevSection(it *Item) *Item {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.prevSection(it.pos.Bar)
}

// SectionRange returns the bars [start, end) governed by the section.
func (ls *Leadsheet) SectionRange(section *Item) (start, end int) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.sectionRange(section)
}

// TimeSignatureAt returns the time signature in effect at bar.
func (ls *Leadsheet) TimeSignatureAt(bar int) jamsheet.TimeSignature {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.timeSignatureAt(bar)
}

// The unlocked variants below are used by the operations, which run on the
// only goroutine that writes.

func (ls *Leadsheet) sectionAt(bar int) *Item {
	return ls.items.at(itemKey{jamsheet.Position{Bar: bar}, jamsheet.SectionKind})
}

func (ls *Leadsheet) sectionFor(bar int) *Item {
	var ret *Item
	for _, it := range ls.items {
		if it.pos.Bar > bar {
			break
		}
		if it.IsSection() {
			ret = it
		}
	}
	return ret
}

func (ls *Leadsheet) sectionByName(name string) *Item {
	for _, it := range ls.items {
		if s, ok := it.Section(); ok && s.Name == name {
			return it
		}
	}
	return nil
}

func (ls *Leadsheet) nextSection(bar int) *Item {
	for _, it := range ls.items.inBars(bar+1, ls.size) {
		if it.IsSection() {
			return it
		}
	}
	return nil
}

func (ls *Leadsheet) prevSection(bar int) *Item {
	if bar <= 0 {
		return nil
	}
	return ls.sectionFor(bar - 1)
}

func (ls *Leadsheet) sectionRange(section *Item) (start, end int) {
	start, end = section.pos.Bar, ls.size
	if next := ls.nextSection(start); next != nil {
		end = next.pos.Bar
	}
	return
}

func (ls *Leadsheet) timeSignatureAt(bar int) jamsheet.TimeSignature {
	if s := ls.sectionFor(bar); s != nil {
		return s.data.(jamsheet.Section).TimeSignature
	}
	if len(ls.items) > 0 {
		if s, ok := ls.items[0].Section(); ok {
			return s.TimeSignature
		}
	}
	return jamsheet.FourFour
}
