package sheet

import (
	"errors"
	"fmt"

	"github.com/vsariola/jamsheet"
	"gopkg.in/yaml.v3"
)

type (
	// Snapshot is a plain copy of the state of a leadsheet, suitable for
	// serialization.
	Snapshot struct {
		Size  int
		Items []Record
	}

	// Record is one item of a Snapshot. Exactly one of Section, Chord and
	// Annotation is set.
	Record struct {
		Bar        int
		Beat       float64              `yaml:",omitempty"`
		Section    *jamsheet.Section    `yaml:",omitempty"`
		Chord      string               `yaml:",omitempty"`
		Annotation *jamsheet.Annotation `yaml:",omitempty"`
	}
)

// NewRecord returns the record of an item.
func NewRecord(it *Item) Record {
	r := Record{Bar: it.pos.Bar, Beat: it.pos.Beat}
	switch d := it.data.(type) {
	case jamsheet.Section:
		r.Section = &d
	case jamsheet.ChordSymbol:
		r.Chord = d.Chord
	case jamsheet.Annotation:
		r.Annotation = &d
	}
	return r
}

// Item returns a new detached item holding the record.
func (r Record) Item() (*Item, error) {
	pos := jamsheet.Position{Bar: r.Bar, Beat: r.Beat}
	switch {
	case r.Section != nil && r.Chord == "" && r.Annotation == nil:
		return &Item{pos: pos, data: *r.Section}, nil
	case r.Section == nil && r.Chord != "" && r.Annotation == nil:
		return &Item{pos: pos, data: jamsheet.ChordSymbol{Chord: r.Chord}}, nil
	case r.Section == nil && r.Chord == "" && r.Annotation != nil:
		return &Item{pos: pos, data: *r.Annotation}, nil
	}
	return nil, fmt.Errorf("record at %v should have exactly one of section, chord and annotation", pos)
}

// Snapshot returns a consistent copy of the leadsheet. It is safe to call
// from any goroutine.
func (ls *Leadsheet) Snapshot() Snapshot {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	ret := Snapshot{Size: ls.size, Items: make([]Record, len(ls.items))}
	for i, it := range ls.items {
		ret.Items[i] = NewRecord(it)
	}
	return ret
}

// FromSnapshot builds a leadsheet from a snapshot. The section at bar 0 is
// located first; all the other sections and items are then added with the
// normal operations, so a snapshot breaking the rules of a leadsheet is
// rejected.
func FromSnapshot(s Snapshot, maxSize int) (*Leadsheet, error) {
	items := make([]*Item, 0, len(s.Items))
	var first *Item
	for _, r := range s.Items {
		it, err := r.Item()
		if err != nil {
			return nil, err
		}
		if it.IsSection() && it.pos.Bar == 0 {
			if first != nil {
				return nil, errors.New("more than one section at bar 0")
			}
			first = it
			continue
		}
		items = append(items, it)
	}
	if first == nil {
		return nil, errors.New("no section at bar 0")
	}
	ls, err := New(first.data.(jamsheet.Section), s.Size, maxSize)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if !it.IsSection() {
			continue
		}
		if err := ls.AddSection(it); err != nil {
			return nil, fmt.Errorf("section %v: %w", it, err)
		}
	}
	for _, it := range items {
		if it.IsSection() {
			continue
		}
		if err := ls.AddItem(it); err != nil {
			return nil, fmt.Errorf("item %v: %w", it, err)
		}
	}
	return ls, nil
}

// CopyItems marshals the chord symbols and annotations among items for
// pasting. The bars are stored relative to the first item.
func CopyItems(items []*Item) ([]byte, error) {
	var recs []Record
	for _, it := range items {
		if it.IsSection() {
			continue
		}
		r := NewRecord(it)
		r.Bar -= items[0].pos.Bar
		recs = append(recs, r)
	}
	if len(recs) == 0 {
		return nil, errors.New("nothing to copy")
	}
	return yaml.Marshal(recs)
}

// PasteItems adds the items marshaled by CopyItems, starting at bar. Items
// beyond the end of the leadsheet are left out.
func (ls *Leadsheet) PasteItems(data []byte, bar int) error {
	var recs []Record
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return fmt.Errorf("could not unmarshal items: %w", err)
	}
	defer ls.action("paste items")()
	for _, r := range recs {
		r.Bar += bar
		if r.Bar < 0 || r.Bar >= ls.size || r.Section != nil {
			continue
		}
		it, err := r.Item()
		if err != nil {
			return err
		}
		if err := ls.AddItem(it); err != nil {
			return err
		}
	}
	return nil
}
