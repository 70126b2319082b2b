package arrange

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/sheet"
)

// Synchronizer keeps an arrangement consistent with a leadsheet: every
// section has a run of one or more parts, the runs are in the order of the
// sections and the parts of a run span exactly the bars of the section.
//
// The synchronizer listens to the leadsheet and changes the arrangement with
// the normal arrangement operations, so the arrangement edits end up in the
// same undoable action as the leadsheet edits causing them. Replayed events
// are ignored, as the arrangement edits are replayed by the undo manager.
// Section renames and time signature changes are also checked against the
// authorizers of the arrangement before they happen.
type Synchronizer struct {
	ls          *sheet.Leadsheet
	arr         *Arrangement
	reg         jamsheet.Registry
	unsubscribe func()
}

// NewSynchronizer starts synchronizing arr with ls. The registry provides the
// rhythms of the new parts.
func NewSynchronizer(ls *sheet.Leadsheet, arr *Arrangement, reg jamsheet.Registry) *Synchronizer {
	arr.mu.Lock()
	arr.leadsheet = ls
	arr.mu.Unlock()
	s := &Synchronizer{ls: ls, arr: arr, reg: reg}
	unauthorize := ls.AddAuthorizer(s)
	unlisten := ls.AddListener(s)
	s.unsubscribe = func() {
		unlisten()
		unauthorize()
	}
	return s
}

// NewFromLeadsheet returns an arrangement with one part per section of ls
// and the synchronizer keeping it consistent.
func NewFromLeadsheet(ls *sheet.Leadsheet, reg jamsheet.Registry) (*Arrangement, *Synchronizer, error) {
	a := New()
	var prev *jamsheet.Rhythm
	for _, sec := range ls.Sections() {
		ts := sectionOf(sec).TimeSignature
		r, err := chooseRhythm(a, reg, ts, prev)
		if err != nil {
			return nil, nil, err
		}
		start, end := ls.SectionRange(sec)
		a.parts = append(a.parts, NewPart(r, start, end-start, sec))
		a.lastRhythm[ts] = r
		prev = r
	}
	layout(a.parts)
	return a, NewSynchronizer(ls, a, reg), nil
}

// Close stops the synchronization.
func (s *Synchronizer) Close() {
	s.unsubscribe()
	s.arr.mu.Lock()
	s.arr.leadsheet = nil
	s.arr.mu.Unlock()
}

func (s *Synchronizer) LeadsheetChanged(ev sheet.Event) error {
	if ev.Replayed() {
		return nil
	}
	switch e := ev.(type) {
	case sheet.SizeChanged:
		if secs := s.ls.Sections(); len(secs) > 0 {
			return s.fit(secs[len(secs)-1])
		}
	case sheet.ItemsBarShifted:
		return s.shifted(e.Sections())
	case sheet.ItemChanged:
		old, ok := e.Old.(jamsheet.Section)
		if !ok {
			return nil
		}
		return s.sectionChanged(e.Item, old, e.New.(jamsheet.Section))
	case sheet.ItemsAdded:
		for _, sec := range e.Sections() {
			if err := s.sectionAdded(sec); err != nil {
				return err
			}
		}
	case sheet.ItemsRemoved:
		for _, sec := range e.Sections() {
			if err := s.sectionRemoved(sec); err != nil {
				return err
			}
		}
	case sheet.SectionMoved:
		return s.sectionMoved(e.Section, e.OldBar)
	}
	return nil
}

func (s *Synchronizer) shifted(secs []*sheet.Item) error {
	if len(secs) == 0 {
		return nil
	}
	defer s.arr.action("shift sections")()
	if err := s.fit(s.ls.PrevSection(secs[0])); err != nil {
		return err
	}
	for _, sec := range secs {
		if err := s.fit(sec); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) sectionChanged(sec *sheet.Item, old, cur jamsheet.Section) error {
	defer s.arr.action("change section")()
	if old.TimeSignature != cur.TimeSignature {
		run, news, err := s.rhythmChange(sec, cur.TimeSignature)
		if err != nil {
			return err
		}
		glog.V(2).Infof("section %s is now in %v, replacing %d parts", cur.Name, cur.TimeSignature, len(run))
		if err := s.arr.ReplaceParts(run, news); err != nil {
			return err
		}
	}
	if old.Name != cur.Name {
		return s.arr.RenameParts(s.namedParts(sec, old.Name), cur.Name)
	}
	return nil
}

// AuthorizeChange asks the authorizers of the arrangement about the part
// changes a section change would make, before the section changes. A section
// change rejected by the arrangement thus leaves the leadsheet untouched.
func (s *Synchronizer) AuthorizeChange(ev sheet.Event) error {
	e, ok := ev.(sheet.ItemChanged)
	if !ok {
		return nil
	}
	old, ok := e.Old.(jamsheet.Section)
	if !ok {
		return nil
	}
	cur := e.New.(jamsheet.Section)
	if old.TimeSignature != cur.TimeSignature {
		run, news, err := s.rhythmChange(e.Item, cur.TimeSignature)
		if err != nil {
			return err
		}
		if len(run) > 0 {
			rep, _, err := s.arr.replacement(run, news)
			if err != nil {
				return err
			}
			if err := s.arr.Authorize(rep); err != nil {
				return err
			}
		}
	}
	if old.Name != cur.Name {
		ren, _, err := s.arr.renaming(s.namedParts(e.Item, old.Name), cur.Name)
		if err != nil {
			return err
		}
		if len(ren.Renames) > 0 {
			return s.arr.Authorize(ren)
		}
	}
	return nil
}

// rhythmChange returns the parts of sec and their replacements for time
// signature ts. Each replacement adapts the rhythm of the part before it:
// the first one the part preceding the run, the others the replacement
// before them.
func (s *Synchronizer) rhythmChange(sec *sheet.Item, ts jamsheet.TimeSignature) (run, news []Part, err error) {
	run = s.arr.PartsOf(sec)
	if len(run) == 0 {
		return nil, nil, nil
	}
	var prev *jamsheet.Rhythm
	if p, ok := s.arr.PartAt(run[0].StartBar - 1); ok {
		prev = p.Rhythm
	}
	news = make([]Part, len(run))
	for i, p := range run {
		r, err := chooseRhythm(s.arr, s.reg, ts, prev)
		if err != nil {
			return nil, nil, err
		}
		news[i] = p.WithRhythm(r)
		prev = r
	}
	return run, news, nil
}

// namedParts returns the parts of sec still carrying name.
func (s *Synchronizer) namedParts(sec *sheet.Item, name string) (ret []Part) {
	for _, p := range s.arr.PartsOf(sec) {
		if p.Name == name {
			ret = append(ret, p)
		}
	}
	return ret
}

// sectionAdded makes room for the new section in the run of the preceding
// section and then adds a part for it after that run. If the new part is
// rejected, the resize stays done and the rejection is returned.
func (s *Synchronizer) sectionAdded(sec *sheet.Item) error {
	defer s.arr.action("add section")()
	prev := s.ls.PrevSection(sec)
	if err := s.fit(prev); err != nil {
		return err
	}
	bar, prevRhythm := s.runEnd(prev)
	p, err := s.newPart(sec, bar, prevRhythm)
	if err != nil {
		return err
	}
	glog.V(2).Infof("adding part %v for section %v", p, sec)
	return s.arr.AddParts([]Part{p})
}

func (s *Synchronizer) sectionRemoved(sec *sheet.Item) error {
	defer s.arr.action("remove section")()
	if err := s.fit(s.ls.SectionFor(sec.Bar())); err != nil {
		return err
	}
	return s.arr.RemoveParts(s.arr.PartsOf(sec))
}

// sectionMoved handles a move within the run of the same preceding section
// by resizing, and other moves by moving the parts of the section: the first
// part of its run is reinserted after the run of the new preceding section.
func (s *Synchronizer) sectionMoved(sec *sheet.Item, oldBar int) error {
	newPrev := s.ls.PrevSection(sec)
	var oldPrev *sheet.Item
	for _, it := range s.ls.Sections() {
		if it != sec && it.Bar() < oldBar {
			oldPrev = it
		}
	}
	defer s.arr.action("move section")()
	if oldPrev == newPrev {
		if err := s.fit(newPrev); err != nil {
			return err
		}
		return s.fit(sec)
	}
	if err := s.fit(oldPrev); err != nil {
		return err
	}
	run := s.arr.PartsOf(sec)
	if err := s.arr.RemoveParts(run); err != nil {
		return err
	}
	if err := s.fit(newPrev); err != nil {
		return err
	}
	bar, prevRhythm := s.runEnd(newPrev)
	var p Part
	if len(run) > 0 {
		p = run[0].Copy()
		start, end := s.ls.SectionRange(sec)
		p.StartBar, p.Length = bar, end-start
	} else {
		var err error
		if p, err = s.newPart(sec, bar, prevRhythm); err != nil {
			return err
		}
	}
	glog.V(2).Infof("moving parts of section %v to bar %d", sec, bar)
	return s.arr.AddParts([]Part{p})
}

// fit makes the run of the section span the bars of the section: the last
// part that still fits is resized and the parts after it are removed.
func (s *Synchronizer) fit(sec *sheet.Item) error {
	if sec == nil || !s.ls.Contains(sec) {
		return nil
	}
	start, end := s.ls.SectionRange(sec)
	length := end - start
	run := s.arr.PartsOf(sec)
	if len(run) == 0 {
		return nil
	}
	keep, acc := -1, 0
	for i, p := range run {
		if acc >= length {
			break
		}
		keep = i
		if acc+p.Length >= length || i == len(run)-1 {
			break
		}
		acc += p.Length
	}
	if keep >= 0 && run[keep].Length != length-acc {
		glog.V(2).Infof("fitting section %v: part at bar %d to %d bars", sec, run[keep].StartBar, length-acc)
		if err := s.arr.ResizeParts(map[int]int{run[keep].StartBar: length - acc}); err != nil {
			return err
		}
	}
	if run = s.arr.PartsOf(sec); len(run) > keep+1 {
		glog.V(2).Infof("fitting section %v: removing %d parts", sec, len(run)-keep-1)
		return s.arr.RemoveParts(run[keep+1:])
	}
	return nil
}

// runEnd returns the bar after the run of sec and the rhythm of its last
// part. Without a section, the run ends at bar 0; a section without parts
// has its run at the end of the arrangement.
func (s *Synchronizer) runEnd(sec *sheet.Item) (int, *jamsheet.Rhythm) {
	if sec == nil {
		return 0, nil
	}
	if run := s.arr.PartsOf(sec); len(run) > 0 {
		last := run[len(run)-1]
		return last.EndBar(), last.Rhythm
	}
	bar := s.arr.Size()
	if p, ok := s.arr.PartAt(bar - 1); ok {
		return bar, p.Rhythm
	}
	return bar, nil
}

func (s *Synchronizer) newPart(sec *sheet.Item, bar int, prev *jamsheet.Rhythm) (Part, error) {
	data := sectionOf(sec)
	r, err := chooseRhythm(s.arr, s.reg, data.TimeSignature, prev)
	if err != nil {
		return Part{}, err
	}
	start, end := s.ls.SectionRange(sec)
	return NewPart(r, bar, end-start, sec), nil
}

// chooseRhythm picks the rhythm of a new part in time signature ts: the
// rhythm last used in ts, else the adaptation of prev to ts, else the
// default rhythm of ts.
func chooseRhythm(a *Arrangement, reg jamsheet.Registry, ts jamsheet.TimeSignature, prev *jamsheet.Rhythm) (*jamsheet.Rhythm, error) {
	if r := a.LastRhythm(ts); r != nil {
		return r, nil
	}
	if prev != nil {
		if r := reg.AdaptedRhythm(prev, ts); r != nil {
			return r, nil
		}
	}
	r, err := reg.DefaultRhythm(ts)
	if err != nil {
		return nil, fmt.Errorf("no rhythm for %v: %w", ts, err)
	}
	if r == nil {
		return nil, fmt.Errorf("no rhythm for %v", ts)
	}
	return r, nil
}

func sectionOf(it *sheet.Item) jamsheet.Section {
	s, ok := it.Section()
	if !ok {
		panic(fmt.Sprintf("arrange: %v is not a section", it))
	}
	return s
}

// Consistent checks that parts are laid out for ls as a Synchronizer keeps
// them: contiguous from bar 0, one run per section in the order of the
// sections, each run spanning the bars of its section.
func Consistent(ls *sheet.Leadsheet, parts []Part) error {
	i, bar := 0, 0
	for _, sec := range ls.Sections() {
		start, end := ls.SectionRange(sec)
		n := 0
		for ; i < len(parts) && parts[i].Section == sec; i++ {
			if parts[i].StartBar != bar {
				return fmt.Errorf("part %v should start at bar %d", parts[i], bar)
			}
			bar += parts[i].Length
			n += parts[i].Length
		}
		if n == 0 {
			return fmt.Errorf("section %v has no parts", sec)
		}
		if n != end-start {
			return fmt.Errorf("parts of section %v span %d bars instead of %d", sec, n, end-start)
		}
	}
	if i < len(parts) {
		return errors.New("parts left over after the last section")
	}
	return nil
}
