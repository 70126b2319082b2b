package arrange

import (
	"fmt"

	"github.com/vsariola/jamsheet/edit"
	"golang.org/x/exp/slices"
)

// AddParts inserts parts. Each part is inserted at its StartBar, which must
// be the start or the end of an existing part when the part is added; the
// parts after it move later. The parts are inserted in the given order.
func (a *Arrangement) AddParts(parts []Part) error {
	if len(parts) == 0 {
		return nil
	}
	after := copyParts(a.parts)
	added := make([]Part, len(parts))
	for i, p := range parts {
		if err := checkPart(p); err != nil {
			return err
		}
		idx, ok := boundary(after, p.StartBar)
		if !ok {
			return edit.Preconditionf("part %v does not start at a part boundary", p)
		}
		after = slices.Insert(after, idx, p.Copy())
		layout(after)
		added[i] = p.Copy()
	}
	return a.commit("add parts", PartsAdded{Parts: added}, after)
}

// RemoveParts removes the parts starting at the StartBars of parts. The
// parts after them move earlier.
func (a *Arrangement) RemoveParts(parts []Part) error {
	if len(parts) == 0 {
		return nil
	}
	removed := make([]Part, 0, len(parts))
	doomed := map[int]bool{}
	for _, p := range parts {
		i := a.indexAt(p.StartBar)
		if i < 0 {
			return edit.Preconditionf("no part starts at bar %d", p.StartBar)
		}
		if !doomed[i] {
			doomed[i] = true
			removed = append(removed, a.parts[i].Copy())
		}
	}
	after := make([]Part, 0, len(a.parts))
	for i, p := range a.parts {
		if !doomed[i] {
			after = append(after, p.Copy())
		}
	}
	layout(after)
	return a.commit("remove parts", PartsRemoved{Parts: removed}, after)
}

// ResizeParts changes the lengths of parts: lengths maps the current start
// bar of a part to its new length. The parts after a resized part move.
func (a *Arrangement) ResizeParts(lengths map[int]int) error {
	var resizes []Resize
	after := copyParts(a.parts)
	for bar, n := range lengths {
		i := a.indexAt(bar)
		if i < 0 {
			return edit.Preconditionf("no part starts at bar %d", bar)
		}
		if n < 1 {
			return edit.Preconditionf("part length %d < 1", n)
		}
		if n != after[i].Length {
			resizes = append(resizes, Resize{StartBar: bar, OldLength: after[i].Length, NewLength: n})
			after[i].Length = n
		}
	}
	if len(resizes) == 0 {
		return nil
	}
	slices.SortFunc(resizes, func(x, y Resize) int { return x.StartBar - y.StartBar })
	layout(after)
	return a.commit("resize parts", PartsResized{Resizes: resizes}, after)
}

// ReplaceParts puts news[i] in place of the part starting at olds[i].StartBar.
// The replacement keeps the start and the length of the part it replaces.
// The whole batch is authorized as one change.
func (a *Arrangement) ReplaceParts(olds, news []Part) error {
	ev, after, err := a.replacement(olds, news)
	if err != nil || len(ev.New) == 0 {
		return err
	}
	return a.commit("replace parts", ev, after)
}

func (a *Arrangement) replacement(olds, news []Part) (PartsReplaced, []Part, error) {
	if len(olds) != len(news) {
		return PartsReplaced{}, nil, edit.Preconditionf("replacing %d parts with %d parts", len(olds), len(news))
	}
	if len(olds) == 0 {
		return PartsReplaced{}, nil, nil
	}
	after := copyParts(a.parts)
	ev := PartsReplaced{Old: make([]Part, len(olds)), New: make([]Part, len(news))}
	for k, o := range olds {
		i := a.indexAt(o.StartBar)
		if i < 0 {
			return PartsReplaced{}, nil, edit.Preconditionf("no part starts at bar %d", o.StartBar)
		}
		n := news[k].Copy()
		n.StartBar, n.Length = a.parts[i].StartBar, a.parts[i].Length
		if err := checkPart(n); err != nil {
			return PartsReplaced{}, nil, err
		}
		ev.Old[k], ev.New[k] = a.parts[i].Copy(), n.Copy()
		after[i] = n
	}
	return ev, after, nil
}

// RenameParts gives the parts the same name.
func (a *Arrangement) RenameParts(parts []Part, name string) error {
	ev, after, err := a.renaming(parts, name)
	if err != nil || len(ev.Renames) == 0 {
		return err
	}
	return a.commit("rename parts", ev, after)
}

func (a *Arrangement) renaming(parts []Part, name string) (PartsRenamed, []Part, error) {
	after := copyParts(a.parts)
	var ev PartsRenamed
	for _, p := range parts {
		i := a.indexAt(p.StartBar)
		if i < 0 {
			return PartsRenamed{}, nil, edit.Preconditionf("no part starts at bar %d", p.StartBar)
		}
		if after[i].Name != name {
			ev.Renames = append(ev.Renames, Rename{StartBar: p.StartBar, Old: after[i].Name, New: name})
			after[i].Name = name
		}
	}
	return ev, after, nil
}

// SetParameterValue sets parameter id of the part starting at part.StartBar.
// The value must be in the range of the parameter.
func (a *Arrangement) SetParameterValue(part Part, id string, value int) error {
	i := a.indexAt(part.StartBar)
	if i < 0 {
		return edit.Preconditionf("no part starts at bar %d", part.StartBar)
	}
	cur := a.parts[i]
	par, ok := cur.Rhythm.Parameter(id)
	if !ok {
		return edit.Preconditionf("rhythm %v has no parameter %q", cur.Rhythm, id)
	}
	if value != par.Clamp(value) {
		return edit.Preconditionf("value %d of %q not in [%d,%d]", value, id, par.MinValue, par.MaxValue)
	}
	old := cur.Param(id)
	if old == value {
		return nil
	}
	after := copyParts(a.parts)
	after[i].Params[id] = value
	ev := ParameterChanged{Part: cur.Copy(), ID: id, Old: old, New: value}
	return a.commit("set parameter", ev, after)
}

// SplitPart splits a part in two at bar; both halves keep the section, the
// rhythm and the parameters of the part.
func (a *Arrangement) SplitPart(part Part, bar int) error {
	i := a.indexAt(part.StartBar)
	if i < 0 {
		return edit.Preconditionf("no part starts at bar %d", part.StartBar)
	}
	cur := a.parts[i].Copy()
	if bar <= cur.StartBar || bar >= cur.EndBar() {
		return edit.Preconditionf("bar %d is not inside part %v", bar, cur)
	}
	defer a.action("split part")()
	if err := a.ResizeParts(map[int]int{cur.StartBar: bar - cur.StartBar}); err != nil {
		return err
	}
	second := cur.Copy()
	second.StartBar, second.Length = bar, cur.EndBar()-bar
	return a.AddParts([]Part{second})
}

func checkPart(p Part) error {
	if p.Rhythm == nil {
		return edit.Preconditionf("part %q has no rhythm", p.Name)
	}
	if p.Length < 1 {
		return edit.Preconditionf("part %q has length %d < 1", p.Name, p.Length)
	}
	for id, v := range p.Params {
		par, ok := p.Rhythm.Parameter(id)
		if !ok {
			return edit.Preconditionf("part %q: rhythm %s has no parameter %q", p.Name, p.Rhythm.ID, id)
		}
		if v != par.Clamp(v) {
			return fmt.Errorf("part %q: parameter %q value %d out of range: %w", p.Name, id, v, edit.ErrPrecondition)
		}
	}
	return nil
}

// boundary returns the index at which a part starting at bar is inserted.
func boundary(parts []Part, bar int) (int, bool) {
	for i, p := range parts {
		if p.StartBar == bar {
			return i, true
		}
	}
	if len(parts) == 0 {
		return 0, bar == 0
	}
	return len(parts), bar == parts[len(parts)-1].EndBar()
}
