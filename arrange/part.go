package arrange

import (
	"fmt"

	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/sheet"
)

// Part is a range of bars of the arrangement, played with one rhythm. Parts
// are values: the arrangement hands out copies and operations take parts by
// value, identifying them by StartBar.
type Part struct {
	Rhythm   *jamsheet.Rhythm
	StartBar int
	Length   int
	// Section is the leadsheet section the part was generated from; nil for
	// parts not bound to a section.
	Section *sheet.Item
	Name    string
	// Params maps the parameter ids of the rhythm to their values.
	Params map[string]int
}

// NewPart returns a part of the section with the default parameter values
// of the rhythm.
func NewPart(r *jamsheet.Rhythm, startBar, length int, section *sheet.Item) Part {
	p := Part{Rhythm: r, StartBar: startBar, Length: length, Section: section, Params: r.DefaultParams()}
	if section != nil {
		if s, ok := section.Section(); ok {
			p.Name = s.Name
		}
	}
	return p
}

// Copy returns a copy of the part that does not share the parameter map.
func (p Part) Copy() Part {
	params := make(map[string]int, len(p.Params))
	for k, v := range p.Params {
		params[k] = v
	}
	p.Params = params
	return p
}

// EndBar returns the bar after the last bar of the part.
func (p Part) EndBar() int { return p.StartBar + p.Length }

// Param returns the value of parameter id, or its default if the part has no
// value for it.
func (p Part) Param(id string) int {
	if v, ok := p.Params[id]; ok {
		return v
	}
	if par, ok := p.Rhythm.Parameter(id); ok {
		return par.Default
	}
	return 0
}

func (p Part) String() string {
	return fmt.Sprintf("%q [%d,%d) %v", p.Name, p.StartBar, p.EndBar(), p.Rhythm)
}

// WithRhythm returns a copy of p using rhythm r. The values of the parameters
// that r shares with the old rhythm are carried over; the others get their
// defaults.
func (p Part) WithRhythm(r *jamsheet.Rhythm) Part {
	ret := p.Copy()
	ret.Rhythm = r
	ret.Params = r.DefaultParams()
	if p.Rhythm == nil {
		return ret
	}
	for _, np := range r.Parameters {
		for _, op := range p.Rhythm.Parameters {
			if v, ok := p.Params[op.ID]; ok && np.CompatibleWith(op) {
				ret.Params[np.ID] = np.TransferValue(op, v)
				break
			}
		}
	}
	return ret
}

func copyParts(parts []Part) []Part {
	ret := make([]Part, len(parts))
	for i, p := range parts {
		ret[i] = p.Copy()
	}
	return ret
}

// layout recomputes the start bars so that the parts are contiguous from
// bar 0.
func layout(parts []Part) {
	bar := 0
	for i := range parts {
		parts[i].StartBar = bar
		bar += parts[i].Length
	}
}
