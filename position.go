package jamsheet

import (
	"fmt"
	"math"
)

// Position is a location in a leadsheet: a bar index and a beat offset within
// the bar. Beat is expressed in the natural beats of the time signature in
// effect at that bar, so it should be in [0, ts.Beats()).
type Position struct {
	Bar  int
	Beat float64 `yaml:",omitempty"`
}

// EndOfDocument is a sentinel position that compares greater than any
// position inside a leadsheet. Useful as the upper bound of range queries.
var EndOfDocument = Position{Bar: math.MaxInt32}

// Compare returns -1, 0 or 1 if p is before, at or after q.
func (p Position) Compare(q Position) int {
	switch {
	case p.Bar < q.Bar:
		return -1
	case p.Bar > q.Bar:
		return 1
	case p.Beat < q.Beat:
		return -1
	case p.Beat > q.Beat:
		return 1
	}
	return 0
}

func (p Position) Less(q Position) bool { return p.Compare(q) < 0 }

// IsEnd reports if the position is the EndOfDocument sentinel.
func (p Position) IsEnd() bool { return p == EndOfDocument }

// IsFirstBarBeat reports if the position is at the start of a bar.
func (p Position) IsFirstBarBeat() bool { return p.Beat == 0 }

// Converted maps the position from the beat grid of oldTs to the beat grid of
// newTs, keeping the relative position within the bar: a beat halfway through
// a 4/4 bar ends up halfway through a 3/4 bar. The bar is never changed.
func (p Position) Converted(oldTs, newTs TimeSignature) Position {
	if oldTs == newTs || p.IsEnd() {
		return p
	}
	beat := p.Beat * float64(newTs.Beats()) / float64(oldTs.Beats())
	return Position{Bar: p.Bar, Beat: beat}
}

// Adjusted returns the position snapped to the valid beat range of ts.
func (p Position) Adjusted(ts TimeSignature) Position {
	if p.IsEnd() {
		return p
	}
	if p.Beat < 0 {
		p.Beat = 0
	}
	if n := float64(ts.Beats()); p.Beat >= n {
		p.Beat = n - 1
	}
	return p
}

// Valid reports if the beat of the position is inside a bar of ts.
func (p Position) Valid(ts TimeSignature) bool {
	return p.Bar >= 0 && p.Beat >= 0 && p.Beat < float64(ts.Beats())
}

func (p Position) String() string {
	if p.IsEnd() {
		return "[end]"
	}
	return fmt.Sprintf("[%d:%g]", p.Bar, p.Beat)
}
