package jamsheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

type (
	// Rhythm is a style used to generate the accompaniment of a part. Rhythms
	// are immutable once loaded into a registry, so parts share them by
	// pointer. Rhythms with the same Family are variations of the same style
	// for different time signatures.
	Rhythm struct {
		ID            string
		Name          string
		Family        string        `yaml:",omitempty"`
		TimeSignature TimeSignature `yaml:"timesig"`
		Parameters    []RhythmParameter
	}

	// RhythmParameter documents one parameter that a rhythm takes, in the
	// same fashion as unit parameters: integer values in [MinValue, MaxValue].
	// If Values is not empty, it gives the display names of the values
	// MinValue, MinValue+1, ... and the string codec uses those names.
	RhythmParameter struct {
		ID       string
		Name     string
		MinValue int
		MaxValue int
		Default  int
		Values   []string `yaml:",flow,omitempty"`
	}

	// Registry provides the rhythms for new parts. DefaultRhythm must not
	// return nil without an error for a supported time signature.
	// AdaptedRhythm returns nil if the rhythm cannot be adapted to ts.
	Registry interface {
		DefaultRhythm(ts TimeSignature) (*Rhythm, error)
		AdaptedRhythm(r *Rhythm, ts TimeSignature) *Rhythm
	}
)

var fold = cases.Fold()

// Parameter returns the parameter with the given id.
func (r *Rhythm) Parameter(id string) (RhythmParameter, bool) {
	for _, p := range r.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return RhythmParameter{}, false
}

// DefaultParams returns a new map from parameter id to its default value.
func (r *Rhythm) DefaultParams() map[string]int {
	ret := make(map[string]int, len(r.Parameters))
	for _, p := range r.Parameters {
		ret[p.ID] = p.Default
	}
	return ret
}

func (r *Rhythm) String() string {
	if r == nil {
		return "<nil rhythm>"
	}
	return r.Name + " (" + r.TimeSignature.String() + ")"
}

// Validate checks that the rhythm is usable: it has an id, a supported time
// signature and parameters with sane ranges and defaults.
func (r *Rhythm) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rhythm %q has no id", r.Name)
	}
	if !r.TimeSignature.Valid() {
		return fmt.Errorf("rhythm %s: unsupported time signature %v", r.ID, r.TimeSignature)
	}
	seen := map[string]bool{}
	for _, p := range r.Parameters {
		if seen[p.ID] {
			return fmt.Errorf("rhythm %s: duplicate parameter %s", r.ID, p.ID)
		}
		seen[p.ID] = true
		if p.MinValue > p.MaxValue {
			return fmt.Errorf("rhythm %s: parameter %s has min %d > max %d", r.ID, p.ID, p.MinValue, p.MaxValue)
		}
		if p.Default < p.MinValue || p.Default > p.MaxValue {
			return fmt.Errorf("rhythm %s: parameter %s default %d out of range", r.ID, p.ID, p.Default)
		}
		if len(p.Values) > 0 && len(p.Values) != p.MaxValue-p.MinValue+1 {
			return fmt.Errorf("rhythm %s: parameter %s has %d value names for %d values", r.ID, p.ID, len(p.Values), p.MaxValue-p.MinValue+1)
		}
	}
	return nil
}

// Clamp limits v to the range of the parameter.
func (p RhythmParameter) Clamp(v int) int {
	return max(p.MinValue, min(p.MaxValue, v))
}

// Format converts a value to its string form.
func (p RhythmParameter) Format(v int) string {
	if i := v - p.MinValue; len(p.Values) > 0 && i >= 0 && i < len(p.Values) {
		return p.Values[i]
	}
	return strconv.Itoa(v)
}

// Parse is the inverse of Format. Value names are matched case
// insensitively; the value must be inside the range of the parameter.
func (p RhythmParameter) Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(p.Values) > 0 {
		for i, name := range p.Values {
			if fold.String(name) == fold.String(s) {
				return p.MinValue + i, nil
			}
		}
		return 0, fmt.Errorf("parameter %s: unknown value %q", p.ID, s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", p.ID, err)
	}
	if v < p.MinValue || v > p.MaxValue {
		return 0, fmt.Errorf("parameter %s: value %d out of range [%d,%d]", p.ID, v, p.MinValue, p.MaxValue)
	}
	return v, nil
}

// Percentage maps v to [0,1] relative to the range of the parameter.
func (p RhythmParameter) Percentage(v int) float64 {
	if p.MaxValue == p.MinValue {
		return 0
	}
	return float64(p.Clamp(v)-p.MinValue) / float64(p.MaxValue-p.MinValue)
}

// FromPercentage is the inverse of Percentage, rounding to the nearest value.
func (p RhythmParameter) FromPercentage(pct float64) int {
	pct = math.Max(0, math.Min(1, pct))
	return p.MinValue + int(math.Round(pct*float64(p.MaxValue-p.MinValue)))
}

// CompatibleWith reports if the two parameters mean the same thing and a
// value can be carried over from one to the other: their names match case
// insensitively.
func (p RhythmParameter) CompatibleWith(q RhythmParameter) bool {
	return fold.String(p.Name) == fold.String(q.Name)
}

// TransferValue converts value v of parameter from into a value of p. The
// string form is used when p understands it, otherwise the value keeps its
// relative place in the range.
func (p RhythmParameter) TransferValue(from RhythmParameter, v int) int {
	if ret, err := p.Parse(from.Format(v)); err == nil {
		return ret
	}
	return p.FromPercentage(from.Percentage(v))
}
