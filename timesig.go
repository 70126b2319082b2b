package jamsheet

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TimeSignature is the meter of a section: Upper beats of the note value
// 1/Lower per bar. Only the signatures in TimeSignatures are supported.
type TimeSignature struct {
	Upper int
	Lower int
}

var (
	TwoFour     = TimeSignature{2, 4}
	ThreeFour   = TimeSignature{3, 4}
	FourFour    = TimeSignature{4, 4}
	FiveFour    = TimeSignature{5, 4}
	SixFour     = TimeSignature{6, 4}
	SevenFour   = TimeSignature{7, 4}
	TwoTwo      = TimeSignature{2, 2}
	ThreeEight  = TimeSignature{3, 8}
	SixEight    = TimeSignature{6, 8}
	SevenEight  = TimeSignature{7, 8}
	NineEight   = TimeSignature{9, 8}
	TwelveEight = TimeSignature{12, 8}
)

// TimeSignatures lists all the supported time signatures.
var TimeSignatures = []TimeSignature{
	TwoFour, ThreeFour, FourFour, FiveFour, SixFour, SevenFour,
	TwoTwo, ThreeEight, SixEight, SevenEight, NineEight, TwelveEight,
}

// Beats returns the number of natural beats in a bar, i.e. the upper number.
// Beat offsets of positions are expressed in these beats.
func (t TimeSignature) Beats() int {
	return t.Upper
}

// Valid reports if the time signature is one of the supported ones.
func (t TimeSignature) Valid() bool {
	for _, s := range TimeSignatures {
		if s == t {
			return true
		}
	}
	return false
}

func (t TimeSignature) String() string {
	return strconv.Itoa(t.Upper) + "/" + strconv.Itoa(t.Lower)
}

// ParseTimeSignature parses strings like "3/4". Unsupported signatures are
// rejected.
func ParseTimeSignature(s string) (TimeSignature, error) {
	upper, lower, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return TimeSignature{}, fmt.Errorf("invalid time signature %q", s)
	}
	u, err := strconv.Atoi(strings.TrimSpace(upper))
	if err != nil {
		return TimeSignature{}, fmt.Errorf("invalid time signature %q: %w", s, err)
	}
	l, err := strconv.Atoi(strings.TrimSpace(lower))
	if err != nil {
		return TimeSignature{}, fmt.Errorf("invalid time signature %q: %w", s, err)
	}
	ts := TimeSignature{u, l}
	if !ts.Valid() {
		return TimeSignature{}, fmt.Errorf("unsupported time signature %v", ts)
	}
	return ts, nil
}

func (t TimeSignature) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *TimeSignature) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	ts, err := ParseTimeSignature(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

// MarshalText and UnmarshalText let time signatures be map keys and TOML
// values.
func (t TimeSignature) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeSignature) UnmarshalText(text []byte) error {
	ts, err := ParseTimeSignature(string(text))
	if err != nil {
		return err
	}
	*t = ts
	return nil
}
