package song

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/arrange"
	"github.com/vsariola/jamsheet/sheet"
	"golang.org/x/exp/slices"
)

type command struct {
	usage string
	args  int // minimum number of arguments
	run   func(s *Song, args []string) error
}

var commands = map[string]command{
	"size": {"size BARS", 1, func(s *Song, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return s.Leadsheet.SetSize(n)
	}},
	"insert": {"insert BAR COUNT", 2, func(s *Song, args []string) error {
		at, count, err := twoInts(args)
		if err != nil {
			return err
		}
		return s.Leadsheet.InsertBars(at, count)
	}},
	"delete": {"delete FROM TO", 2, func(s *Song, args []string) error {
		from, to, err := twoInts(args)
		if err != nil {
			return err
		}
		return s.Leadsheet.DeleteBars(from, to)
	}},
	"section": {"section BAR NAME [TIMESIG]", 2, func(s *Song, args []string) error {
		bar, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		ts := s.Leadsheet.TimeSignatureAt(bar)
		if len(args) > 2 {
			if ts, err = jamsheet.ParseTimeSignature(args[2]); err != nil {
				return err
			}
		}
		return s.Leadsheet.AddSection(sheet.NewSection(bar, args[1], ts))
	}},
	"remove-section": {"remove-section NAME", 1, func(s *Song, args []string) error {
		sec, err := s.section(args[0])
		if err != nil {
			return err
		}
		return s.Leadsheet.RemoveSection(sec)
	}},
	"move-section": {"move-section NAME BAR", 2, func(s *Song, args []string) error {
		sec, err := s.section(args[0])
		if err != nil {
			return err
		}
		bar, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return s.Leadsheet.MoveSection(sec, bar)
	}},
	"rename": {"rename NAME NEWNAME", 2, func(s *Song, args []string) error {
		sec, err := s.section(args[0])
		if err != nil {
			return err
		}
		return s.Leadsheet.SetSectionName(sec, args[1])
	}},
	"timesig": {"timesig NAME TIMESIG", 2, func(s *Song, args []string) error {
		sec, err := s.section(args[0])
		if err != nil {
			return err
		}
		ts, err := jamsheet.ParseTimeSignature(args[1])
		if err != nil {
			return err
		}
		return s.Leadsheet.SetSectionTimeSignature(sec, ts)
	}},
	"chord": {"chord BAR:BEAT SYMBOL", 2, func(s *Song, args []string) error {
		pos, err := ParsePosition(args[0])
		if err != nil {
			return err
		}
		return s.Leadsheet.AddItem(sheet.NewChord(pos, args[1]))
	}},
	"note": {"note BAR:BEAT TEXT...", 2, func(s *Song, args []string) error {
		pos, err := ParsePosition(args[0])
		if err != nil {
			return err
		}
		return s.Leadsheet.AddItem(sheet.NewAnnotation(pos, strings.Join(args[1:], " ")))
	}},
	"remove": {"remove BAR:BEAT", 1, func(s *Song, args []string) error {
		pos, err := ParsePosition(args[0])
		if err != nil {
			return err
		}
		var items []*sheet.Item
		for _, it := range s.Leadsheet.ItemsInRange(pos, pos) {
			if !it.IsSection() {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			return fmt.Errorf("no chord or note at %v", pos)
		}
		return s.Leadsheet.RemoveItems(items)
	}},
	"move": {"move BAR:BEAT BAR:BEAT", 2, func(s *Song, args []string) error {
		from, err := ParsePosition(args[0])
		if err != nil {
			return err
		}
		to, err := ParsePosition(args[1])
		if err != nil {
			return err
		}
		for _, it := range s.Leadsheet.ItemsInRange(from, from) {
			if !it.IsSection() {
				return s.Leadsheet.MoveItem(it, to)
			}
		}
		return fmt.Errorf("no chord or note at %v", from)
	}},
	"rhythm": {"rhythm BAR RHYTHM", 2, func(s *Song, args []string) error {
		p, err := s.part(args[0])
		if err != nil {
			return err
		}
		r := s.Library.Rhythm(args[1])
		if r == nil {
			return fmt.Errorf("unknown rhythm %q", args[1])
		}
		if r.TimeSignature != p.Rhythm.TimeSignature {
			return fmt.Errorf("rhythm %v does not fit a part in %v", r, p.Rhythm.TimeSignature)
		}
		return s.Arrangement.ReplaceParts([]arrange.Part{p}, []arrange.Part{p.WithRhythm(r)})
	}},
	"param": {"param BAR ID VALUE", 3, func(s *Song, args []string) error {
		p, err := s.part(args[0])
		if err != nil {
			return err
		}
		par, ok := p.Rhythm.Parameter(args[1])
		if !ok {
			return fmt.Errorf("rhythm %v has no parameter %q", p.Rhythm, args[1])
		}
		v, err := par.Parse(args[2])
		if err != nil {
			return err
		}
		return s.Arrangement.SetParameterValue(p, par.ID, v)
	}},
	"split": {"split BAR AT", 2, func(s *Song, args []string) error {
		p, err := s.part(args[0])
		if err != nil {
			return err
		}
		at, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return s.Arrangement.SplitPart(p, at)
	}},
	"part-name": {"part-name BAR NAME", 2, func(s *Song, args []string) error {
		p, err := s.part(args[0])
		if err != nil {
			return err
		}
		return s.Arrangement.RenameParts([]arrange.Part{p}, strings.Join(args[1:], " "))
	}},
}

// Commands returns the usage lines of the commands understood by Exec.
func Commands() []string {
	ret := []string{"undo", "redo"}
	for _, c := range commands {
		ret = append(ret, c.usage)
	}
	slices.Sort(ret[2:])
	return ret
}

// Exec runs a command line like "section 4 B 3/4" as one undoable step. The
// commands "undo" and "redo" step in the history.
func (s *Song) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]
	switch name {
	case "undo":
		if !s.Undo() {
			return errors.New("nothing to undo")
		}
		return nil
	case "redo":
		if !s.Redo() {
			return errors.New("nothing to redo")
		}
		return nil
	}
	c, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	if len(args) < c.args {
		return fmt.Errorf("usage: %s", c.usage)
	}
	return s.Do(name, func() error { return c.run(s, args) })
}

// ParsePosition parses positions like "4" or "4:2.5".
func ParsePosition(str string) (jamsheet.Position, error) {
	bar, beat, found := strings.Cut(str, ":")
	var pos jamsheet.Position
	var err error
	if pos.Bar, err = strconv.Atoi(bar); err != nil {
		return pos, fmt.Errorf("invalid bar in %q: %w", str, err)
	}
	if found {
		if pos.Beat, err = strconv.ParseFloat(beat, 64); err != nil {
			return pos, fmt.Errorf("invalid beat in %q: %w", str, err)
		}
	}
	return pos, nil
}

func (s *Song) section(name string) (*sheet.Item, error) {
	if sec := s.Leadsheet.SectionByName(name); sec != nil {
		return sec, nil
	}
	return nil, fmt.Errorf("no section %q", name)
}

func (s *Song) part(bar string) (arrange.Part, error) {
	n, err := strconv.Atoi(bar)
	if err != nil {
		return arrange.Part{}, err
	}
	p, ok := s.Arrangement.PartAt(n)
	if !ok {
		return arrange.Part{}, fmt.Errorf("no part at bar %d", n)
	}
	return p, nil
}

func twoInts(args []string) (int, int, error) {
	a, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(args[1])
	return a, b, err
}
