package song

import (
	"fmt"
	"io"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/vsariola/jamsheet/arrange"
	"github.com/vsariola/jamsheet/config"
	"github.com/vsariola/jamsheet/sheet"
)

type (
	// File is the YAML layout of a song file.
	File struct {
		Leadsheet sheet.Snapshot
		Parts     []PartRecord `yaml:",omitempty"`
	}

	// PartRecord is a part in a song file. The section is referred to by
	// name and the rhythm by id.
	PartRecord struct {
		StartBar int
		Length   int
		Section  string `yaml:",omitempty"`
		Name     string
		Rhythm   string
		Params   map[string]int `yaml:",omitempty,flow"`
	}
)

// File returns the song as a File.
func (s *Song) File() File {
	parts := s.Arrangement.Parts()
	f := File{Leadsheet: s.Leadsheet.Snapshot(), Parts: make([]PartRecord, len(parts))}
	for i, p := range parts {
		r := PartRecord{StartBar: p.StartBar, Length: p.Length, Name: p.Name, Rhythm: p.Rhythm.ID, Params: p.Params}
		if p.Section != nil {
			if sec, ok := p.Section.Section(); ok {
				r.Section = sec.Name
			}
		}
		f.Parts[i] = r
	}
	return f
}

// Write writes the song as YAML.
func (s *Song) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.File()); err != nil {
		return fmt.Errorf("could not write song: %w", err)
	}
	return enc.Close()
}

// Read reads a song written by Write. The leadsheet is rebuilt with its
// normal operations. If the parts of the file do not fit the leadsheet, or
// refer to unknown rhythms, the arrangement is generated anew.
func Read(r io.Reader, cfg *config.Config, lib Library) (*Song, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("could not read song: %w", err)
	}
	return FromFile(f, cfg, lib)
}

// FromFile builds a song from a File.
func FromFile(f File, cfg *config.Config, lib Library) (*Song, error) {
	ls, err := sheet.FromSnapshot(f.Leadsheet, cfg.Leadsheet.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("invalid leadsheet: %w", err)
	}
	if len(f.Parts) == 0 {
		return FromLeadsheet(cfg, lib, ls)
	}
	parts, err := f.parts(ls, lib)
	if err == nil {
		err = arrange.Consistent(ls, parts)
	}
	if err != nil {
		glog.Warningf("regenerating the arrangement: %v", err)
		return FromLeadsheet(cfg, lib, ls)
	}
	arr, err := arrange.NewWithParts(parts)
	if err != nil {
		glog.Warningf("regenerating the arrangement: %v", err)
		return FromLeadsheet(cfg, lib, ls)
	}
	for _, p := range parts {
		arr.SetLastRhythm(p.Rhythm)
	}
	return assemble(cfg, lib, ls, arr, arrange.NewSynchronizer(ls, arr, lib)), nil
}

func (f File) parts(ls *sheet.Leadsheet, lib Library) ([]arrange.Part, error) {
	ret := make([]arrange.Part, len(f.Parts))
	for i, r := range f.Parts {
		rhythm := lib.Rhythm(r.Rhythm)
		if rhythm == nil {
			return nil, fmt.Errorf("part %q: unknown rhythm %q", r.Name, r.Rhythm)
		}
		p := arrange.NewPart(rhythm, r.StartBar, r.Length, nil)
		if r.Section != "" {
			if p.Section = ls.SectionByName(r.Section); p.Section == nil {
				return nil, fmt.Errorf("part %q: unknown section %q", r.Name, r.Section)
			}
		}
		p.Name = r.Name
		for id, v := range r.Params {
			p.Params[id] = v
		}
		ret[i] = p
	}
	return ret, nil
}
