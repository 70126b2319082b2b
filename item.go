package jamsheet

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ItemData is the typed payload of an item placed on a leadsheet. The
	// concrete types are Section, ChordSymbol and Annotation; all of them are
	// plain values.
	ItemData interface {
		Kind() ItemKind
		Validate() error
		String() string
	}

	// ItemKind tells the type of the item data. The numeric order is also the
	// order of items that share the same position.
	ItemKind int

	// Section starts a named part of the leadsheet and sets the time signature
	// in effect until the next section. Sections are always at beat 0 and their
	// names are unique within a leadsheet.
	Section struct {
		Name          string
		TimeSignature TimeSignature `yaml:"timesig"`
	}

	// ChordSymbol holds the harmony at a position. The chord text is not
	// interpreted here.
	ChordSymbol struct {
		Chord string
	}

	// Annotation is a free-form text note.
	Annotation struct {
		Text string
	}
)

const (
	SectionKind ItemKind = iota
	ChordSymbolKind
	AnnotationKind
)

func (k ItemKind) String() string {
	switch k {
	case SectionKind:
		return "section"
	case ChordSymbolKind:
		return "chord"
	case AnnotationKind:
		return "annotation"
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

func (s Section) Kind() ItemKind { return SectionKind }

func (s Section) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("section name is empty")
	}
	if !s.TimeSignature.Valid() {
		return fmt.Errorf("section %q: unsupported time signature %v", s.Name, s.TimeSignature)
	}
	return nil
}

func (s Section) String() string { return s.Name + " " + s.TimeSignature.String() }

func (c ChordSymbol) Kind() ItemKind { return ChordSymbolKind }

func (c ChordSymbol) Validate() error {
	if strings.TrimSpace(c.Chord) == "" {
		return errors.New("chord symbol is empty")
	}
	return nil
}

func (c ChordSymbol) String() string { return c.Chord }

func (a Annotation) Kind() ItemKind { return AnnotationKind }

func (a Annotation) Validate() error { return nil }

func (a Annotation) String() string { return "\"" + a.Text + "\"" }
