// Package song puts a leadsheet, its arrangement and their undo history
// together, and reads and writes them as YAML song files.
package song

import (
	"fmt"

	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/arrange"
	"github.com/vsariola/jamsheet/config"
	"github.com/vsariola/jamsheet/edit"
	"github.com/vsariola/jamsheet/sheet"
)

type (
	// Song is a leadsheet with a synchronized arrangement. Both record their
	// edits into the same History, so an undo step spans the changes of
	// both.
	Song struct {
		Leadsheet   *sheet.Leadsheet
		Arrangement *arrange.Arrangement
		History     *edit.History
		Library     Library

		sync  *arrange.Synchronizer
		close []func()
	}

	// Library is a rhythm registry where rhythms can also be looked up by
	// id, as needed when reading song files.
	Library interface {
		jamsheet.Registry
		Rhythm(id string) *jamsheet.Rhythm
	}
)

// New returns a song with an empty leadsheet shaped by cfg.
func New(cfg *config.Config, lib Library) (*Song, error) {
	first := jamsheet.Section{Name: cfg.Leadsheet.InitialSection, TimeSignature: cfg.Leadsheet.TimeSignature}
	ls, err := sheet.New(first, cfg.Leadsheet.DefaultSize, cfg.Leadsheet.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("could not create leadsheet: %w", err)
	}
	arr, sync, err := arrange.NewFromLeadsheet(ls, lib)
	if err != nil {
		return nil, fmt.Errorf("could not create arrangement: %w", err)
	}
	return assemble(cfg, lib, ls, arr, sync), nil
}

// FromLeadsheet returns a song around an existing leadsheet, generating the
// arrangement.
func FromLeadsheet(cfg *config.Config, lib Library, ls *sheet.Leadsheet) (*Song, error) {
	arr, sync, err := arrange.NewFromLeadsheet(ls, lib)
	if err != nil {
		return nil, fmt.Errorf("could not create arrangement: %w", err)
	}
	return assemble(cfg, lib, ls, arr, sync), nil
}

func assemble(cfg *config.Config, lib Library, ls *sheet.Leadsheet, arr *arrange.Arrangement, sync *arrange.Synchronizer) *Song {
	s := &Song{
		Leadsheet:   ls,
		Arrangement: arr,
		History:     edit.NewHistory(cfg.History.MaxUndo),
		Library:     lib,
		sync:        sync,
	}
	s.close = append(s.close,
		ls.AddEditSink(s.History),
		arr.AddEditSink(s.History),
		sync.Close)
	if cfg.Arrangement.MaxParts > 0 {
		s.close = append(s.close, arrange.LimitParts(arr, cfg.Arrangement.MaxParts))
	}
	return s
}

// Do runs fn as one undoable step. If fn fails, everything it changed is
// rolled back and the error is returned.
func (s *Song) Do(name string, fn func() error) error {
	return s.History.Do(name, fn)
}

func (s *Song) Undo() bool { return s.History.Undo() }
func (s *Song) Redo() bool { return s.History.Redo() }

// Check reports an error if the arrangement is not consistent with the
// leadsheet.
func (s *Song) Check() error {
	if got, want := s.Arrangement.Size(), s.Leadsheet.Size(); got != want {
		return fmt.Errorf("arrangement has %d bars, leadsheet %d", got, want)
	}
	return arrange.Consistent(s.Leadsheet, s.Arrangement.Parts())
}

// Close detaches the arrangement and the history from the leadsheet.
func (s *Song) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
	s.close = nil
}
