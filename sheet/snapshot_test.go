package sheet_test

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
	"github.com/vsariola/jamsheet/sheet"
	"gitlab.com/gomidi/midi/v2/smf"
	"gopkg.in/yaml.v3"
)

func exampleSheet(t *testing.T) (*sheet.Leadsheet, *edit.History) {
	ls, h := newSheet(t, 12)
	do(t, h, "build", func() error {
		if err := ls.AddSection(sheet.NewSection(4, "B", jamsheet.ThreeFour)); err != nil {
			return err
		}
		if err := ls.AddSection(sheet.NewSection(8, "C", jamsheet.SixEight)); err != nil {
			return err
		}
		for _, it := range []*sheet.Item{
			sheet.NewChord(pos(0, 0), "Cmaj7"),
			sheet.NewChord(pos(1, 2), "A7"),
			sheet.NewAnnotation(pos(1, 2), "push"),
			sheet.NewChord(pos(5, 1.5), "Dm"),
			sheet.NewChord(pos(9, 4.5), "G7"),
		} {
			if err := ls.AddItem(it); err != nil {
				return err
			}
		}
		return nil
	})
	return ls, h
}

func TestSnapshotRoundTrip(t *testing.T) {
	ls, _ := exampleSheet(t)
	snap := ls.Snapshot()
	b, err := yaml.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded sheet.Snapshot
	if err := yaml.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	rebuilt, err := sheet.FromSnapshot(decoded, 64)
	if err != nil {
		t.Fatalf("FromSnapshot failed: %v", err)
	}
	assert.Equal(t, rebuilt.Snapshot(), snap)
}

func TestFromSnapshotRejectsBrokenSnapshots(t *testing.T) {
	a := jamsheet.Section{Name: "A", TimeSignature: jamsheet.FourFour}
	b := jamsheet.Section{Name: "A", TimeSignature: jamsheet.ThreeFour}
	for name, snap := range map[string]sheet.Snapshot{
		"no first section":  {Size: 4, Items: []sheet.Record{{Bar: 1, Chord: "C"}}},
		"two first section": {Size: 4, Items: []sheet.Record{{Section: &a}, {Section: &a}}},
		"duplicate name":    {Size: 4, Items: []sheet.Record{{Section: &a}, {Bar: 2, Section: &b}}},
		"item out of range": {Size: 4, Items: []sheet.Record{{Section: &a}, {Bar: 4, Chord: "C"}}},
		"empty record":      {Size: 4, Items: []sheet.Record{{Section: &a}, {Bar: 1}}},
	} {
		if _, err := sheet.FromSnapshot(snap, 64); err == nil {
			t.Errorf("%s: FromSnapshot did not fail", name)
		}
	}
}

func TestCopyPaste(t *testing.T) {
	ls, h := exampleSheet(t)
	data, err := sheet.CopyItems(ls.ItemsInBars(1, 1))
	if err != nil {
		t.Fatalf("CopyItems failed: %v", err)
	}
	do(t, h, "paste", func() error { return ls.PasteItems(data, 2) })
	got := ls.ItemsInBars(2, 2)
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].Data(), jamsheet.ChordSymbol{Chord: "A7"})
	assert.Equal(t, got[1].Data(), jamsheet.Annotation{Text: "push"})
	// pasting into the last bar of a 6/8 section
	do(t, h, "paste", func() error { return ls.PasteItems(data, 11) })
	assert.Equal(t, len(ls.ItemsInBars(11, 11)), 2)
	h.Undo()
	assert.Equal(t, len(ls.ItemsInBars(11, 11)), 0)
}

func TestMeterTrack(t *testing.T) {
	ls, _ := exampleSheet(t)
	track := ls.MeterTrack(smf.MetricTicks(960))
	var meters, markers int
	var ticks uint32
	for _, ev := range track {
		ticks += ev.Delta
		var num, denom uint8
		var text string
		switch {
		case ev.Message.GetMetaMeter(&num, &denom):
			meters++
		case ev.Message.GetMetaMarker(&text):
			markers++
		}
	}
	assert.Equal(t, meters, 3)
	assert.Equal(t, markers, 3)
	// 4 bars of 4/4, 4 bars of 3/4 and 4 bars of 6/8 in quarter notes
	assert.Equal(t, ticks, uint32((16+12+12)*960))
}
