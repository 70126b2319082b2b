package arrange_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/arrange"
	"github.com/vsariola/jamsheet/edit"
	"github.com/vsariola/jamsheet/sheet"
)

type fuzzOp struct {
	name string
	run  func(f *fixture, rng *rand.Rand) error
}

var sectionNamePool = []string{"A", "B", "C", "D", "Verse", "Chorus", "Bridge"}

func randomSection(f *fixture, rng *rand.Rand) *sheet.Item {
	secs := f.ls.Sections()
	return secs[rng.Intn(len(secs))]
}

var fuzzOps = []fuzzOp{
	{"AddSection", func(f *fixture, rng *rand.Rand) error {
		ts := jamsheet.TimeSignatures[rng.Intn(len(jamsheet.TimeSignatures))]
		return f.ls.AddSection(sheet.NewSection(rng.Intn(f.ls.Size()), sectionNamePool[rng.Intn(len(sectionNamePool))], ts))
	}},
	{"RemoveSection", func(f *fixture, rng *rand.Rand) error {
		return f.ls.RemoveSection(randomSection(f, rng))
	}},
	{"MoveSection", func(f *fixture, rng *rand.Rand) error {
		return f.ls.MoveSection(randomSection(f, rng), rng.Intn(f.ls.Size()))
	}},
	{"SetSectionName", func(f *fixture, rng *rand.Rand) error {
		return f.ls.SetSectionName(randomSection(f, rng), sectionNamePool[rng.Intn(len(sectionNamePool))])
	}},
	{"SetSectionTimeSignature", func(f *fixture, rng *rand.Rand) error {
		ts := jamsheet.TimeSignatures[rng.Intn(len(jamsheet.TimeSignatures))]
		return f.ls.SetSectionTimeSignature(randomSection(f, rng), ts)
	}},
	{"InsertBars", func(f *fixture, rng *rand.Rand) error {
		return f.ls.InsertBars(rng.Intn(f.ls.Size()+1), 1+rng.Intn(3))
	}},
	{"DeleteBars", func(f *fixture, rng *rand.Rand) error {
		from := rng.Intn(f.ls.Size())
		return f.ls.DeleteBars(from, from+rng.Intn(3))
	}},
	{"SetSize", func(f *fixture, rng *rand.Rand) error {
		return f.ls.SetSize(1 + rng.Intn(24))
	}},
	{"AddChord", func(f *fixture, rng *rand.Rand) error {
		pos := jamsheet.Position{Bar: rng.Intn(f.ls.Size()), Beat: float64(rng.Intn(8)) / 2}
		return f.ls.AddItem(sheet.NewChord(pos, "C7"))
	}},
	{"SplitPart", func(f *fixture, rng *rand.Rand) error {
		parts := f.arr.Parts()
		p := parts[rng.Intn(len(parts))]
		if p.Length < 2 {
			return nil
		}
		return f.arr.SplitPart(p, p.StartBar+1+rng.Intn(p.Length-1))
	}},
	{"SetParameterValue", func(f *fixture, rng *rand.Rand) error {
		parts := f.arr.Parts()
		p := parts[rng.Intn(len(parts))]
		if len(p.Rhythm.Parameters) == 0 {
			return nil
		}
		par := p.Rhythm.Parameters[rng.Intn(len(p.Rhythm.Parameters))]
		return f.arr.SetParameterValue(p, par.ID, par.MinValue+rng.Intn(par.MaxValue-par.MinValue+1))
	}},
}

func TestSynchronizerFuzz(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			f := newFixture(t, "A", 8)
			initialSheet, initialParts := f.ls.Snapshot(), f.arr.Parts()
			for i := 0; i < 200; i++ {
				switch r := rng.Intn(10); {
				case r == 0:
					f.hist.Undo()
				case r == 1:
					f.hist.Redo()
				default:
					op := fuzzOps[rng.Intn(len(fuzzOps))]
					err := f.hist.Do(op.name, func() error { return op.run(f, rng) })
					if err != nil && !errors.Is(err, edit.ErrPrecondition) {
						t.Fatalf("step %d: %s failed: %v", i, op.name, err)
					}
				}
				f.check(t)
			}
			for f.hist.Undo() {
				f.check(t)
			}
			assert.Equal(t, f.ls.Snapshot(), initialSheet)
			assert.Equal(t, f.arr.Parts(), initialParts)
		})
	}
}

func TestPartLimit(t *testing.T) {
	f := newFixture(t, "A", 8)
	arrange.LimitParts(f.arr, 2)
	p, _ := f.arr.PartAt(0)
	f.do(t, "split", func() error { return f.arr.SplitPart(p, 4) })
	p, _ = f.arr.PartAt(0)
	err := f.hist.Do("split", func() error { return f.arr.SplitPart(p, 2) })
	assert.Equal(t, edit.IsVeto(err), true)
	assert.Equal(t, lengths(f.arr.Parts()), []int{4, 4})
	f.check(t)
}
