package rhythm_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-playground/assert/v2"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/rhythm"
)

func TestBuiltinCoversAllTimeSignatures(t *testing.T) {
	db := rhythm.Builtin()
	for _, ts := range jamsheet.TimeSignatures {
		r, err := db.DefaultRhythm(ts)
		if err != nil {
			t.Errorf("no default rhythm for %v: %v", ts, err)
			continue
		}
		assert.Equal(t, r.TimeSignature, ts)
	}
}

func TestAdaptedRhythm(t *testing.T) {
	db := rhythm.Builtin()
	pop := db.Rhythm("pop-4-4")
	assert.Equal(t, db.AdaptedRhythm(pop, jamsheet.FourFour) == pop, true)
	assert.Equal(t, db.AdaptedRhythm(pop, jamsheet.TwoFour).ID, "pop-2-4")
	assert.Equal(t, db.AdaptedRhythm(pop, jamsheet.NineEight) == nil, true)
	swing := db.Rhythm("swing-4-4")
	assert.Equal(t, db.AdaptedRhythm(swing, jamsheet.ThreeFour).ID, "swing-3-4")
	assert.Equal(t, db.AdaptedRhythm(nil, jamsheet.ThreeFour) == nil, true)
}

const userRhythms = `
- id: pop-4-4
  name: My pop
  family: pop
  timesig: 4/4
- id: bossa-4-4
  name: Bossa
  family: latin
  timesig: 4/4
  parameters:
    - {id: intensity, name: Intensity, minvalue: 0, maxvalue: 100, default: 40}
`

func TestReadRedefinesAndAdds(t *testing.T) {
	db := rhythm.Builtin()
	n := len(db.Rhythms())
	if err := db.Read(strings.NewReader(userRhythms)); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	assert.Equal(t, len(db.Rhythms()), n+1)
	assert.Equal(t, db.Rhythm("pop-4-4").Name, "My pop")
	def, _ := db.DefaultRhythm(jamsheet.FourFour)
	assert.Equal(t, def.Name, "My pop")
	assert.Equal(t, len(db.ForTimeSignature(jamsheet.FourFour)), 4)
}

func TestReadRejectsUnknownFields(t *testing.T) {
	err := rhythm.New().Read(strings.NewReader("- {id: x, timesig: 4/4, tempo: 120}"))
	assert.NotEqual(t, err, nil)
	err = rhythm.New().Read(strings.NewReader("- {id: x, timesig: 5/8}"))
	assert.NotEqual(t, err, nil)
	assert.Equal(t, rhythm.New().Read(strings.NewReader("")), nil)
}

func TestReadDirSkipsBrokenFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"good.yml":         {Data: []byte(userRhythms)},
		"sub/broken.yaml":  {Data: []byte("- {id: y, timesig: 1/1}")},
		"notes.txt":        {Data: []byte("not yaml")},
		"sub/waltzes.yaml": {Data: []byte("- {id: w, name: W, timesig: 3/4}")},
	}
	db := rhythm.New()
	if err := db.ReadDir(fsys); err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	assert.Equal(t, len(db.Rhythms()), 3)
	assert.Equal(t, db.Rhythm("y") == nil, true)
	_, err := db.DefaultRhythm(jamsheet.SixEight)
	assert.NotEqual(t, err, nil)
}
