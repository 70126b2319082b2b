// Package rhythm provides the rhythms of the arrangement parts: a database
// of the built-in rhythms, extended with the rhythm files of the user.
package rhythm

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/vsariola/jamsheet"
	"gopkg.in/yaml.v3"
)

//go:embed rhythms.yml
var builtinRhythms []byte

// Database is a Registry of rhythms. Rhythms are added to the database when
// it is being set up; after that, the database and its rhythms are not
// modified and can be shared.
type Database struct {
	rhythms []*jamsheet.Rhythm
	byID    map[string]*jamsheet.Rhythm
}

// New returns an empty database.
func New() *Database {
	return &Database{byID: map[string]*jamsheet.Rhythm{}}
}

// Builtin returns a database with the built-in rhythms.
func Builtin() *Database {
	d := New()
	if err := d.Read(bytes.NewReader(builtinRhythms)); err != nil {
		panic(fmt.Sprintf("rhythm: built-in rhythms: %v", err))
	}
	return d
}

// Read adds the rhythms of a YAML rhythm list. A rhythm with the id of an
// already known rhythm replaces it.
func (d *Database) Read(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var rhythms []*jamsheet.Rhythm
	if err := dec.Decode(&rhythms); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not decode rhythms: %w", err)
	}
	for _, r := range rhythms {
		if err := d.Add(r); err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := d.Read(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ReadDir adds the rhythms of all .yml and .yaml files in fsys. Files that
// cannot be read are skipped with a warning.
func (d *Database) ReadDir(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ext := filepath.Ext(path); e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			return nil
		}
		f, err := fsys.Open(path)
		if err != nil {
			glog.Warningf("skipping rhythm file %s: %v", path, err)
			return nil
		}
		defer f.Close()
		if err := d.Read(f); err != nil {
			glog.Warningf("skipping rhythm file %s: %v", path, err)
		}
		return nil
	})
}

// UserDir returns the directory of the rhythm files of the user.
func UserDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jamsheet", "rhythms"), nil
}

// Add validates a rhythm and adds it to the database.
func (d *Database) Add(r *jamsheet.Rhythm) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if old, ok := d.byID[r.ID]; ok {
		glog.V(1).Infof("rhythm %s redefined", r.ID)
		for i, o := range d.rhythms {
			if o == old {
				d.rhythms[i] = r
			}
		}
	} else {
		d.rhythms = append(d.rhythms, r)
	}
	d.byID[r.ID] = r
	return nil
}

// Rhythm returns the rhythm with the given id, or nil.
func (d *Database) Rhythm(id string) *jamsheet.Rhythm { return d.byID[id] }

// Rhythms returns all rhythms in the order they were added.
func (d *Database) Rhythms() []*jamsheet.Rhythm {
	return append([]*jamsheet.Rhythm(nil), d.rhythms...)
}

// ForTimeSignature returns the rhythms in time signature ts.
func (d *Database) ForTimeSignature(ts jamsheet.TimeSignature) []*jamsheet.Rhythm {
	var ret []*jamsheet.Rhythm
	for _, r := range d.rhythms {
		if r.TimeSignature == ts {
			ret = append(ret, r)
		}
	}
	return ret
}

// DefaultRhythm returns the first rhythm added for ts.
func (d *Database) DefaultRhythm(ts jamsheet.TimeSignature) (*jamsheet.Rhythm, error) {
	for _, r := range d.rhythms {
		if r.TimeSignature == ts {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no rhythm in %v", ts)
}

// AdaptedRhythm returns the rhythm of the same family as r in time signature
// ts, or nil if the family has none.
func (d *Database) AdaptedRhythm(r *jamsheet.Rhythm, ts jamsheet.TimeSignature) *jamsheet.Rhythm {
	if r == nil {
		return nil
	}
	if r.TimeSignature == ts {
		return r
	}
	if r.Family == "" {
		return nil
	}
	for _, o := range d.rhythms {
		if o.Family == r.Family && o.TimeSignature == ts {
			return o
		}
	}
	return nil
}
