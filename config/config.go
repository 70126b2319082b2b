// Package config handles the settings of jamsheet: defaults, a TOML file and
// command line flags, in increasing priority.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
	"github.com/vsariola/jamsheet/sheet"
)

// Config holds all the settings.
type Config struct {
	Leadsheet   LeadsheetConfig   `toml:"leadsheet"`
	History     HistoryConfig     `toml:"history"`
	Arrangement ArrangementConfig `toml:"arrangement"`
	Rhythms     RhythmsConfig     `toml:"rhythms"`
}

// LeadsheetConfig holds the limits of leadsheets and the shape of new ones.
type LeadsheetConfig struct {
	MaxSize        int                    `toml:"max_size"`
	DefaultSize    int                    `toml:"default_size"`
	InitialSection string                 `toml:"initial_section"`
	TimeSignature  jamsheet.TimeSignature `toml:"time_signature"`
}

type HistoryConfig struct {
	MaxUndo int `toml:"max_undo"`
}

type ArrangementConfig struct {
	MaxParts int `toml:"max_parts"` // 0 = unlimited
}

// RhythmsConfig lists the rhythm files loaded on top of the built-in ones.
type RhythmsConfig struct {
	Files []string `toml:"files"`
	User  bool     `toml:"user"` // also load the rhythm directory of the user
}

// Default returns a Config with all default values.
func Default() *Config {
	return &Config{
		Leadsheet: LeadsheetConfig{
			MaxSize:        sheet.DefaultMaxSize,
			DefaultSize:    8,
			InitialSection: "A",
			TimeSignature:  jamsheet.FourFour,
		},
		History: HistoryConfig{
			MaxUndo: edit.DefaultMaxUndo,
		},
		Rhythms: RhythmsConfig{
			User: true,
		},
	}
}

// DefaultPath returns the path of the configuration file of the user.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "jamsheet", "config.toml")
}

// Load registers the configuration flags on fs, parses args and builds the
// configuration: defaults, overridden by the TOML file given with -config
// (or the one in DefaultPath, if it exists), overridden by the flags that
// were set.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()
	path := fs.String("config", "", "TOML configuration file (default: "+DefaultPath()+")")
	maxSize := fs.Int("max-size", 0, "Maximum number of bars in a leadsheet")
	size := fs.Int("size", 0, "Number of bars in a new leadsheet")
	section := fs.String("section", "", "Name of the first section of a new leadsheet")
	ts := jamsheet.FourFour
	fs.TextVar(&ts, "timesig", jamsheet.FourFour, "Time signature of a new leadsheet")
	maxUndo := fs.Int("max-undo", 0, "Number of undo steps kept")
	maxParts := fs.Int("max-parts", 0, "Maximum number of parts in an arrangement, 0 = unlimited")
	rhythms := fs.String("rhythms", "", "Comma separated list of additional rhythm files")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path != "" {
		if err := cfg.LoadTOML(*path); err != nil {
			return nil, err
		}
	} else if p := DefaultPath(); p != "" {
		if err := cfg.LoadTOML(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-size":
			cfg.Leadsheet.MaxSize = *maxSize
		case "size":
			cfg.Leadsheet.DefaultSize = *size
		case "section":
			cfg.Leadsheet.InitialSection = *section
		case "timesig":
			cfg.Leadsheet.TimeSignature = ts
		case "max-undo":
			cfg.History.MaxUndo = *maxUndo
		case "max-parts":
			cfg.Arrangement.MaxParts = *maxParts
		case "rhythms":
			for _, file := range strings.Split(*rhythms, ",") {
				if file = strings.TrimSpace(file); file != "" {
					cfg.Rhythms.Files = append(cfg.Rhythms.Files, file)
				}
			}
		}
	})
	return cfg, cfg.Validate()
}

// LoadTOML overrides the settings found in a TOML file.
func (c *Config) LoadTOML(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	l := c.Leadsheet
	if l.MaxSize < 1 {
		return fmt.Errorf("leadsheet.max_size %d < 1", l.MaxSize)
	}
	if l.DefaultSize < 1 || l.DefaultSize > l.MaxSize {
		return fmt.Errorf("leadsheet.default_size %d not in [1,%d]", l.DefaultSize, l.MaxSize)
	}
	if err := (jamsheet.Section{Name: l.InitialSection, TimeSignature: l.TimeSignature}).Validate(); err != nil {
		return fmt.Errorf("leadsheet: %w", err)
	}
	if c.History.MaxUndo < 1 {
		return fmt.Errorf("history.max_undo %d < 1", c.History.MaxUndo)
	}
	if c.Arrangement.MaxParts < 0 {
		return fmt.Errorf("arrangement.max_parts %d < 0", c.Arrangement.MaxParts)
	}
	return nil
}
