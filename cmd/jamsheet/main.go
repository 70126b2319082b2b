package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/golang/glog"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/vsariola/jamsheet/config"
	"github.com/vsariola/jamsheet/rhythm"
	"github.com/vsariola/jamsheet/song"
	"github.com/vsariola/jamsheet/version"
)

const defaultTemplate = `{{ .Leadsheet.Size }} bars
{{- range .Leadsheet.Items }}
{{ printf "%4d:%-6g" .Bar .Beat }}
{{- with .Section }} [{{ .Name }} {{ .TimeSignature }}]{{ end }}
{{- with .Chord }} {{ . }}{{ end }}
{{- with .Annotation }} {{ .Text | quote }}{{ end }}
{{- end }}
parts:
{{- range .Parts }}
{{ printf "%4d" .StartBar }} {{ printf "+%-3d" .Length }} {{ .Name | quote }} {{ .Rhythm }}
{{- range $id, $v := .Params }} {{ $id }}={{ $v }}{{ end }}
{{- end }}
`

func main() {
	input := flag.String("i", "", "Song file to edit. Without one, a new song is created.")
	output := flag.String("o", "", "Write the edited song to this file. Use - for standard output.")
	midiOut := flag.String("mid", "", "Write the meter track of the song to this MIDI file.")
	tmplPath := flag.String("t", "", "Print the song with this text template instead of the default listing.")
	quiet := flag.Bool("q", false, "Do not print the song.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Set("logtostderr", "true")
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		glog.Fatalf("invalid configuration: %v", err)
	}
	defer glog.Flush()
	if *versionFlag {
		fmt.Println(version.String())
		return
	}
	lib, err := loadRhythms(cfg)
	if err != nil {
		glog.Fatalf("could not load rhythms: %v", err)
	}
	s, err := openSong(*input, cfg, lib)
	if err != nil {
		glog.Fatalf("could not open song: %v", err)
	}
	defer s.Close()
	for _, line := range flag.Args() {
		if err := s.Exec(line); err != nil {
			glog.Errorf("%s: %v", line, err)
			os.Exit(1)
		}
		glog.V(1).Infof("%s: done", line)
	}
	if err := s.Check(); err != nil {
		glog.Fatalf("arrangement out of sync: %v", err)
	}
	if *output != "" {
		if err := writeSong(s, *output); err != nil {
			glog.Fatalf("could not write song: %v", err)
		}
	}
	if *midiOut != "" {
		if err := writeMeter(s, *midiOut); err != nil {
			glog.Fatalf("could not write MIDI file: %v", err)
		}
	}
	if !*quiet && *output != "-" {
		if err := printSong(s, *tmplPath); err != nil {
			glog.Fatalf("could not print song: %v", err)
		}
	}
}

func loadRhythms(cfg *config.Config) (*rhythm.Database, error) {
	db := rhythm.Builtin()
	if cfg.Rhythms.User {
		if dir, err := rhythm.UserDir(); err == nil {
			if _, err := os.Stat(dir); err == nil {
				if err := db.ReadDir(os.DirFS(dir)); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, f := range cfg.Rhythms.Files {
		if err := db.ReadFile(f); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func openSong(path string, cfg *config.Config, lib *rhythm.Database) (*song.Song, error) {
	if path == "" {
		return song.New(cfg, lib)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return song.Read(f, cfg, lib)
}

func writeSong(s *song.Song, path string) error {
	if path == "-" {
		return s.Write(os.Stdout)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMeter(s *song.Song, path string) error {
	resolution := smf.MetricTicks(960)
	f := smf.New()
	f.TimeFormat = resolution
	if err := f.Add(s.Leadsheet.MeterTrack(resolution)); err != nil {
		return err
	}
	return f.WriteFile(path)
}

func printSong(s *song.Song, path string) error {
	text := defaultTemplate
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text = string(b)
	}
	tmpl, err := template.New("song").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return err
	}
	return tmpl.Execute(os.Stdout, s.File())
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Jamsheet edits leadsheets and keeps their arrangements in sync.\nUsage: %s [flags] [command ...]\n\nEach command is one argument, e.g. \"section 4 B 3/4\". Commands:\n", os.Args[0])
	for _, c := range song.Commands() {
		fmt.Fprintf(os.Stderr, "  %s\n", c)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nThe settings are read from "+config.DefaultPath()+" unless -config is given.")
}
