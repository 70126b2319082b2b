// Package version reports the version of the jamsheet binary.
package version

import "runtime/debug"

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/vsariola/jamsheet/version.Version=$(git describe --dirty)"
var Version string

// String returns Version if it was set, else the short VCS revision stamped
// into the binary, else "devel".
func String() string {
	if Version != "" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}
	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	switch {
	case rev == "":
		return "devel"
	case dirty:
		return rev + "-dirty"
	}
	return rev
}
