// Package version reports the build version.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// set with -ldflags "-X github.com/effective-security/xrpm/internal/version.version=..."
var (
	version = ""
	commit  = ""
)

// Info describes the build
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
}

// String returns the version with the short commit
func (v Info) String() string {
	if v.Commit == "" {
		return v.Version
	}
	c := v.Commit
	if len(c) > 12 {
		c = c[:12]
	}
	return fmt.Sprintf("%s (%s)", v.Version, c)
}

// Current returns the version of the running binary
func Current() Info {
	v := Info{
		Version: version,
		Commit:  commit,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v.Version == "" && bi.Main.Version != "(devel)" {
			v.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && v.Commit == "" {
				v.Commit = s.Value
			}
		}
	}
	if v.Version == "" {
		v.Version = "v0.0.0-dev"
	}
	v.Version = "v" + strings.TrimPrefix(v.Version, "v")
	return v
}
