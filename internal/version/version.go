// Package version reports the fritzpowerline build version.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/fritzpowerline/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/fritzpowerline/internal/version.Commit=abc123"
var (
	// Version is the release version
	Version = ""
	// Commit is the short git commit hash
	Commit = ""
)

const product = "fritzpowerline"

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		fromBuildInfo(info)
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills unset values from the module version (set by
// "go install ...@vX.Y.Z") and the VCS stamp of a source build
func fromBuildInfo(info *debug.BuildInfo) {
	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	if Commit != "" {
		return
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && dirty {
		revision += "-dirty"
	}
	Commit = revision
}

// Full returns the version with its commit, e.g. "v1.2.3 (commit: abc1234)"
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent returns the User-Agent sent to the router,
// e.g. "fritzpowerline/v1.2.3 (commit: abc1234)"
func UserAgent() string {
	return product + "/" + Full()
}
