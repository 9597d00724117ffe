// Package version provides build information.
// The values can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/oncurve/internal/version.Version=v1.2.3"
package version

import "runtime"

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "unknown"
)

// Info is the JSON view of the build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// Get returns the full build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, GoVersion: runtime.Version()}
}
