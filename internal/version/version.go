/*
Package version provides build information for retroos-brain.

Values are set via ldflags during build:
  - Version: git tag (e.g., v0.3.0)
  - Commit: git commit hash (short form)
  - Date: build date in UTC (YYYY-MM-DD)

Without ldflags the build reports itself as "dev".
*/
package version

// Name is the program name reported to RPC clients and in help output.
const Name = "retroos-brain"

// Build information (set via ldflags during build)
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information in a form suitable for JSON.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current returns the running build's information.
func Current() Info {
	return Info{Name: Name, Version: Version, Commit: Commit, Date: Date}
}

// String formats the build for display.
func (i Info) String() string {
	if i.Version == "dev" {
		return i.Version + " (development build)"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ")"
}
