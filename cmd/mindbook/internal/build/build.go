// Package build carries version information injected at link time.
package build

import "fmt"

// Set via -ldflags "-X .../internal/build.Version=... -X .../internal/build.Commit=...".
var (
	Version = "dev"
	Commit  = "unknown"
)

// String returns the human-readable version line.
func String() string {
	return fmt.Sprintf("mindbook %s (%s)", Version, Commit)
}
