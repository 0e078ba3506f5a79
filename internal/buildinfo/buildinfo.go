// Package buildinfo carries version data stamped in at build time and the
// User-Agent derived from it, shared by the library and the CLI.
package buildinfo

import "fmt"

// Populated via -ldflags "-X github.com/hyperifyio/goextract/internal/buildinfo.Version=..." by CI.
// Defaults are meaningful for local development and tests.
var (
	// Version is the semantic version of the built binary.
	Version = "0.0.0-dev"
	// Commit is the VCS commit SHA associated with the build.
	Commit = "unknown"
	// Date is the ISO-8601 timestamp of the build.
	Date = "unknown"
)

// UserAgent identifies this tool to the sites it fetches.
func UserAgent() string {
	return fmt.Sprintf("goextract/%s (+https://github.com/hyperifyio/goextract)", Version)
}
