// Package buildinfo carries version details stamped in at link time.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/cleared-dev/ledgercore/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build details for --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
