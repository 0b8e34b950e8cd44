package version

import "fmt"

// Populated via -ldflags at build time.
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the multi-line version banner.
func String() string {
	return fmt.Sprintf("hatchery %s\ncommit: %s\nbuilt:  %s\n", Version, GitCommit, BuildTime)
}
