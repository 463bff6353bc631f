// Package version carries build metadata for the routeflow binary,
// stamped at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String renders the one-line summary printed by the version command.
func String() string {
	return fmt.Sprintf("routeflow %s (commit %s, built %s, %s)", Version, GitCommit, BuildDate, runtime.Version())
}
