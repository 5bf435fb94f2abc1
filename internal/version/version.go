package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the current application version.
	// It is populated by the build system (ldflags) or falls back to module build info.
	Version = "dev"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// Effective returns Version, or the main module version recorded by the
// toolchain when no version was stamped at link time.
func Effective() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String renders a one-line build description.
func String() string {
	return fmt.Sprintf("esconf %s (commit %s, built %s, %s)", Effective(), Commit, Date, runtime.Version())
}
