// Package version provides build-time version information.
package version

import (
	"fmt"
	"runtime"
)

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"

	// ModelVersion names the detector and GNN weights the build was validated against.
	ModelVersion = "unknown"
)

var (
	GoVersion = runtime.Version()
	Platform  = runtime.GOOS + "/" + runtime.GOARCH
)

// Info renders every field on one line.
func Info() string {
	return fmt.Sprintf("pofd %s (commit %s, built %s, models %s, %s %s)",
		Version, GitCommit, BuildTime, ModelVersion, GoVersion, Platform)
}
