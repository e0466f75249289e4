package config

import "fmt"

// These are injected at build time via -ldflags
var (
	Version   = "dev"
	GitCommit = "local"
	BuildTime = "unknown"
)

// VersionString formats the build information for --version.
func VersionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
