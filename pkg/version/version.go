// Package version holds build-time identifiers, overridden via
// -ldflags "-X" at release build time.
package version

var (
	// Version is the release tag, or "dev" for a local build.
	Version = "dev"
	// Commit is the short git commit hash this binary was built from.
	Commit = "unknown"
	// BuildDate is the RFC3339 build timestamp.
	BuildDate = "unknown"
)
