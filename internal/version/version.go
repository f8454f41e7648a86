// Package version reports smartdbctl's build identity.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is set via -ldflags at release build time.
	Version = "0.1.0-dev"
	// BuildDate is set via -ldflags at release build time.
	BuildDate = "unknown"
	// GitCommit is set via -ldflags at release build time.
	GitCommit = "unknown"
)

// Info holds build identity for the running binary.
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
}

// Get returns the current build's Info.
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a one-line version string.
func (i Info) String() string {
	return fmt.Sprintf("smartdbctl %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString returns a multi-line build report.
func (i Info) FullString() string {
	return fmt.Sprintf(`smartdbctl %s
Build Date: %s
Git Commit: %s
Platform:   %s
Go Version: %s`, i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion)
}

// LogFields flattens Info into alternating key/value pairs suitable for
// passing straight to a structured logger's variadic args.
func (i Info) LogFields() []any {
	return []any{
		"version", i.Version,
		"build_date", i.BuildDate,
		"git_commit", i.GitCommit,
		"go_version", i.GoVersion,
		"platform", i.Platform,
	}
}
