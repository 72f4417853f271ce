package version

import "fmt"

// These variables are set at build time via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the full version line printed by `nextaction version`.
func String() string {
	return fmt.Sprintf("nextaction %s (commit: %s, built: %s)", Version, shortCommit(), BuildTime)
}

// Short returns the version without build metadata, as advertised by the API.
func Short() string {
	if Version == "dev" {
		return "dev-" + shortCommit()
	}
	return Version
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
