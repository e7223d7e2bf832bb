package build

// Set at build time with -ldflags "-X github.com/G-Research/resetbench/internal/resetbench/build.<Name>=<value>".
var (
	ReleaseVersion = "UNKNOWN"
	GitCommit      = "UNKNOWN"
	GoVersion      = "UNKNOWN"
	BuildTime      = "UNKNOWN"
)
