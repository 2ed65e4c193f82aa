package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/neutroai/neutro/internal/version.Version=1.0.0
//	  -X github.com/neutroai/neutro/internal/version.Commit=abc123
//	  -X github.com/neutroai/neutro/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("neutro %s (commit: %s, built: %s, %s/%s)",
		Version, Short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// Short truncates a commit hash to seven characters.
func Short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
