package app

import (
	"fmt"

	"github.com/heartmarshall/inflective/internal/domain"
)

// Version, Commit, and BuildTime are set via ldflags at build time.
// Example: go build -ldflags "-X github.com/heartmarshall/inflective/internal/app.Version=1.0.0"
//
// Version is stamped into the registry of every language an upgrade
// installs, so it must stay a major.minor.patch string.
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion returns a formatted version string for startup logs and health endpoints.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}

// SemVer parses Version.
func SemVer() (domain.Version, error) {
	v, err := domain.ParseVersion(Version)
	if err != nil {
		return domain.Version{}, fmt.Errorf("build version: %w", err)
	}
	return v, nil
}
