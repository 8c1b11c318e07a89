// Package version records the service version.
package version

import (
	"fmt"
	"strings"
)

// Version is the semver of the current release.
var Version = "0.3.0"

// DevVersion is the version suffix used outside prod.
var DevVersion = "0.3.0"

// GetCurrentVersion returns the version string for the given mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return fmt.Sprintf("%s-%s", DevVersion, mode)
	}
	return Version
}

// GetMinorVersion returns the major.minor part of the version.
func GetMinorVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}
