// Package version exposes the CLI build version.
package version

// version is overridden at build time via
// -ldflags "-X github.com/clockhand/clockhand/pkg/version.version=v1.2.3".
var version = "dev"

// GetVersion returns the build version string.
func GetVersion() string {
	return version
}
