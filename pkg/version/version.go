// Package version exposes the steamctl build version.
package version

// version is overridden at build time via
// -ldflags "-X github.com/gameops/steamctl/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Build-time injection target.
var version = "dev"

// GetVersion returns the version string baked into the binary.
func GetVersion() string {
	return version
}
