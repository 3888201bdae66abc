package installer

import (
	"path/filepath"
	"runtime"
)

// Environment supplies the read-only installation layout: where the SteamCMD
// binary lives, what it is called, and whether the platform is supported at
// all. It is injected so the core never touches real OS state in tests.
type Environment interface {
	// Directory is the SteamCMD installation directory.
	Directory() string

	// ExecutablePath is the expected full path of the SteamCMD entry point.
	ExecutablePath() string

	// ArchiveURL is the download location of the platform's archive.
	ArchiveURL() string

	// Supported reports whether SteamCMD is distributed for this platform.
	Supported() bool
}

type hostEnv struct {
	dir  string
	goos string
}

// NewEnvironment returns the Environment for the current host OS rooted at dir.
func NewEnvironment(dir string) Environment {
	return NewEnvironmentFor(dir, runtime.GOOS)
}

// NewEnvironmentFor returns an Environment for an explicit GOOS. Used by
// tests and by cross-platform tooling.
func NewEnvironmentFor(dir, goos string) Environment {
	return hostEnv{dir: dir, goos: goos}
}

func (e hostEnv) Directory() string { return e.dir }

func (e hostEnv) ExecutablePath() string {
	info, ok := platforms[e.goos]
	if !ok {
		return ""
	}
	return filepath.Join(e.dir, info.ExecutableName)
}

func (e hostEnv) ArchiveURL() string {
	return platforms[e.goos].ArchiveURL
}

func (e hostEnv) Supported() bool {
	return SupportedOS(e.goos)
}
