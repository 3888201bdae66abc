// Package installer locates and provisions the SteamCMD binary: a presence
// check, a download-and-extract ensure step, and the platform lookup table
// that decides where the archive comes from and what the executable is named.
package installer

// platformInfo describes how SteamCMD is distributed for one host OS.
type platformInfo struct {
	// ArchiveURL is Valve's published archive for the platform.
	ArchiveURL string

	// ExecutableName is the entry point inside the install directory.
	ExecutableName string
}

// platforms is keyed by GOOS. SteamCMD is only distributed for these three.
//
//nolint:gochecknoglobals // Static lookup table.
var platforms = map[string]platformInfo{
	"windows": {
		ArchiveURL:     "https://steamcdn-a.akamaihd.net/client/installer/steamcmd.zip",
		ExecutableName: "steamcmd.exe",
	},
	"darwin": {
		ArchiveURL:     "https://steamcdn-a.akamaihd.net/client/installer/steamcmd_osx.tar.gz",
		ExecutableName: "steamcmd.sh",
	},
	"linux": {
		ArchiveURL:     "https://steamcdn-a.akamaihd.net/client/installer/steamcmd_linux.tar.gz",
		ExecutableName: "steamcmd.sh",
	},
}

// SupportedOS reports whether SteamCMD is distributed for the given GOOS.
func SupportedOS(goos string) bool {
	_, ok := platforms[goos]
	return ok
}
