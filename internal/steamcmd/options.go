package steamcmd

import (
	"fmt"
	"strconv"
	"strings"
)

// Platform is a SteamCMD content platform identifier, used to force content
// for a platform other than the host's.
type Platform string

// Supported forced platforms.
const (
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
)

// OutputStream names the origin of a raw output line.
type OutputStream string

// Stream origins for OnOutput sinks.
const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// InstallOptions configures a single install/update/validate run. The zero
// value is valid and produces an anonymous login with SteamCMD defaults.
// Options are read-only input owned by the caller.
type InstallOptions struct {
	// AppID identifies the application to install, update, or validate.
	// Zero means unset.
	AppID int64

	// WorkshopID identifies a workshop item to download. Requires AppID.
	WorkshopID int64

	// Dir forces the install directory. Empty uses the SteamCMD default.
	Dir string

	// Username, Password, and GuardCode configure the login. Password and
	// GuardCode are only meaningful together with Username; without any of
	// them the run logs in anonymously.
	Username  string
	Password  string
	GuardCode string

	// Platform forces content for a platform other than the host's.
	Platform Platform

	// OnProgress, when set, receives each structured progress update.
	OnProgress func(Progress)

	// OnOutput, when set, receives every raw output line tagged with its
	// stream origin. Lines are delivered in arrival order per stream.
	OnOutput func(line string, stream OutputStream)
}

// Validate checks the option invariants. It is called by Run/Start before
// anything touches the filesystem or process table; callers constructing
// options programmatically may call it directly.
func (o InstallOptions) Validate() error {
	if o.AppID < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAppID, o.AppID)
	}
	if o.WorkshopID < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkshopID, o.WorkshopID)
	}
	if o.WorkshopID != 0 && o.AppID == 0 {
		return ErrMissingAppID
	}
	if (o.Password != "" || o.GuardCode != "") && o.Username == "" {
		return ErrMissingUsername
	}
	if o.Platform != "" {
		switch o.Platform {
		case PlatformWindows, PlatformMacOS, PlatformLinux:
		default:
			return fmt.Errorf("%w: got %q", ErrInvalidPlatform, o.Platform)
		}
	}
	return nil
}

// ParseID parses a numeric id given as a string, enforcing the same
// positive-integer constraint as Validate. Fractional, negative, zero, and
// non-numeric inputs are rejected. Use ParseWorkshopID for workshop ids so
// the error names the right field.
func ParseID(s string) (int64, error) {
	return parseID(s, ErrInvalidAppID)
}

// ParseWorkshopID parses a workshop item id given as a string.
func ParseWorkshopID(s string) (int64, error) {
	return parseID(s, ErrInvalidWorkshopID)
}

func parseID(s string, kind error) (int64, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: got %q", kind, s)
	}
	return id, nil
}
