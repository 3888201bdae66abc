// Package steamcmd wraps the SteamCMD command-line tool: it builds the
// command token list for an install/update/validate run, spawns the binary,
// and translates its freeform stdout into structured progress events.
package steamcmd

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for option and path validation. All of these surface
// before a process is spawned.
var (
	// ErrInvalidAppID indicates an app id that is not a positive integer.
	ErrInvalidAppID = errors.New("app id must be a positive integer")

	// ErrInvalidWorkshopID indicates a workshop id that is not a positive integer.
	ErrInvalidWorkshopID = errors.New("workshop id must be a positive integer")

	// ErrMissingAppID indicates a workshop id was given without an app id.
	ErrMissingAppID = errors.New("workshop id requires an app id")

	// ErrMissingUsername indicates a password or guard code was given without a username.
	ErrMissingUsername = errors.New("password or guard code requires a username")

	// ErrInvalidPlatform indicates an unrecognized forced platform value.
	ErrInvalidPlatform = errors.New("platform must be one of windows, macos, linux")

	// ErrInvalidPath indicates a missing or empty executable path.
	ErrInvalidPath = errors.New("executable path must be a non-empty string")

	// ErrSpawnFailed indicates the OS could not start the SteamCMD process.
	ErrSpawnFailed = errors.New("failed to start steamcmd")

	// ErrExitFailure indicates SteamCMD ran but exited nonzero. Errors of
	// this kind carry an *ExitError with the code and captured output.
	ErrExitFailure = errors.New("steamcmd exited with an error")
)

// ExitError reports a SteamCMD run that ended with a nonzero exit code. It
// carries the full stdout and stderr text, accumulated exactly as received,
// for diagnostic replay. It matches ErrExitFailure under errors.Is.
type ExitError struct {
	// ExitCode is the process exit status.
	ExitCode int

	// Stdout is everything the process wrote to standard output.
	Stdout string

	// Stderr is everything the process wrote to standard error.
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("steamcmd exited with code %d", e.ExitCode)
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		return msg + ": " + detail
	}
	return msg
}

// Is makes errors.Is(err, ErrExitFailure) succeed for exit errors.
func (e *ExitError) Is(target error) bool {
	return target == ErrExitFailure
}

// SpawnError wraps the underlying OS error behind ErrSpawnFailed.
func SpawnError(cause error) error {
	return fmt.Errorf("%w: %w", ErrSpawnFailed, cause)
}
