package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gameops/steamctl/internal/logging"
)

// ErrInstallFailed wraps any failure in the ensure-binary step, preserving
// the underlying cause.
var ErrInstallFailed = errors.New("steamcmd installation failed")

// ErrUnsupportedPlatform indicates SteamCMD is not distributed for this OS.
var ErrUnsupportedPlatform = errors.New("steamcmd is not available for this platform")

// lockFileName guards the binary directory against concurrent ensure calls
// from separate steamctl processes.
const lockFileName = "steamcmd.lock"

// Installer provisions the SteamCMD binary described by its Environment.
type Installer struct {
	env        Environment
	downloader *Downloader
}

// New returns an Installer for env.
func New(env Environment) *Installer {
	return &Installer{env: env, downloader: NewDownloader()}
}

// IsInstalled reports whether the SteamCMD entry point exists.
func (i *Installer) IsInstalled() bool {
	path := i.env.ExecutablePath()
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureInstalled makes the SteamCMD binary available, downloading and
// extracting Valve's archive when it is missing. progress, when non-nil,
// receives human-readable status messages. Already-installed is a no-op.
func (i *Installer) EnsureInstalled(ctx context.Context, progress func(msg string)) error {
	if i.IsInstalled() {
		return nil
	}
	if !i.env.Supported() {
		return fmt.Errorf("%w: %w", ErrInstallFailed, ErrUnsupportedPlatform)
	}

	log := logging.FromContext(ctx)
	dir := i.env.Directory()

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrInstallFailed, dir, err)
	}

	unlock, err := i.acquireLock()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	defer unlock()

	// Another process may have finished the install while we waited on
	// filesystem state; the lock makes this check authoritative.
	if i.IsInstalled() {
		return nil
	}

	url := i.env.ArchiveURL()
	archivePath := filepath.Join(dir, filepath.Base(url))

	log.Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "ensure").
		Str("url", url).
		Str("dir", dir).
		Msg("downloading steamcmd archive")

	report(progress, "downloading "+filepath.Base(url))
	if fetchErr := i.downloader.Fetch(ctx, url, archivePath, nil); fetchErr != nil {
		return fmt.Errorf("%w: %w", ErrInstallFailed, fetchErr)
	}
	defer os.Remove(archivePath)

	report(progress, "extracting "+filepath.Base(archivePath))
	if extractErr := extractArchive(archivePath, dir); extractErr != nil {
		return fmt.Errorf("%w: %w", ErrInstallFailed, extractErr)
	}

	exe := i.env.ExecutablePath()
	if chmodErr := os.Chmod(exe, extractedFileMode); chmodErr != nil {
		return fmt.Errorf("%w: marking %s executable: %w", ErrInstallFailed, exe, chmodErr)
	}

	if !i.IsInstalled() {
		return fmt.Errorf("%w: archive did not contain %s", ErrInstallFailed, filepath.Base(exe))
	}

	log.Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("executable", exe).
		Msg("steamcmd installed")
	report(progress, "installed "+exe)
	return nil
}

func report(progress func(string), msg string) {
	if progress != nil {
		progress(msg)
	}
}

// acquireLock takes a PID lock file in the binary directory. Stale locks
// (dead PID, empty or corrupt content) are removed and retried once.
func (i *Installer) acquireLock() (func(), error) {
	lockPath := filepath.Join(i.env.Directory(), lockFileName)

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating lock file: %w", err)
		}
		if !isLockStale(lockPath) {
			return nil, fmt.Errorf("failed to acquire lock: another install holds %s", lockPath)
		}
		_ = os.Remove(lockPath)
	}

	return nil, fmt.Errorf("failed to acquire lock: %s", lockPath)
}

// isLockStale reports whether the lock file's PID no longer names a running
// process. Empty or unparsable content is treated as stale; a missing file
// is not (the safe default: let the create race decide).
func isLockStale(lockPath string) bool {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return false
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return true
	}

	pid, err := strconv.Atoi(content)
	if err != nil {
		return true
	}
	return !isProcessRunning(pid)
}

// isProcessRunning probes for a live process with the given pid.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		// Windows: FindProcess fails when no such process exists.
		return false
	}
	// Signal 0 performs the existence check without delivering anything.
	return proc.Signal(syscall.Signal(0)) == nil
}
