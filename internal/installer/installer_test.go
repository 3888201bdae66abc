package installer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnv lets tests point the installer at a temp dir and a test server.
type fakeEnv struct {
	dir       string
	exeName   string
	url       string
	supported bool
}

func (e fakeEnv) Directory() string      { return e.dir }
func (e fakeEnv) ExecutablePath() string { return filepath.Join(e.dir, e.exeName) }
func (e fakeEnv) ArchiveURL() string     { return e.url }
func (e fakeEnv) Supported() bool        { return e.supported }

// buildTarGz produces a gzip'd tar holding the given files.
func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o755,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func serveArchive(t *testing.T, path string, payload []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIsInstalled(t *testing.T) {
	dir := t.TempDir()
	env := fakeEnv{dir: dir, exeName: "steamcmd.sh", supported: true}
	inst := New(env)

	assert.False(t, inst.IsInstalled(), "empty directory")

	require.NoError(t, os.WriteFile(env.ExecutablePath(), []byte("#!/bin/sh\n"), 0o755))
	assert.True(t, inst.IsInstalled())
}

func TestEnsureInstalled_AlreadyInstalledIsNoop(t *testing.T) {
	dir := t.TempDir()
	env := fakeEnv{dir: dir, exeName: "steamcmd.sh", supported: true}
	require.NoError(t, os.WriteFile(env.ExecutablePath(), []byte("#!/bin/sh\n"), 0o755))

	// No URL configured: any network attempt would fail loudly.
	inst := New(env)
	require.NoError(t, inst.EnsureInstalled(context.Background(), nil))
}

func TestEnsureInstalled_DownloadsAndExtracts(t *testing.T) {
	payload := buildTarGz(t, map[string]string{
		"steamcmd.sh":    "#!/bin/sh\nexec linux32/steamcmd \"$@\"\n",
		"linux32/state":  "placeholder",
		"linux32/readme": "steamcmd",
	})
	server := serveArchive(t, "/client/installer/steamcmd_linux.tar.gz", payload)

	dir := t.TempDir()
	env := fakeEnv{
		dir:       dir,
		exeName:   "steamcmd.sh",
		url:       server.URL + "/client/installer/steamcmd_linux.tar.gz",
		supported: true,
	}
	inst := New(env)
	inst.downloader.HTTPClient = server.Client()

	var messages []string
	require.NoError(t, inst.EnsureInstalled(context.Background(), func(msg string) {
		messages = append(messages, msg)
	}))

	assert.True(t, inst.IsInstalled())
	assert.FileExists(t, filepath.Join(dir, "linux32", "state"))
	assert.NotEmpty(t, messages)

	// The downloaded archive is cleaned up after extraction.
	assert.NoFileExists(t, filepath.Join(dir, "steamcmd_linux.tar.gz"))

	info, err := os.Stat(env.ExecutablePath())
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "entry point must be executable")
}

func TestEnsureInstalled_ZipArchive(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"steamcmd.exe": "MZ fake binary",
	})
	server := serveArchive(t, "/client/installer/steamcmd.zip", payload)

	dir := t.TempDir()
	env := fakeEnv{
		dir:       dir,
		exeName:   "steamcmd.exe",
		url:       server.URL + "/client/installer/steamcmd.zip",
		supported: true,
	}
	inst := New(env)
	inst.downloader.HTTPClient = server.Client()

	require.NoError(t, inst.EnsureInstalled(context.Background(), nil))
	assert.True(t, inst.IsInstalled())
}

func TestEnsureInstalled_UnsupportedPlatform(t *testing.T) {
	env := fakeEnv{dir: t.TempDir(), exeName: "steamcmd", supported: false}
	inst := New(env)

	err := inst.EnsureInstalled(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInstallFailed)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestEnsureInstalled_MissingEntryPoint(t *testing.T) {
	payload := buildTarGz(t, map[string]string{"readme.txt": "no binary here"})
	server := serveArchive(t, "/steamcmd_linux.tar.gz", payload)

	env := fakeEnv{
		dir:       t.TempDir(),
		exeName:   "steamcmd.sh",
		url:       server.URL + "/steamcmd_linux.tar.gz",
		supported: true,
	}
	inst := New(env)
	inst.downloader.HTTPClient = server.Client()

	err := inst.EnsureInstalled(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInstallFailed)
}

func TestEnsureInstalled_DownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	env := fakeEnv{
		dir:       t.TempDir(),
		exeName:   "steamcmd.sh",
		url:       server.URL + "/steamcmd_linux.tar.gz",
		supported: true,
	}
	inst := New(env)
	inst.downloader.HTTPClient = server.Client()

	err := inst.EnsureInstalled(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInstallFailed)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestAcquireLock(t *testing.T) {
	env := fakeEnv{dir: t.TempDir(), exeName: "steamcmd.sh", supported: true}
	inst := New(env)

	unlock1, err := inst.acquireLock()
	require.NoError(t, err)
	require.NotNil(t, unlock1)

	_, err = inst.acquireLock()
	require.Error(t, err, "second acquisition must fail while held")
	assert.Contains(t, err.Error(), "failed to acquire lock")

	unlock1()

	unlock2, err := inst.acquireLock()
	require.NoError(t, err, "lock must be reacquirable after release")
	unlock2()
}

func TestAcquireLock_StaleLockIsReclaimed(t *testing.T) {
	dir := t.TempDir()
	env := fakeEnv{dir: dir, exeName: "steamcmd.sh", supported: true}
	inst := New(env)

	lockPath := filepath.Join(dir, lockFileName)
	require.NoError(t, os.WriteFile(lockPath, []byte("99999999"), 0o600))

	unlock, err := inst.acquireLock()
	require.NoError(t, err, "stale PID lock must be reclaimed")
	unlock()
}

func TestIsLockStale(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "empty file", content: "", want: true},
		{name: "whitespace", content: "  \n ", want: true},
		{name: "not a pid", content: "not-a-pid", want: true},
		{name: "dead pid", content: "99999999", want: true},
		{name: "live pid", content: strconv.Itoa(os.Getpid()), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".lock")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			assert.Equal(t, tt.want, isLockStale(path))
		})
	}

	assert.False(t, isLockStale(filepath.Join(dir, "missing.lock")),
		"missing lock file is not stale; the create race decides")
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, isProcessRunning(os.Getpid()))
	assert.False(t, isProcessRunning(99999999))
	assert.False(t, isProcessRunning(0))
	assert.False(t, isProcessRunning(-1))
}
