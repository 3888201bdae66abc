// Package config loads steamctl settings from the user's config directory
// and environment. Settings live in $STEAMCTL_HOME/config.yaml (defaulting
// to ~/.steamctl/config.yaml); environment variables override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// CurrentSchemaVersion is the config file schema written by this build.
// Files declaring a different major version are rejected.
const CurrentSchemaVersion = "1.0.0"

// Environment variables that override file settings.
const (
	EnvHome       = "STEAMCTL_HOME"
	EnvInstallDir = "STEAMCTL_INSTALL_DIR"
	EnvLogLevel   = "STEAMCTL_LOG_LEVEL"
	EnvLogFormat  = "STEAMCTL_LOG_FORMAT"
	EnvLogFile    = "STEAMCTL_LOG_FILE"
)

// Config validation errors.
var (
	ErrSchemaVersionInvalid      = errors.New("config schema_version is not a valid semantic version")
	ErrSchemaVersionIncompatible = errors.New("config schema_version is not compatible with this build")
)

// InstallConfig controls where the SteamCMD binary is kept.
type InstallConfig struct {
	// Dir is the directory holding the SteamCMD executable. Empty means
	// the "steamcmd" subdirectory of the config directory.
	Dir string `yaml:"dir,omitempty"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is a zerolog level name ("debug", "info", ...). Defaults to "info".
	Level string `yaml:"level,omitempty"`
	// Format is "console" or "json". Defaults to "console".
	Format string `yaml:"format,omitempty"`
	// File, when set, duplicates log output to this path.
	File string `yaml:"file,omitempty"`
}

// Settings is the full steamctl configuration.
type Settings struct {
	SchemaVersion string        `yaml:"schema_version,omitempty"`
	Install       InstallConfig `yaml:"install,omitempty"`
	Logging       LoggingConfig `yaml:"logging,omitempty"`
}

// Defaults returns a Settings populated with built-in defaults.
func Defaults() *Settings {
	return &Settings{
		SchemaVersion: CurrentSchemaVersion,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// GetConfigDir returns the steamctl configuration directory,
// $STEAMCTL_HOME when set, otherwise ~/.steamctl.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".steamctl"), nil
}

// EnsureConfigDir creates the configuration directory if it does not exist.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// InstallDir returns the effective SteamCMD install directory.
func (s *Settings) InstallDir() (string, error) {
	if s.Install.Dir != "" {
		return s.Install.Dir, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "steamcmd"), nil
}

// Load reads config.yaml from the config directory, applies environment
// overrides, and validates the schema version. A missing file yields
// defaults plus overrides.
func Load() (*Settings, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

// LoadFile is Load for an explicit config file path.
func LoadFile(path string) (*Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file: defaults apply.
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err = yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if err = checkSchemaVersion(settings.SchemaVersion); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(settings)
	return settings, nil
}

// checkSchemaVersion rejects config files written for a different major
// schema version. An empty version is treated as current (pre-versioned
// files).
func checkSchemaVersion(version string) error {
	if version == "" {
		return nil
	}
	fileVer, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrSchemaVersionInvalid, version)
	}
	currentVer := semver.MustParse(CurrentSchemaVersion)
	if fileVer.Major() != currentVer.Major() {
		return fmt.Errorf("%w: file declares %s, this build supports %s",
			ErrSchemaVersionIncompatible, version, CurrentSchemaVersion)
	}
	return nil
}

func applyEnvOverrides(settings *Settings) {
	if v := os.Getenv(EnvInstallDir); v != "" {
		settings.Install.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		settings.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		settings.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		settings.Logging.File = v
	}
}
