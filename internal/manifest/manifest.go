// Package manifest reads the appmanifest_*.acf files SteamCMD leaves in a
// steamapps directory. The format is Valve's quoted key-value text; only the
// top-level scalar fields are of interest for listing installed items.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// manifestGlob matches one installed item per file.
const manifestGlob = "appmanifest_*.acf"

// ErrMalformed indicates a manifest file that does not parse as key-value text.
var ErrMalformed = errors.New("malformed app manifest")

// App describes one installed application as recorded by SteamCMD.
type App struct {
	// AppID is the Steam application id.
	AppID int64

	// Name is the human-readable application name.
	Name string

	// BuildID is the installed build number, 0 if absent.
	BuildID int64

	// SizeOnDisk is the installed size in bytes, 0 if absent.
	SizeOnDisk int64

	// LastUpdated is the time of the last successful update, zero if absent.
	LastUpdated time.Time
}

// Parse reads one manifest and extracts its top-level scalar fields. Nested
// blocks (UserConfig, InstalledDepots, ...) are skipped.
func Parse(r io.Reader) (App, error) {
	fields, err := parseKeyValues(r)
	if err != nil {
		return App{}, err
	}

	appID, err := strconv.ParseInt(fields["appid"], 10, 64)
	if err != nil || appID <= 0 {
		return App{}, fmt.Errorf("%w: missing or invalid appid", ErrMalformed)
	}

	app := App{
		AppID: appID,
		Name:  fields["name"],
	}
	if v, parseErr := strconv.ParseInt(fields["buildid"], 10, 64); parseErr == nil {
		app.BuildID = v
	}
	if v, parseErr := strconv.ParseInt(fields["sizeondisk"], 10, 64); parseErr == nil {
		app.SizeOnDisk = v
	}
	if v, parseErr := strconv.ParseInt(fields["lastupdated"], 10, 64); parseErr == nil && v > 0 {
		app.LastUpdated = time.Unix(v, 0).UTC()
	}
	return app, nil
}

// ParseFile parses a single appmanifest file.
func ParseFile(path string) (App, error) {
	f, err := os.Open(path)
	if err != nil {
		return App{}, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	app, err := Parse(f)
	if err != nil {
		return App{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return app, nil
}

// List scans a steamapps directory and returns every parseable installed
// item, sorted by app id, plus warnings for files that failed to parse. A
// missing directory yields an empty list.
func List(steamappsDir string) ([]App, []string, error) {
	matches, err := filepath.Glob(filepath.Join(steamappsDir, manifestGlob))
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", steamappsDir, err)
	}

	var apps []App
	var warnings []string
	for _, path := range matches {
		app, parseErr := ParseFile(path)
		if parseErr != nil {
			warnings = append(warnings, parseErr.Error())
			continue
		}
		apps = append(apps, app)
	}

	sort.Slice(apps, func(i, j int) bool { return apps[i].AppID < apps[j].AppID })
	return apps, warnings, nil
}

// parseKeyValues collects the scalar fields of the outermost block, keys
// lower-cased. Valve's format quotes both keys and values and nests blocks
// with braces.
func parseKeyValues(r io.Reader) (map[string]string, error) {
	fields := make(map[string]string)
	depth := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "{":
			depth++
		case line == "}":
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced braces", ErrMalformed)
			}
		default:
			key, value, ok := splitQuotedPair(line)
			if !ok {
				// A bare quoted string names the block that follows.
				continue
			}
			if depth == 1 {
				fields[strings.ToLower(key)] = value
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrMalformed)
	}
	return fields, nil
}

// splitQuotedPair splits `"key"  "value"` into its parts.
func splitQuotedPair(line string) (key, value string, ok bool) {
	parts := strings.SplitN(line, `"`, 5)
	// A well-formed pair splits into: "", key, separator, value, rest.
	if len(parts) < 5 {
		return "", "", false
	}
	return parts[1], parts[3], true
}
