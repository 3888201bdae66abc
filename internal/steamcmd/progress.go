package steamcmd

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Progress is one structured update parsed from SteamCMD output or
// synthesized by the runner at the run boundaries.
type Progress struct {
	// Phase is a free-form stage label. The runner synthesizes "starting"
	// and "complete"; parsed values include downloading, validating,
	// preallocating, verifying, and committing, but SteamCMD's vocabulary
	// is not enumerable so no normalization is applied.
	Phase string

	// Percent is the rounded completion percentage, 0-100.
	Percent int

	// BytesDownloaded and TotalBytes are byte counts when the output line
	// carried them, 0 when unknown.
	BytesDownloaded int64
	TotalBytes      int64
}

// Synthetic phases emitted by the runner.
const (
	PhaseStarting = "starting"
	PhaseComplete = "complete"

	phaseDownloading = "downloading"
	phaseValidating  = "validating"
)

var (
	// Update state (0x61) downloading, progress: 45.23 (1234567890 / 2732853760)
	// Some stage labels span several words ("verifying update", "verifying
	// install"); the phase is the first word, the rest qualifies the object.
	updateStateRe = regexp.MustCompile(
		`Update state \(0x[0-9a-fA-F]+\) (\w+)(?:[\w ]*), progress: (\d+(?:\.\d+)?) \((\d+) / (\d+)\)`)

	// Validating: 45%  /  Validating Steam cache files... 100%
	validatingRe = regexp.MustCompile(`Validating.*?(\d+)%`)

	// [####    ] 50%. Requires at least one fill character, so an
	// all-empty 0% bar does not match. Known quirk, kept for compatibility.
	progressBarRe = regexp.MustCompile(`\[#+\s*\]\s*(\d+)%`)
)

// ParseProgressLine classifies one output line against the recognized
// progress formats, tried in fixed precedence order, and returns the first
// match. The second return is false when the line carries no recognizable
// progress, including empty or whitespace-only input.
func ParseProgressLine(line string) (Progress, bool) {
	if strings.TrimSpace(line) == "" {
		return Progress{}, false
	}

	if m := updateStateRe.FindStringSubmatch(line); m != nil {
		percent, _ := strconv.ParseFloat(m[2], 64)
		downloaded, _ := strconv.ParseInt(m[3], 10, 64)
		total, _ := strconv.ParseInt(m[4], 10, 64)
		return Progress{
			Phase:           strings.ToLower(m[1]),
			Percent:         roundPercent(percent),
			BytesDownloaded: downloaded,
			TotalBytes:      total,
		}, true
	}

	if m := validatingRe.FindStringSubmatch(line); m != nil {
		percent, _ := strconv.Atoi(m[1])
		return Progress{Phase: phaseValidating, Percent: percent}, true
	}

	if m := progressBarRe.FindStringSubmatch(line); m != nil {
		percent, _ := strconv.Atoi(m[1])
		return Progress{Phase: phaseDownloading, Percent: percent}, true
	}

	return Progress{}, false
}

// roundPercent rounds half up: 12.50 -> 13, matching SteamCMD's own
// rendering of fractional percentages.
func roundPercent(v float64) int {
	return int(math.Floor(v + 0.5))
}
