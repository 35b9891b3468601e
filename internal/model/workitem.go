package model

import (
	"fmt"
	"regexp"
	"strings"
)

// beatmapsetIDPattern matches the numeric beatmapset id path segment in
// osu! beatmap URLs, e.g. ".../beatmapsets/12345#mania/67890".
var beatmapsetIDPattern = regexp.MustCompile(`beatmapsets/(\d+)`)

// invalidFileNameChars are stripped (not replaced) when deriving target
// filenames, matching what the download service's consumers expect.
var invalidFileNameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// WorkItem is a TableEntry queued for download.
//
// A WorkItem exists only for entries confirmed absent from the local
// inventory. BeatmapsetID and FileName are derived deterministically
// from the entry, so re-running against a populated download directory
// skips files that already exist.
type WorkItem struct {
	// Entry is the table entry this item was promoted from.
	Entry TableEntry

	// BeatmapsetID is the numeric id extracted from Entry.URL.
	BeatmapsetID string

	// FileName is the target filename under the download directory:
	// "{title} - {artist} [{beatmapsetID}].osz" with invalid filename
	// characters stripped from title and artist.
	FileName string
}

// NewWorkItem promotes a TableEntry into a WorkItem.
//
// The second return value is false when no beatmapset id can be
// extracted from the entry URL; such entries cannot be downloaded and
// are recorded as OutcomeSkippedNoID by the engine.
func NewWorkItem(entry TableEntry) (WorkItem, bool) {
	id := ExtractBeatmapsetID(entry.URL)
	if id == "" {
		return WorkItem{Entry: entry}, false
	}
	return WorkItem{
		Entry:        entry,
		BeatmapsetID: id,
		FileName:     fmt.Sprintf("%s - %s [%s].osz", SanitizeFileName(entry.Title), SanitizeFileName(entry.Artist), id),
	}, true
}

// ExtractBeatmapsetID returns the numeric beatmapset id from an osu!
// beatmap URL, or the empty string if the URL carries none.
func ExtractBeatmapsetID(url string) string {
	m := beatmapsetIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// SanitizeFileName strips characters that are invalid in file names
// (\ / * ? : " < > |) from name.
func SanitizeFileName(name string) string {
	return invalidFileNameChars.ReplaceAllString(name, "")
}

// DownloadOutcome records how a single WorkItem attempt ended. Each item
// is attempted at most once per run; there are no per-item retries.
type DownloadOutcome int

const (
	// OutcomeFetched means the archive was downloaded and written.
	OutcomeFetched DownloadOutcome = iota

	// OutcomeSkippedExisting means the target file was already on disk;
	// no network call was made.
	OutcomeSkippedExisting

	// OutcomeSkippedNoID means no beatmapset id could be extracted from
	// the entry URL.
	OutcomeSkippedNoID

	// OutcomeSkippedUndersized means the download service advertised a
	// body smaller than the sanity threshold, which it does for
	// disguised error pages. Nothing was written.
	OutcomeSkippedUndersized

	// OutcomeSkippedError means a transport or filesystem error aborted
	// this item. The error never propagates out of the run.
	OutcomeSkippedError
)

// String returns a short lowercase label for the outcome.
func (o DownloadOutcome) String() string {
	switch o {
	case OutcomeFetched:
		return "fetched"
	case OutcomeSkippedExisting:
		return "skipped-existing"
	case OutcomeSkippedNoID:
		return "skipped-no-id"
	case OutcomeSkippedUndersized:
		return "skipped-undersized"
	case OutcomeSkippedError:
		return "skipped-error"
	default:
		return "unknown"
	}
}

// Fetched reports whether the outcome represents a written file.
func (o DownloadOutcome) Fetched() bool { return o == OutcomeFetched }

// SummarizeOutcomes counts outcomes by kind.
func SummarizeOutcomes(outcomes []DownloadOutcome) map[DownloadOutcome]int {
	counts := make(map[DownloadOutcome]int, len(outcomes))
	for _, o := range outcomes {
		counts[o]++
	}
	return counts
}

// FormatOutcomes renders a compact batch summary such as
// "fetched 3, skipped-existing 1" for user-facing completion messages.
func FormatOutcomes(outcomes []DownloadOutcome) string {
	counts := SummarizeOutcomes(outcomes)
	order := []DownloadOutcome{
		OutcomeFetched,
		OutcomeSkippedExisting,
		OutcomeSkippedNoID,
		OutcomeSkippedUndersized,
		OutcomeSkippedError,
	}
	var parts []string
	for _, o := range order {
		if n := counts[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", o, n))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}
