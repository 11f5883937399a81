package tagedit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/tagdeck/internal/track"
)

const unknown = "Unknown"

// Summary describes the file behind an entry.
type Summary struct {
	Title      string
	CoverArt   string
	Length     string
	SampleRate string
	BitDepth   string
	Bitrate    string
	Filesize   string
	Modified   string
	Created    string
	Filetype   string
	Filename   string
	Path       string
}

// Statistics describes the play statistics of an entry.
type Statistics struct {
	PlayCount  int
	SkipCount  int
	LastPlayed string
}

// Summary returns the summary of an entry's current record.
func (s *Session) Summary(entry int) (Summary, bool) {
	if entry < 0 || entry >= len(s.entries) {
		return Summary{}, false
	}
	return summarize(&s.entries[entry].Current), true
}

// SelectedSummary returns the summary of the selected entry. It is only
// available when exactly one entry is selected.
func (s *Session) SelectedSummary() (Summary, bool) {
	idx := s.resolve(s.selection)
	if len(idx) != 1 {
		return Summary{}, false
	}
	return s.Summary(idx[0])
}

// Statistics returns the play statistics of an entry.
func (s *Session) Statistics(entry int) (Statistics, bool) {
	if entry < 0 || entry >= len(s.entries) {
		return Statistics{}, false
	}
	r := &s.entries[entry].Current
	return Statistics{
		PlayCount:  r.PlayCount,
		SkipCount:  r.SkipCount,
		LastPlayed: lastPlayed(r.LastPlayed, time.Now()),
	}, true
}

func summarize(r *track.Record) Summary {
	return Summary{
		Title:      r.PrettyTitleWithArtist(),
		CoverArt:   CoverArtStatus(r),
		Length:     formatLength(r.Length),
		SampleRate: formatPositive(r.Samplerate, func(n int) string { return fmt.Sprintf("%s Hz", humanize.Comma(int64(n))) }),
		BitDepth:   formatPositive(r.Bitdepth, func(n int) string { return strconv.Itoa(n) + " bit" }),
		Bitrate:    formatPositive(r.Bitrate, func(n int) string { return strconv.Itoa(n) + " kbps" }),
		Filesize:   formatFilesize(r.Filesize),
		Modified:   formatTimestamp(r.Mtime),
		Created:    formatTimestamp(r.Ctime),
		Filetype:   strings.ToUpper(r.Filetype),
		Filename:   r.BaseFilename(),
		Path:       r.Path,
	}
}

// CoverArtStatus describes where the cover of a record comes from.
func CoverArtStatus(r *track.Record) string {
	switch {
	case r.HasManuallyUnsetCover():
		return "Cover art manually unset"
	case r.ArtManual != "":
		return "Cover art set from " + r.ArtManual
	case r.HasEmbeddedCover:
		return "Cover art from embedded image"
	case r.ArtAutomatic != "":
		return "Cover art loaded automatically from " + r.ArtAutomatic
	default:
		return "Cover art not set"
	}
}

func formatLength(d time.Duration) string {
	if d <= 0 {
		return unknown
	}
	secs := int(d.Round(time.Second).Seconds())
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func formatPositive(n int, format func(int) string) string {
	if n <= 0 {
		return unknown
	}
	return format(n)
}

func formatFilesize(size int64) string {
	if size < 0 {
		return unknown
	}
	return humanize.IBytes(uint64(size))
}

func formatTimestamp(unix int64) string {
	if unix <= 0 {
		return unknown
	}
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}

func lastPlayed(unix int64, now time.Time) string {
	if unix <= 0 {
		return "Never"
	}
	return humanize.RelTime(time.Unix(unix, 0), now, "ago", "from now")
}
