// Package tags reads and writes the editable metadata of music files.
// It handles MP3, FLAC, Ogg (Opus/Vorbis) and M4A formats.
package tags

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// Vorbis comment / TagLib property keys not covered by taglib constants.
const (
	keyComposer    = "COMPOSER"
	keyPerformer   = "PERFORMER"
	keyGrouping    = "GROUPING"
	keyComment     = "COMMENT"
	keyLyrics      = "LYRICS"
	keyCompilation = "COMPILATION"
	keyDate        = "DATE"
	keyYear        = "YEAR"
)

// Tag holds the editable metadata of a music file.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Composer    string
	Performer   string
	Grouping    string
	Genre       string
	Comment     string
	Lyrics      string
	TrackNumber int
	DiscNumber  int
	Year        int
	Compilation bool

	// HasCover is set on read when the file carries an embedded picture.
	HasCover bool
}

// Properties are audio stream properties, not tags.
type Properties struct {
	Length     time.Duration
	Codec      string // MP3, FLAC, OPUS, AAC, ALAC
	SampleRate int
	BitDepth   int
	Bitrate    int // kbit/s, 0 when unknown
}

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4:
		return true
	}
	return false
}

// taglibTags wraps a taglib result map with helper methods.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or empty string if not found.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// number parses a track/disc value that may be "N" or "N/M" and returns N.
func (t taglibTags) number(key string) int {
	n, _ := parseNumberPair(t.get(key))
	return n
}

// year returns the year from DATE (YYYY or YYYY-MM-DD), falling back to YEAR.
func (t taglibTags) year() int {
	return parseYear(t.get(keyDate, keyYear))
}

// flag parses a boolean tag stored as "1"/"0" or "true"/"false".
func (t taglibTags) flag(key string) bool {
	return parseFlag(t.get(key))
}

// parseNumberPair parses a number that may be "N" or "N/M".
func parseNumberPair(s string) (num, total int) {
	if s == "" {
		return 0, 0
	}
	parts := strings.SplitN(s, "/", 2)
	num, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return num, total
}

func parseYear(s string) int {
	if len(s) > 4 {
		s = s[:4]
	}
	y, _ := strconv.Atoi(s)
	return y
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return ""
}

func formatInt(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
