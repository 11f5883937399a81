// Package track defines the metadata record shared by the tag store, the
// catalog and the tag editor.
package track

import (
	"path/filepath"
	"strings"
	"time"
)

// NoID marks a record that is not tracked by the catalog.
const NoID int64 = -1

// NeverPlayed is the LastPlayed value of a track that was never played.
const NeverPlayed int64 = -1

// ManuallyUnsetCover is stored in ArtManual when the user removed the cover.
const ManuallyUnsetCover = "(unset)"

// Record is a snapshot of one track's metadata.
type Record struct {
	// Identity
	Path  string
	ID    int64
	Valid bool

	// Editable tags
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
	Track       int
	Disc        int
	Year        int
	Compilation bool

	// Statistics (catalog only)
	PlayCount  int
	SkipCount  int
	LastPlayed int64

	// Cover art
	ArtManual        string
	ArtAutomatic     string
	HasEmbeddedCover bool

	// File facts
	Filetype   string
	Filesize   int64 // -1 when unknown
	Mtime      int64
	Ctime      int64
	Length     time.Duration
	Samplerate int
	Bitdepth   int
	Bitrate    int
}

// New returns an empty record for path with catalog and statistics fields
// set to their "unknown" values.
func New(path string) Record {
	return Record{
		Path:       path,
		ID:         NoID,
		LastPlayed: NeverPlayed,
		Filesize:   -1,
	}
}

// InCatalog reports whether the record is a valid catalog track.
func (r *Record) InCatalog() bool {
	return r.Valid && r.ID != NoID
}

// EffectiveAlbumArtist returns the album artist, falling back to the artist.
func (r *Record) EffectiveAlbumArtist() string {
	if r.AlbumArtist != "" {
		return r.AlbumArtist
	}
	return r.Artist
}

// SameAlbum reports whether both records belong to the same album.
func (r *Record) SameAlbum(other *Record) bool {
	return r.EffectiveAlbumArtist() == other.EffectiveAlbumArtist() && r.Album == other.Album
}

// HasManuallyUnsetCover reports whether the user removed the cover art.
func (r *Record) HasManuallyUnsetCover() bool {
	return r.ArtManual == ManuallyUnsetCover
}

// IsMetadataEqual compares the editable tags of two records.
func (r *Record) IsMetadataEqual(other *Record) bool {
	return r.Title == other.Title &&
		r.Artist == other.Artist &&
		r.Album == other.Album &&
		r.AlbumArtist == other.AlbumArtist &&
		r.Composer == other.Composer &&
		r.Performer == other.Performer &&
		r.Grouping == other.Grouping &&
		r.Genre == other.Genre &&
		r.Comment == other.Comment &&
		r.Lyrics == other.Lyrics &&
		r.Track == other.Track &&
		r.Disc == other.Disc &&
		r.Year == other.Year &&
		r.Compilation == other.Compilation
}

// MergeUserSetData copies the fields a file read cannot restore (catalog
// identity, statistics and cover choices) from a prior version of the
// same track.
func (r *Record) MergeUserSetData(prior *Record) {
	if prior.ID != NoID {
		r.ID = prior.ID
	}
	r.PlayCount = prior.PlayCount
	r.SkipCount = prior.SkipCount
	r.LastPlayed = prior.LastPlayed
	if prior.ArtManual != "" {
		r.ArtManual = prior.ArtManual
	}
	if r.ArtAutomatic == "" {
		r.ArtAutomatic = prior.ArtAutomatic
	}
}

// ResetStatistics sets the statistics to their "never played" values.
func (r *Record) ResetStatistics() {
	r.PlayCount = 0
	r.SkipCount = 0
	r.LastPlayed = NeverPlayed
}

// BaseFilename returns the file name without its directory.
func (r *Record) BaseFilename() string {
	return filepath.Base(r.Path)
}

// PrettyTitle returns the title, or the file name when the title is empty.
func (r *Record) PrettyTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.BaseFilename()
}

// PrettyTitleWithArtist returns "Artist - Title" when an artist is known.
func (r *Record) PrettyTitleWithArtist() string {
	title := r.PrettyTitle()
	if r.Artist == "" {
		return title
	}
	return r.Artist + " - " + title
}

// AlbumRemoveDiscMisc strips disc markers and edition suffixes such as
// "(Disc 1)" or "[Deluxe Edition]" from an album name.
func AlbumRemoveDiscMisc(album string) string {
	name := strings.TrimSpace(album)
	for {
		trimmed := trimDiscSuffix(name)
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}

var miscMarkers = []string{
	"disc", "disk", "cd",
	"deluxe", "remaster", "remastered", "edition", "bonus", "expanded", "anniversary",
}

func trimDiscSuffix(name string) string {
	if name == "" {
		return name
	}
	last := name[len(name)-1]
	var open byte
	switch last {
	case ')':
		open = '('
	case ']':
		open = '['
	default:
		return trimTrailingDisc(name)
	}
	idx := strings.LastIndexByte(name, open)
	if idx <= 0 {
		return name
	}
	inner := strings.ToLower(name[idx+1 : len(name)-1])
	for _, marker := range miscMarkers {
		if strings.Contains(inner, marker) {
			return strings.TrimSpace(name[:idx])
		}
	}
	return name
}

// trimTrailingDisc removes a bare " - Disc N" / " CD N" suffix.
func trimTrailingDisc(name string) string {
	lower := strings.ToLower(name)
	for _, marker := range []string{" - disc ", " disc ", " - cd ", " cd "} {
		idx := strings.LastIndex(lower, marker)
		if idx <= 0 {
			continue
		}
		rest := strings.TrimSpace(lower[idx+len(marker):])
		if rest != "" && strings.Trim(rest, "0123456789") == "" {
			return strings.TrimSpace(name[:idx])
		}
	}
	return name
}
