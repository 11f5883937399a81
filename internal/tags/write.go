package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Write writes the editable fields of t to a music file.
// The file must already exist. This operation modifies the file in place.
// Fields the editor does not own (replay gain, MusicBrainz ids, pictures)
// are left untouched; empty values remove the corresponding tag.
func Write(path string, t *Tag) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtMP3:
		return writeMP3Tags(path, t)
	case ExtFLAC:
		return writeFLACTags(path, t)
	case ExtOPUS, ExtOGG, ExtOGA:
		return writeOggTags(path, t)
	case ExtM4A, ExtMP4:
		return writeM4ATags(path, t)
	default:
		return fmt.Errorf("unsupported file format: %s", ext)
	}
}

// vorbisFields returns the Vorbis comment representation of t. Empty values
// mark keys to delete.
func vorbisFields(t *Tag, existingDate string) []vorbisField {
	return []vorbisField{
		{"TITLE", t.Title},
		{"ARTIST", t.Artist},
		{"ALBUM", t.Album},
		{"ALBUMARTIST", t.AlbumArtist},
		{keyComposer, t.Composer},
		{keyPerformer, t.Performer},
		{keyGrouping, t.Grouping},
		{"GENRE", t.Genre},
		{keyComment, t.Comment},
		{keyLyrics, t.Lyrics},
		{"TRACKNUMBER", formatInt(t.TrackNumber)},
		{"DISCNUMBER", formatInt(t.DiscNumber)},
		{keyDate, dateForYear(existingDate, t.Year)},
		{keyCompilation, formatFlag(t.Compilation)},
	}
}

type vorbisField struct {
	key   string
	value string
}

// dateForYear keeps a full release date already in the file when its year
// still matches.
func dateForYear(existing string, year int) string {
	if year > 0 && parseYear(existing) == year {
		return existing
	}
	return formatInt(year)
}
