package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/track"
)

// Store reads and writes track records to music files.
type Store struct {
	log logrus.FieldLogger
}

// NewStore creates a file-backed tag store.
func NewStore(log logrus.FieldLogger) *Store {
	return &Store{log: log}
}

// ReadBlocking reads the tags and audio properties of path. A file whose
// tags cannot be read yields a record with Valid unset and the read error.
func (s *Store) ReadBlocking(path string) (track.Record, error) {
	rec := track.New(path)

	info, err := os.Stat(path)
	if err != nil {
		return rec, err
	}
	rec.Filesize = info.Size()
	rec.Mtime = info.ModTime().Unix()
	rec.Filetype = strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))

	t, err := Read(path)
	if err != nil {
		return rec, fmt.Errorf("read tags: %w", err)
	}
	applyTag(&rec, t)
	rec.Valid = true

	props, err := ReadProperties(path)
	if err != nil {
		s.log.WithFields(logrus.Fields{"path": path, "error": err}).Debug("audio properties unavailable")
		return rec, nil
	}
	rec.Length = props.Length
	rec.Samplerate = props.SampleRate
	rec.Bitdepth = props.BitDepth
	if props.Codec != "" {
		rec.Filetype = props.Codec
	}
	rec.Bitrate = props.Bitrate
	if secs := props.Length.Seconds(); rec.Bitrate == 0 && secs > 0 {
		rec.Bitrate = int(float64(rec.Filesize) * 8 / secs / 1000)
	}

	return rec, nil
}

// Save writes the editable fields of rec to path.
func (s *Store) Save(path string, rec track.Record) error {
	if err := Write(path, tagFromRecord(&rec)); err != nil {
		return err
	}
	s.log.WithField("path", path).Debug("tags written")
	return nil
}

func applyTag(rec *track.Record, t *Tag) {
	rec.Title = t.Title
	rec.Artist = t.Artist
	rec.Album = t.Album
	rec.AlbumArtist = t.AlbumArtist
	rec.Composer = t.Composer
	rec.Performer = t.Performer
	rec.Grouping = t.Grouping
	rec.Genre = t.Genre
	rec.Comment = t.Comment
	rec.Lyrics = t.Lyrics
	rec.Track = t.TrackNumber
	rec.Disc = t.DiscNumber
	rec.Year = t.Year
	rec.Compilation = t.Compilation
	rec.HasEmbeddedCover = t.HasCover
}

func tagFromRecord(rec *track.Record) *Tag {
	return &Tag{
		Path:        rec.Path,
		Title:       rec.Title,
		Artist:      rec.Artist,
		Album:       rec.Album,
		AlbumArtist: rec.AlbumArtist,
		Composer:    rec.Composer,
		Performer:   rec.Performer,
		Grouping:    rec.Grouping,
		Genre:       rec.Genre,
		Comment:     rec.Comment,
		Lyrics:      rec.Lyrics,
		TrackNumber: rec.Track,
		DiscNumber:  rec.Disc,
		Year:        rec.Year,
		Compilation: rec.Compilation,
	}
}
