// Package library is the SQLite-backed track catalog. It stores the editable
// metadata, play statistics and cover choices of every known track.
package library

import (
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/db"
	"github.com/llehouerou/tagdeck/internal/track"
)

// ErrNotFound is returned when no catalog track has the requested id.
var ErrNotFound = errors.New("track not found")

type Library struct {
	db  *sql.DB
	log logrus.FieldLogger
}

func New(db *sql.DB, log logrus.FieldLogger) *Library {
	return &Library{db: db, log: log}
}

const trackColumns = `
	id, path, mtime, ctime, filesize, filetype, length_ms, samplerate, bitdepth, bitrate,
	title, artist, album, album_artist, composer, performer, grouping, genre, comment, lyrics,
	track_number, disc_number, year, compilation,
	playcount, skipcount, lastplayed, art_manual, art_automatic`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(row scanner) (track.Record, error) {
	var r track.Record
	var lengthMS int64
	var trackNum, discNum, year sql.NullInt64
	var compilation int

	err := row.Scan(
		&r.ID, &r.Path, &r.Mtime, &r.Ctime, &r.Filesize, &r.Filetype, &lengthMS, &r.Samplerate, &r.Bitdepth, &r.Bitrate,
		&r.Title, &r.Artist, &r.Album, &r.AlbumArtist, &r.Composer, &r.Performer, &r.Grouping, &r.Genre, &r.Comment, &r.Lyrics,
		&trackNum, &discNum, &year, &compilation,
		&r.PlayCount, &r.SkipCount, &r.LastPlayed, &r.ArtManual, &r.ArtAutomatic,
	)
	if err != nil {
		return track.Record{}, err
	}
	r.Valid = true
	r.Length = time.Duration(lengthMS) * time.Millisecond
	r.Track = int(db.NullInt64Value(trackNum, 0))
	r.Disc = int(db.NullInt64Value(discNum, 0))
	r.Year = int(db.NullInt64Value(year, 0))
	r.Compilation = compilation != 0
	return r, nil
}

func scanTracks(rows *sql.Rows) ([]track.Record, error) {
	defer rows.Close()

	var tracks []track.Record
	for rows.Next() {
		r, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, r)
	}
	return tracks, rows.Err()
}

// nullIfZero stores unknown track/disc/year numbers as NULL.
func nullIfZero(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
}
