package library

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/llehouerou/tagdeck/internal/filterparser"
	"github.com/llehouerou/tagdeck/internal/track"
)

// TrackByPath returns the catalog record for path. The boolean is false when
// the path is not in the catalog.
func (l *Library) TrackByPath(path string) (track.Record, bool, error) {
	row := l.db.QueryRow(`SELECT `+trackColumns+` FROM library_tracks WHERE path = ?`, path)
	r, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return track.Record{}, false, nil
	}
	if err != nil {
		return track.Record{}, false, err
	}
	return r, true, nil
}

// TrackByID returns a track by its ID.
func (l *Library) TrackByID(id int64) (track.Record, error) {
	row := l.db.QueryRow(`SELECT `+trackColumns+` FROM library_tracks WHERE id = ?`, id)
	r, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return track.Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return r, err
}

// Tracks returns the tracks of an album, matched on the effective album
// artist.
func (l *Library) Tracks(albumArtist, album string) ([]track.Record, error) {
	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE (CASE WHEN album_artist != '' THEN album_artist ELSE artist END) = ? AND album = ?
		ORDER BY disc_number, track_number, title COLLATE NOCASE
	`, albumArtist, album)
	if err != nil {
		return nil, err
	}
	return scanTracks(rows)
}

// Filter returns every catalog track matching a filter expression.
func (l *Library) Filter(expr string) ([]track.Record, error) {
	f, err := filterparser.Parse(expr)
	if err != nil {
		return nil, err
	}

	rows, err := l.db.Query(`
		SELECT ` + trackColumns + `
		FROM library_tracks
		ORDER BY album_artist COLLATE NOCASE, album COLLATE NOCASE, disc_number, track_number
	`)
	if err != nil {
		return nil, err
	}
	all, err := scanTracks(rows)
	if err != nil {
		return nil, err
	}

	var matched []track.Record
	for _, r := range all {
		if f.Match(r) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (l *Library) TrackCount() (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM library_tracks`).Scan(&count)
	return count, err
}
