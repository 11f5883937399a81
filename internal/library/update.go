package library

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tagdeck/internal/db"
	"github.com/llehouerou/tagdeck/internal/track"
)

// Upsert inserts or updates records keyed by path in one transaction.
// Updates refresh tags, file facts and automatic art; statistics and the
// manual cover are only written for new tracks.
func (l *Library) Upsert(recs []track.Record) error {
	now := time.Now().Unix()
	err := db.WithTx(l.db, func(tx *sql.Tx) error {
		for i := range recs {
			if err := upsertTrackWithExecutor(tx, &recs[i], now); err != nil {
				return fmt.Errorf("upsert %s: %w", recs[i].Path, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.log.WithField("count", len(recs)).Debug("catalog tracks upserted")
	return nil
}

// upsertTrackWithExecutor is the internal implementation that accepts an executor.
// Uses file mtime for added_at on new tracks (preserved across copies).
func upsertTrackWithExecutor(ex db.Executor, r *track.Record, now int64) error {
	addedAt := r.Mtime
	if addedAt == 0 {
		addedAt = now
	}
	_, err := ex.Exec(`
		INSERT INTO library_tracks (
			path, mtime, ctime, filesize, filetype, length_ms, samplerate, bitdepth, bitrate,
			title, artist, album, album_artist, composer, performer, grouping, genre, comment, lyrics,
			track_number, disc_number, year, compilation,
			playcount, skipcount, lastplayed, art_manual, art_automatic,
			added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			ctime = excluded.ctime,
			filesize = excluded.filesize,
			filetype = excluded.filetype,
			length_ms = excluded.length_ms,
			samplerate = excluded.samplerate,
			bitdepth = excluded.bitdepth,
			bitrate = excluded.bitrate,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			album_artist = excluded.album_artist,
			composer = excluded.composer,
			performer = excluded.performer,
			grouping = excluded.grouping,
			genre = excluded.genre,
			comment = excluded.comment,
			lyrics = excluded.lyrics,
			track_number = excluded.track_number,
			disc_number = excluded.disc_number,
			year = excluded.year,
			compilation = excluded.compilation,
			art_automatic = excluded.art_automatic,
			updated_at = excluded.updated_at
	`,
		r.Path, r.Mtime, r.Ctime, r.Filesize, r.Filetype, r.Length.Milliseconds(), r.Samplerate, r.Bitdepth, r.Bitrate,
		r.Title, r.Artist, r.Album, r.AlbumArtist, r.Composer, r.Performer, r.Grouping, r.Genre, r.Comment, r.Lyrics,
		nullIfZero(r.Track), nullIfZero(r.Disc), nullIfZero(r.Year), db.BoolInt(r.Compilation),
		r.PlayCount, r.SkipCount, r.LastPlayed, r.ArtManual, r.ArtAutomatic,
		addedAt, now)
	return err
}

// ResetStatistics sets the play count and skip count of a track to zero and
// marks it as never played.
func (l *Library) ResetStatistics(id int64) error {
	res, err := l.db.Exec(`
		UPDATE library_tracks
		SET playcount = 0, skipcount = 0, lastplayed = ?, updated_at = ?
		WHERE id = ?
	`, track.NeverPlayed, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

// RecordPlayback increments the play count of a track and sets its last
// played time.
func (l *Library) RecordPlayback(id int64, at time.Time) error {
	res, err := l.db.Exec(`
		UPDATE library_tracks SET playcount = playcount + 1, lastplayed = ? WHERE id = ?
	`, at.Unix(), id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

// RecordSkip increments the skip count of a track.
func (l *Library) RecordSkip(id int64) error {
	res, err := l.db.Exec(`UPDATE library_tracks SET skipcount = skipcount + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

// SetAlbumArtManual assigns a manual cover to every track of an album,
// matched on the effective album artist.
func (l *Library) SetAlbumArtManual(albumArtist, album, url string) error {
	res, err := l.db.Exec(`
		UPDATE library_tracks
		SET art_manual = ?, updated_at = ?
		WHERE (CASE WHEN album_artist != '' THEN album_artist ELSE artist END) = ? AND album = ?
	`, url, time.Now().Unix(), albumArtist, album)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	l.log.WithFields(logrus.Fields{
		"album_artist": albumArtist,
		"album":        album,
		"tracks":       n,
	}).Debug("manual cover assigned")
	return nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}
