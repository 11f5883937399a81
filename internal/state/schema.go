package state

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS library_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			mtime INTEGER NOT NULL DEFAULT 0,
			ctime INTEGER NOT NULL DEFAULT 0,
			filesize INTEGER NOT NULL DEFAULT -1,
			filetype TEXT NOT NULL DEFAULT '',
			length_ms INTEGER NOT NULL DEFAULT 0,
			samplerate INTEGER NOT NULL DEFAULT 0,
			bitdepth INTEGER NOT NULL DEFAULT 0,
			bitrate INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL DEFAULT '',
			artist TEXT NOT NULL DEFAULT '',
			album TEXT NOT NULL DEFAULT '',
			album_artist TEXT NOT NULL DEFAULT '',
			composer TEXT NOT NULL DEFAULT '',
			performer TEXT NOT NULL DEFAULT '',
			grouping TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL DEFAULT '',
			lyrics TEXT NOT NULL DEFAULT '',
			track_number INTEGER,
			disc_number INTEGER,
			year INTEGER,
			compilation INTEGER NOT NULL DEFAULT 0,
			playcount INTEGER NOT NULL DEFAULT 0,
			skipcount INTEGER NOT NULL DEFAULT 0,
			lastplayed INTEGER NOT NULL DEFAULT -1,
			art_manual TEXT NOT NULL DEFAULT '',
			art_automatic TEXT NOT NULL DEFAULT '',
			added_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_album_artist ON library_tracks(album_artist);
		CREATE INDEX IF NOT EXISTS idx_tracks_album_artist_album ON library_tracks(album_artist, album);
		CREATE INDEX IF NOT EXISTS idx_tracks_artist_album ON library_tracks(artist, album);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: version 1 databases predate cover art and file facts
	_, _ = db.Exec(`ALTER TABLE library_tracks ADD COLUMN art_manual TEXT NOT NULL DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE library_tracks ADD COLUMN art_automatic TEXT NOT NULL DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE library_tracks ADD COLUMN bitrate INTEGER NOT NULL DEFAULT 0`)

	return nil
}
