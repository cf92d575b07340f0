package catalog

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			mtime INTEGER NOT NULL,
			artist TEXT,
			album_artist TEXT,
			album TEXT,
			title TEXT,
			disc_number INTEGER,
			track_number INTEGER,
			year INTEGER,
			genre TEXT,
			compilation INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER,
			size INTEGER,
			added_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_album_artist_album ON tracks(album_artist, album);
		CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist);

		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			current_position INTEGER NOT NULL DEFAULT -1,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlist_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			track_id INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_playlist_position ON playlist_entries(playlist_id, position);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}
