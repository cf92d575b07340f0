package state

import (
	"database/sql"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			view TEXT NOT NULL DEFAULT 'browser',
			browser_path TEXT,
			playlist_focus INTEGER NOT NULL DEFAULT 0,
			last_query TEXT
		);
	`)
	return err
}
