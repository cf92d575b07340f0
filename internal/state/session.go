package state

import (
	"database/sql"
	"encoding/json"
	"errors"

	dbutil "github.com/llehouerou/shelf/internal/db"
)

// Session is the UI position restored on the next start.
type Session struct {
	View          string   // "browser", "playlist" or "search"
	BrowserPath   []string // group keys opened in the browser, outermost first
	PlaylistFocus int
	LastQuery     string
}

func getSession(db *sql.DB) (*Session, error) {
	row := db.QueryRow(`
		SELECT view, browser_path, playlist_focus, last_query
		FROM session_state WHERE id = 1
	`)

	var s Session
	var path, query sql.NullString
	err := row.Scan(&s.View, &path, &s.PlaylistFocus, &query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved state is valid on first run
	}
	if err != nil {
		return nil, err
	}

	if p := dbutil.NullStringValue(path); p != "" {
		if err := json.Unmarshal([]byte(p), &s.BrowserPath); err != nil {
			return nil, err
		}
	}
	s.LastQuery = dbutil.NullStringValue(query)
	return &s, nil
}

func saveSession(db *sql.DB, s Session) error {
	var path string
	if len(s.BrowserPath) > 0 {
		data, err := json.Marshal(s.BrowserPath)
		if err != nil {
			return err
		}
		path = string(data)
	}

	_, err := db.Exec(`
		INSERT INTO session_state (id, view, browser_path, playlist_focus, last_query)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			view = excluded.view,
			browser_path = excluded.browser_path,
			playlist_focus = excluded.playlist_focus,
			last_query = excluded.last_query
	`, s.View, dbutil.NullString(path), s.PlaylistFocus, dbutil.NullString(s.LastQuery))
	return err
}
