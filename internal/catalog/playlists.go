package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbutil "github.com/llehouerou/shelf/internal/db"
)

// PlaylistInfo describes a stored playlist.
type PlaylistInfo struct {
	ID      int64
	Name    string
	Current int
	Len     int
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (c *Catalog) playlistID(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM playlists WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrNoPlaylist, name)
	}
	return id, err
}

// playlistState returns the id, entry count and current position of name.
func (c *Catalog) playlistState(ctx context.Context, tx *sql.Tx, name string) (id int64, n, cur int, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT p.id, p.current_position,
			(SELECT COUNT(*) FROM playlist_entries e WHERE e.playlist_id = p.id)
		FROM playlists p
		WHERE p.name = ?
	`, name).Scan(&id, &cur, &n)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %q", ErrNoPlaylist, name)
	}
	return id, n, cur, err
}

func setCurrent(ctx context.Context, tx *sql.Tx, id int64, cur int) error {
	_, err := tx.ExecContext(ctx, `UPDATE playlists SET current_position = ? WHERE id = ?`, cur, id)
	return err
}

func shiftEntries(ctx context.Context, tx *sql.Tx, id int64, from, to, delta int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE playlist_entries SET position = position + ?
		WHERE playlist_id = ? AND position >= ? AND position < ?
	`, delta, id, from, to)
	return err
}

// CreatePlaylist creates an empty playlist. Creating an existing playlist
// returns its id.
func (c *Catalog) CreatePlaylist(ctx context.Context, name string) (int64, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err := c.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO playlists (name, created_at) VALUES (?, ?)
	`, name, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return c.playlistID(ctx, c.db, name)
}

// Playlists returns every playlist ordered by name.
func (c *Catalog) Playlists(ctx context.Context) ([]PlaylistInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.current_position,
			(SELECT COUNT(*) FROM playlist_entries e WHERE e.playlist_id = p.id)
		FROM playlists p
		ORDER BY p.name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlaylistInfo
	for rows.Next() {
		var p PlaylistInfo
		if err := rows.Scan(&p.ID, &p.Name, &p.Current, &p.Len); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PlaylistAdd appends ids to the playlist, publishing one add per id.
func (c *Catalog) PlaylistAdd(ctx context.Context, name string, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var start int
	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		pid, n, _, err := c.playlistState(ctx, tx, name)
		if err != nil {
			return err
		}
		start = n
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO playlist_entries (playlist_id, position, track_id) VALUES (?, ?, ?)
			`, pid, n+i, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	recs := c.eventRecords(ctx, ids)
	events := make([]ChangeEvent, len(ids))
	for i, id := range ids {
		events[i] = ChangeEvent{Playlist: name, Kind: KindAdd, ID: id, Pos: start + i, Record: recs[id]}
	}
	c.publish(events...)
	return nil
}

// PlaylistInsert puts id at pos, shifting later entries down.
func (c *Catalog) PlaylistInsert(ctx context.Context, name string, pos int, id int64) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		pid, n, cur, err := c.playlistState(ctx, tx, name)
		if err != nil {
			return err
		}
		if pos < 0 || pos > n {
			return fmt.Errorf("%w: insert at %d of %d", ErrPosition, pos, n)
		}
		if err := shiftEntries(ctx, tx, pid, pos, n, 1); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_entries (playlist_id, position, track_id) VALUES (?, ?, ?)
		`, pid, pos, id); err != nil {
			return err
		}
		if cur >= pos {
			return setCurrent(ctx, tx, pid, cur+1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recs := c.eventRecords(ctx, []int64{id})
	c.publish(ChangeEvent{Playlist: name, Kind: KindInsert, ID: id, Pos: pos, Record: recs[id]})
	return nil
}

// PlaylistRemove deletes the entry at pos.
func (c *Catalog) PlaylistRemove(ctx context.Context, name string, pos int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var id int64
	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		pid, n, cur, err := c.playlistState(ctx, tx, name)
		if err != nil {
			return err
		}
		if pos < 0 || pos >= n {
			return fmt.Errorf("%w: remove %d of %d", ErrPosition, pos, n)
		}
		if err := tx.QueryRowContext(ctx, `
			SELECT track_id FROM playlist_entries WHERE playlist_id = ? AND position = ?
		`, pid, pos).Scan(&id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_entries WHERE playlist_id = ? AND position = ?
		`, pid, pos); err != nil {
			return err
		}
		if err := shiftEntries(ctx, tx, pid, pos+1, n, -1); err != nil {
			return err
		}
		switch {
		case cur == pos:
			return setCurrent(ctx, tx, pid, -1)
		case cur > pos:
			return setCurrent(ctx, tx, pid, cur-1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(ChangeEvent{Playlist: name, Kind: KindRemove, ID: id, Pos: pos})
	return nil
}

// PlaylistMove moves the entry at from to position to.
func (c *Catalog) PlaylistMove(ctx context.Context, name string, from, to int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var id int64
	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		pid, n, cur, err := c.playlistState(ctx, tx, name)
		if err != nil {
			return err
		}
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("%w: move %d to %d of %d", ErrPosition, from, to, n)
		}

		var entry int64
		if err := tx.QueryRowContext(ctx, `
			SELECT id, track_id FROM playlist_entries WHERE playlist_id = ? AND position = ?
		`, pid, from).Scan(&entry, &id); err != nil {
			return err
		}
		if from < to {
			err = shiftEntries(ctx, tx, pid, from+1, to+1, -1)
		} else {
			err = shiftEntries(ctx, tx, pid, to, from, 1)
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE playlist_entries SET position = ? WHERE id = ?
		`, to, entry); err != nil {
			return err
		}
		if moved := movedPosition(cur, from, to); moved != cur {
			return setCurrent(ctx, tx, pid, moved)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(ChangeEvent{Playlist: name, Kind: KindMove, ID: id, Pos: from, NewPos: to})
	return nil
}

// movedPosition returns where the entry at pos ends up after the entry at
// from moved to to.
func movedPosition(pos, from, to int) int {
	switch {
	case pos < 0:
		return pos
	case pos == from:
		return to
	case from < pos && pos <= to:
		return pos - 1
	case to <= pos && pos < from:
		return pos + 1
	}
	return pos
}

// PlaylistClear removes every entry of the playlist.
func (c *Catalog) PlaylistClear(ctx context.Context, name string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		pid, _, _, err := c.playlistState(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_entries WHERE playlist_id = ?`, pid); err != nil {
			return err
		}
		return setCurrent(ctx, tx, pid, -1)
	})
	if err != nil {
		return err
	}

	c.publish(ChangeEvent{Playlist: name, Kind: KindClear})
	return nil
}

// SetCurrent marks pos as the current entry of the playlist. -1 clears it.
func (c *Catalog) SetCurrent(ctx context.Context, name string, pos int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		pid, n, _, err := c.playlistState(ctx, tx, name)
		if err != nil {
			return err
		}
		if pos < -1 || pos >= n {
			return fmt.Errorf("%w: current %d of %d", ErrPosition, pos, n)
		}
		return setCurrent(ctx, tx, pid, pos)
	})
	if err != nil {
		return err
	}

	c.publish(ChangeEvent{Playlist: name, Kind: KindCurrent, Pos: pos})
	return nil
}

// Current returns the current position of the playlist, or -1.
func (c *Catalog) Current(ctx context.Context, name string) (int, error) {
	var cur int
	err := c.db.QueryRowContext(ctx, `
		SELECT current_position FROM playlists WHERE name = ?
	`, name).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, fmt.Errorf("%w: %q", ErrNoPlaylist, name)
	}
	return cur, err
}

// PlaylistSnapshot returns the entries and current position of the playlist
// together with the sequence of the last change they reflect. Events with a
// sequence up to seq are already part of the snapshot.
func (c *Catalog) PlaylistSnapshot(ctx context.Context, name string) (ids []int64, cur int, seq uint64, err error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ids, err = c.QueryIDs(ctx, Playlist{Name: name})
	if err != nil {
		return nil, -1, 0, err
	}
	cur, err = c.Current(ctx, name)
	if err != nil {
		return nil, -1, 0, err
	}
	return ids, cur, c.seq, nil
}

// eventRecords loads the full records attached to add and insert events.
// A failure only costs the subscribers a fetch.
func (c *Catalog) eventRecords(ctx context.Context, ids []int64) map[int64]Record {
	recs, err := c.QueryRecords(ctx, ids, Fields())
	if err != nil {
		c.logger.Warn("load event records", "err", err)
		return nil
	}
	return recs
}
