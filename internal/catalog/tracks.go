package catalog

import (
	"context"
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/shelf/internal/db"
)

// Track is one audio file known to the catalog.
type Track struct {
	ID          int64
	Path        string
	Mtime       int64
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	DiscNumber  int
	TrackNumber int
	Year        int
	Genre       string
	Compilation bool
	Duration    time.Duration
	Size        int64
}

// UpsertTracks inserts tracks or updates them by path, in one transaction.
// It publishes a single library change when anything was written.
func (c *Catalog) UpsertTracks(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	now := time.Now().Unix()
	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tracks (path, mtime, artist, album_artist, album, title,
				disc_number, track_number, year, genre, compilation, duration_ms, size, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				mtime = excluded.mtime,
				artist = excluded.artist,
				album_artist = excluded.album_artist,
				album = excluded.album,
				title = excluded.title,
				disc_number = excluded.disc_number,
				track_number = excluded.track_number,
				year = excluded.year,
				genre = excluded.genre,
				compilation = excluded.compilation,
				duration_ms = excluded.duration_ms,
				size = excluded.size
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tracks {
			compilation := 0
			if t.Compilation {
				compilation = 1
			}
			_, err := stmt.ExecContext(ctx,
				t.Path, t.Mtime,
				dbutil.NullString(t.Artist), dbutil.NullString(t.AlbumArtist),
				dbutil.NullString(t.Album), dbutil.NullString(t.Title),
				dbutil.NullInt64(int64(t.DiscNumber)), dbutil.NullInt64(int64(t.TrackNumber)),
				dbutil.NullInt64(int64(t.Year)), dbutil.NullString(t.Genre),
				compilation, dbutil.NullInt64(t.Duration.Milliseconds()), dbutil.NullInt64(t.Size),
				now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Debug("tracks upserted", "count", len(tracks))
	c.publish(ChangeEvent{Playlist: LibraryCollection, Kind: KindOther})
	return nil
}

// DeleteTracks removes the tracks stored under paths. Playlist entries
// referring to them are kept and show as missing.
func (c *Catalog) DeleteTracks(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		for _, p := range paths {
			if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE path = ?`, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Debug("tracks deleted", "count", len(paths))
	c.publish(ChangeEvent{Playlist: LibraryCollection, Kind: KindOther})
	return nil
}

// TrackMtimes returns the stored modification time of every track path.
func (c *Catalog) TrackMtimes(ctx context.Context) (map[string]int64, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path, mtime FROM tracks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		out[path] = mtime
	}
	return out, rows.Err()
}

// TrackCount returns the number of tracks.
func (c *Catalog) TrackCount(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&n)
	return n, err
}

// TrackByPath returns the track stored under path.
func (c *Catalog) TrackByPath(ctx context.Context, path string) (*Track, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, path, mtime, artist, album_artist, album, title,
			disc_number, track_number, year, genre, compilation, duration_ms, size
		FROM tracks
		WHERE path = ?
	`, path)

	var t Track
	var artist, albumArtist, album, title, genre sql.NullString
	var disc, trackNum, year, duration, size sql.NullInt64
	var compilation int
	err := row.Scan(&t.ID, &t.Path, &t.Mtime, &artist, &albumArtist, &album, &title,
		&disc, &trackNum, &year, &genre, &compilation, &duration, &size)
	if err != nil {
		return nil, err
	}
	t.Artist = dbutil.NullStringValue(artist)
	t.AlbumArtist = dbutil.NullStringValue(albumArtist)
	t.Album = dbutil.NullStringValue(album)
	t.Title = dbutil.NullStringValue(title)
	t.Genre = dbutil.NullStringValue(genre)
	t.DiscNumber = int(dbutil.NullInt64Value(disc))
	t.TrackNumber = int(dbutil.NullInt64Value(trackNum))
	t.Year = int(dbutil.NullInt64Value(year))
	t.Compilation = compilation != 0
	t.Duration = time.Duration(dbutil.NullInt64Value(duration)) * time.Millisecond
	t.Size = dbutil.NullInt64Value(size)
	return &t, nil
}
