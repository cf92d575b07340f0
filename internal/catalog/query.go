package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	dbutil "github.com/llehouerou/shelf/internal/db"
	"github.com/llehouerou/shelf/internal/grouping"
)

// queryChunk bounds the ids bound into one IN clause.
const queryChunk = 500

// fieldColumns maps record field names to track columns.
var fieldColumns = map[string]string{
	"id":           "id",
	"url":          "path",
	"path":         "path",
	"artist":       "artist",
	"performer":    "album_artist",
	"album_artist": "album_artist",
	"album":        "album",
	"title":        "title",
	"tracknr":      "track_number",
	"partofset":    "disc_number",
	"date":         "year",
	"genre":        "genre",
	"compilation":  "compilation",
	"duration":     "duration_ms",
	"size":         "size",
	"added":        "added_at",
	"mtime":        "mtime",
}

// Fields returns every field name a record can hold, sorted.
func Fields() []string {
	names := make([]string, 0, len(fieldColumns))
	for name := range fieldColumns {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

const trackOrder = `ORDER BY album_artist COLLATE NOCASE, album COLLATE NOCASE,
	disc_number, track_number, title COLLATE NOCASE, id`

// Collection is a set of track ids with a defined order.
type Collection interface {
	ids(ctx context.Context, c *Catalog) ([]int64, error)
}

// Universe is every track in the catalog.
type Universe struct{}

func (Universe) ids(ctx context.Context, c *Catalog) ([]int64, error) {
	return c.queryIDs(ctx, `SELECT id FROM tracks `+trackOrder)
}

// Match is the tracks whose field equals value.
type Match struct {
	Field string
	Value any
}

func (m Match) ids(ctx context.Context, c *Catalog) ([]int64, error) {
	col, ok := fieldColumns[m.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, m.Field)
	}
	return c.queryIDs(ctx, `SELECT id FROM tracks WHERE `+col+` = ? `+trackOrder, m.Value)
}

// Search is the tracks whose artist, album or title contains Text,
// ignoring case.
type Search struct {
	Text string
}

func (s Search) ids(ctx context.Context, c *Catalog) ([]int64, error) {
	pattern := "%" + escapeLike(s.Text) + "%"
	return c.queryIDs(ctx, `
		SELECT id FROM tracks
		WHERE artist LIKE ? ESCAPE '\' OR album LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\'
		`+trackOrder, pattern, pattern, pattern)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// IDList is an already ordered list of ids.
type IDList []int64

func (l IDList) ids(context.Context, *Catalog) ([]int64, error) {
	return slices.Clone(l), nil
}

// Playlist is the entries of the named playlist in playlist order.
type Playlist struct {
	Name string
}

func (p Playlist) ids(ctx context.Context, c *Catalog) ([]int64, error) {
	id, err := c.playlistID(ctx, c.db, p.Name)
	if err != nil {
		return nil, err
	}
	return c.queryIDs(ctx, `
		SELECT track_id FROM playlist_entries
		WHERE playlist_id = ?
		ORDER BY position
	`, id)
}

// QueryIDs returns the ordered ids of coll.
func (c *Catalog) QueryIDs(ctx context.Context, coll Collection) ([]int64, error) {
	return coll.ids(ctx, c)
}

func (c *Catalog) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// QueryRecords returns the named fields of the given tracks. Unknown field
// names are ignored, ids with no track are left out, and NULL or zero
// columns are absent from the records.
func (c *Catalog) QueryRecords(ctx context.Context, ids []int64, fields []string) (map[int64]Record, error) {
	var names, cols []string
	for _, f := range fields {
		if col, ok := fieldColumns[f]; ok && !slices.Contains(names, f) {
			names = append(names, f)
			cols = append(cols, col)
		}
	}

	out := make(map[int64]Record, len(ids))
	for _, chunk := range dbutil.Chunks(ids, queryChunk) {
		if err := c.queryChunk(ctx, chunk, names, cols, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Catalog) queryChunk(ctx context.Context, ids []int64, names, cols []string, out map[int64]Record) error {
	selectList := "id"
	if len(cols) > 0 {
		selectList += ", " + strings.Join(cols, ", ")
	}
	//nolint:gosec // column names come from fieldColumns
	query := `SELECT ` + selectList + ` FROM tracks WHERE id IN (` + dbutil.Placeholders(len(ids)) + `)`

	rows, err := c.db.QueryContext(ctx, query, dbutil.Args(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	vals := make([]any, len(cols)+1)
	ptrs := make([]any, len(vals))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		id, _ := vals[0].(int64)
		rec := make(Record, len(names))
		for i, name := range names {
			if v, ok := presentValue(vals[i+1]); ok {
				rec[name] = v
			}
		}
		out[id] = rec
	}
	return rows.Err()
}

// presentValue normalizes a scanned column. NULL, zero and empty values
// are absent.
func presentValue(v any) (any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case int64:
		return v, v != 0
	case float64:
		return v, v != 0
	case string:
		return v, v != ""
	case []byte:
		return string(v), len(v) > 0
	}
	return v, true
}

// Records returns the tracks of scope in scope order, holding the named
// fields. A nil scope means the whole catalog in its default order. It
// makes the catalog a grouping.Source.
func (c *Catalog) Records(ctx context.Context, scope []int64, fields []string) ([]grouping.Record, error) {
	if scope == nil {
		var err error
		if scope, err = c.QueryIDs(ctx, Universe{}); err != nil {
			return nil, err
		}
	}

	recs, err := c.QueryRecords(ctx, scope, fields)
	if err != nil {
		return nil, err
	}
	out := make([]grouping.Record, 0, len(recs))
	for _, id := range scope {
		if rec, ok := recs[id]; ok {
			out = append(out, grouping.Record{ID: id, Fields: rec})
		}
	}
	return out, nil
}
