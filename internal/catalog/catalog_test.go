//nolint:goconst // test files commonly repeat strings for test data
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/llehouerou/shelf/internal/grouping"
)

// newTestCatalog creates a catalog over an in-memory database. A single
// connection keeps every query on the same database.
func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	c, err := New(db)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

var testTracks = []Track{
	{Path: "/m/b/post/03.flac", Mtime: 1, Artist: "Björk", AlbumArtist: "Björk", Album: "Post", Title: "Hyperballad", TrackNumber: 3, Year: 1995, Duration: 321 * time.Second},
	{Path: "/m/b/post/01.flac", Mtime: 1, Artist: "Björk", AlbumArtist: "Björk", Album: "Post", Title: "Army of Me", TrackNumber: 1, Year: 1995},
	{Path: "/m/v/hits/01.mp3", Mtime: 2, Artist: "Nina Simone", AlbumArtist: "Various Artists", Album: "Jazz Hits", Title: "Sinnerman", TrackNumber: 1, Compilation: true, Genre: "Jazz"},
	{Path: "/m/a/x/02.mp3", Mtime: 3, Artist: "Aphex Twin", AlbumArtist: "Aphex Twin", Album: "SAW 85-92", Title: "Xtal", DiscNumber: 1, TrackNumber: 1, Size: 2048},
}

// seed stores testTracks and returns their ids keyed by title.
func seed(t *testing.T, c *Catalog) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.UpsertTracks(ctx, testTracks))

	ids := make(map[string]int64)
	for _, tr := range testTracks {
		got, err := c.TrackByPath(ctx, tr.Path)
		require.NoError(t, err)
		ids[tr.Title] = got.ID
	}
	return ids
}

func TestQueryIDs_Universe(t *testing.T) {
	c := newTestCatalog(t)
	ids := seed(t, c)

	got, err := c.QueryIDs(context.Background(), Universe{})
	require.NoError(t, err)
	assert.Equal(t, []int64{ids["Xtal"], ids["Army of Me"], ids["Hyperballad"], ids["Sinnerman"]}, got)
}

func TestQueryIDs_Collections(t *testing.T) {
	c := newTestCatalog(t)
	ids := seed(t, c)
	ctx := context.Background()

	tests := []struct {
		name string
		coll Collection
		want []int64
	}{
		{"match album", Match{Field: "album", Value: "Post"}, []int64{ids["Army of Me"], ids["Hyperballad"]}},
		{"match alias column", Match{Field: "performer", Value: "Various Artists"}, []int64{ids["Sinnerman"]}},
		{"match nothing", Match{Field: "genre", Value: "Polka"}, nil},
		{"search is case-insensitive", Search{Text: "ARMY"}, []int64{ids["Army of Me"]}},
		{"search escapes wildcards", Search{Text: "%"}, nil},
		{"id list keeps order", IDList{ids["Sinnerman"], 999, ids["Xtal"]}, []int64{ids["Sinnerman"], 999, ids["Xtal"]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.QueryIDs(ctx, tt.coll)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryIDs_Errors(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.QueryIDs(ctx, Match{Field: "mood", Value: "sad"})
	require.ErrorIs(t, err, ErrUnknownField)

	_, err = c.QueryIDs(ctx, Playlist{Name: "nope"})
	require.ErrorIs(t, err, ErrNoPlaylist)
}

func TestQueryRecords(t *testing.T) {
	c := newTestCatalog(t)
	ids := seed(t, c)

	recs, err := c.QueryRecords(context.Background(),
		[]int64{ids["Hyperballad"], ids["Sinnerman"], 12345},
		[]string{"artist", "title", "tracknr", "partofset", "compilation", "duration", "genre", "nonsense"})
	require.NoError(t, err)
	require.Len(t, recs, 2, "unknown ids are left out")

	assert.Equal(t, Record{
		"artist":   "Björk",
		"title":    "Hyperballad",
		"tracknr":  int64(3),
		"duration": int64(321000),
	}, recs[ids["Hyperballad"]])

	assert.Equal(t, Record{
		"artist":      "Nina Simone",
		"title":       "Sinnerman",
		"tracknr":     int64(1),
		"compilation": int64(1),
		"genre":       "Jazz",
	}, recs[ids["Sinnerman"]])
}

func TestQueryRecords_Chunked(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	tracks := make([]Track, queryChunk+10)
	for i := range tracks {
		tracks[i] = Track{Path: fmt.Sprintf("/m/%04d.mp3", i), Mtime: 1, Title: "t"}
	}
	require.NoError(t, c.UpsertTracks(ctx, tracks))

	ids, err := c.QueryIDs(ctx, Universe{})
	require.NoError(t, err)
	require.Len(t, ids, len(tracks))

	recs, err := c.QueryRecords(ctx, ids, []string{"title"})
	require.NoError(t, err)
	assert.Len(t, recs, len(tracks))
}

func TestRecords_GroupingSource(t *testing.T) {
	c := newTestCatalog(t)
	ids := seed(t, c)
	ctx := context.Background()

	var src grouping.Source = c
	recs, err := src.Records(ctx, nil, []string{"album"})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, ids["Xtal"], recs[0].ID)
	assert.Equal(t, "SAW 85-92", recs[0].Fields["album"])

	recs, err = src.Records(ctx, []int64{ids["Sinnerman"], 777}, []string{"album"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, ids["Sinnerman"], recs[0].ID)
}

func TestUpsertTracks_UpdatesByPath(t *testing.T) {
	c := newTestCatalog(t)
	ids := seed(t, c)
	ctx := context.Background()

	changed := testTracks[0]
	changed.Title = "Hyperballad (remaster)"
	changed.Mtime = 9
	require.NoError(t, c.UpsertTracks(ctx, []Track{changed}))

	got, err := c.TrackByPath(ctx, changed.Path)
	require.NoError(t, err)
	assert.Equal(t, ids["Hyperballad"], got.ID)
	assert.Equal(t, "Hyperballad (remaster)", got.Title)
	assert.Equal(t, 321*time.Second, got.Duration)

	n, err := c.TrackCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	mtimes, err := c.TrackMtimes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), mtimes[changed.Path])
}

func TestDeleteTracks(t *testing.T) {
	c := newTestCatalog(t)
	seed(t, c)
	ctx := context.Background()

	require.NoError(t, c.DeleteTracks(ctx, []string{"/m/a/x/02.mp3", "/not/there"}))

	n, err := c.TrackCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = c.TrackByPath(ctx, "/m/a/x/02.mp3")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestFields(t *testing.T) {
	fields := Fields()
	assert.Contains(t, fields, "artist")
	assert.Contains(t, fields, "partofset")
	assert.IsNonDecreasing(t, fields)
}
