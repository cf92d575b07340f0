package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/collcache"
	"github.com/llehouerou/shelf/internal/config"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/library"
)

var testTracks = []catalog.Track{
	{Path: "/m/b/post/01.flac", Mtime: 1, Artist: "Björk", AlbumArtist: "Björk", Album: "Post", Title: "Army of Me", TrackNumber: 1, Year: 1995},
	{Path: "/m/b/post/03.flac", Mtime: 1, Artist: "Björk", AlbumArtist: "Björk", Album: "Post", Title: "Hyperballad", TrackNumber: 3, Year: 1995},
	{Path: "/m/a/x/02.mp3", Mtime: 3, Artist: "Aphex Twin", AlbumArtist: "Aphex Twin", Album: "SAW 85-92", Title: "Xtal", DiscNumber: 1, TrackNumber: 1},
}

func newTestModel(t *testing.T, cfg *config.Config) (Model, *catalog.Catalog) {
	t.Helper()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "shelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	require.NoError(t, cat.UpsertTracks(context.Background(), testTracks))

	if cfg == nil {
		cfg = &config.Config{}
	}
	m, err := New(cfg, cat, nil)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30}), cat
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	result, ok := next.(Model)
	require.True(t, ok, "Update should return Model")
	return result
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	result, ok := next.(Model)
	require.True(t, ok, "Update should return Model")
	return result, cmd
}

// run executes cmd and feeds its message back.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	return update(t, m, cmd())
}

// nextEvent applies the next catalog change to m.
func nextEvent(t *testing.T, m Model) (Model, catalog.ChangeEvent) {
	t.Helper()
	select {
	case e := <-m.sub.Events:
		return update(t, m, CatalogEventMsg(e)), e
	case <-time.After(time.Second):
		t.Fatal("no catalog event")
	}
	return m, catalog.ChangeEvent{}
}

// fetch materializes the window around the focus of c.
func fetch(t *testing.T, m Model, c *collcache.Cache) Model {
	t.Helper()
	if cmd := m.fetchRows(c); cmd != nil {
		return update(t, m, cmd())
	}
	return m
}

func loadBrowser(t *testing.T, m Model) Model {
	t.Helper()
	m = run(t, m, m.loadBrowser())
	require.True(t, m.BrowserReady)
	return m
}

func TestNew_CreatesPlaylist(t *testing.T) {
	m, cat := newTestModel(t, nil)

	playlists, err := cat.Playlists(context.Background())
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, DefaultPlaylist, playlists[0].Name)

	assert.Equal(t, 0, m.Playlist.Cache().Len())
	assert.Equal(t, ViewBrowser, m.Mode)
	assert.Empty(t, m.ErrorMsg)
	assert.NotNil(t, m.Init())
}

func TestNew_InvalidPresetIsReported(t *testing.T) {
	m, _ := newTestModel(t, &config.Config{Formats: config.Formats{Playlist: "[:a"}})

	assert.Contains(t, m.ErrorMsg, string(errmsg.OpFormatConfig))
	assert.Equal(t, "[:{title}|:{url}]", m.presets.Playlist.String())
}

func TestBrowser_AddGroupToPlaylist(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.Contains(t, m.View(), "Loading library")

	m = loadBrowser(t, m)
	assert.Contains(t, m.View(), "Aphex Twin")

	m, _ = press(t, m, "j")
	m, cmd := press(t, m, "a")
	m = run(t, m, cmd)
	assert.Empty(t, m.ErrorMsg)

	m, e := nextEvent(t, m)
	assert.Equal(t, catalog.KindAdd, e.Kind)
	m, _ = nextEvent(t, m)

	c := m.Playlist.Cache()
	require.Equal(t, 2, c.Len())
	m = fetch(t, m, c)

	m, _ = press(t, m, "2")
	assert.Equal(t, ViewPlaylist, m.Mode)
	view := m.View()
	assert.Contains(t, view, "Army of Me")
	assert.Contains(t, view, "Hyperballad")
}

func TestBrowser_DrillToTrackAdds(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = loadBrowser(t, m)

	// artist > album > disc > track
	for range 3 {
		m, _ = press(t, m, "enter")
	}
	assert.Contains(t, m.View(), "1. Xtal")

	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)
	m, e := nextEvent(t, m)
	assert.Equal(t, catalog.KindAdd, e.Kind)
	assert.Equal(t, 1, m.Playlist.Cache().Len())
}

func TestPlaylist_PlayAndRemove(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ids, err := cat.QueryIDs(context.Background(), catalog.Universe{})
	require.NoError(t, err)
	require.NoError(t, cat.PlaylistAdd(context.Background(), DefaultPlaylist, ids...))
	for range ids {
		m, _ = nextEvent(t, m)
	}
	c := m.Playlist.Cache()
	m = fetch(t, m, c)

	m, _ = press(t, m, "2")
	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)
	m, e := nextEvent(t, m)
	require.Equal(t, catalog.KindCurrent, e.Kind)
	assert.Equal(t, 0, c.Active())

	m = run(t, m, m.loadNowPlaying())
	assert.Contains(t, m.NowPlaying, "1. Xtal")
	assert.Contains(t, m.View(), "▶ 1/3")

	m, cmd = press(t, m, "n")
	m = run(t, m, cmd)
	m, _ = nextEvent(t, m)
	assert.Equal(t, 1, c.Active())

	m, cmd = press(t, m, "d")
	m = run(t, m, cmd)
	m, e = nextEvent(t, m)
	require.Equal(t, catalog.KindRemove, e.Kind)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0, c.Active())

	cur, err := cat.Current(context.Background(), DefaultPlaylist)
	require.NoError(t, err)
	assert.Equal(t, c.Active(), cur)
}

func TestPlaylist_MoveKeepsActiveRow(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ctx := context.Background()
	ids, err := cat.QueryIDs(ctx, catalog.Universe{})
	require.NoError(t, err)
	require.NoError(t, cat.PlaylistAdd(ctx, DefaultPlaylist, ids...))
	require.NoError(t, cat.SetCurrent(ctx, DefaultPlaylist, 0))
	for range len(ids) + 1 {
		m, _ = nextEvent(t, m)
	}
	c := m.Playlist.Cache()
	m = fetch(t, m, c)
	row, ok := c.Peek(0)
	require.True(t, ok)
	require.True(t, row.Active)

	m, _ = press(t, m, "2")
	m, cmd := press(t, m, "J")
	m = run(t, m, cmd)
	m, e := nextEvent(t, m)
	require.Equal(t, catalog.KindMove, e.Kind)

	assert.Equal(t, 1, c.Active())
	assert.Equal(t, 1, c.Focus())
	moved, ok := c.Peek(1)
	require.True(t, ok)
	assert.Same(t, row, moved)
	assert.Equal(t, []int64{ids[1], ids[0], ids[2]}, c.IDs())
}

func TestSearch(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = press(t, m, "/")
	require.True(t, m.Searching)
	assert.Equal(t, ViewSearch, m.Mode)

	m, _ = press(t, m, "Post")
	m, cmd := press(t, m, "enter")
	assert.False(t, m.Searching)
	m = run(t, m, cmd)

	require.True(t, m.HasResults)
	assert.Equal(t, 2, m.Results.Cache().Len())
	m = fetch(t, m, m.Results.Cache())
	view := m.View()
	assert.Contains(t, view, "Search: Post")
	assert.Contains(t, view, "Hyperballad")

	m, cmd = press(t, m, "a")
	m = run(t, m, cmd)
	m, _ = nextEvent(t, m)
	assert.Equal(t, 1, m.Playlist.Cache().Len())

	m, _ = press(t, m, "esc")
	assert.True(t, m.Searching)
	m, _ = press(t, m, "esc")
	assert.False(t, m.Searching)
	assert.Equal(t, ViewSearch, m.Mode)
}

func TestSearch_CancelWithoutResults(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = press(t, m, "/")
	m, _ = press(t, m, "esc")
	assert.False(t, m.Searching)
	assert.Equal(t, ViewBrowser, m.Mode)
}

func TestLibraryChange_Resyncs(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ctx := context.Background()
	ids, err := cat.QueryIDs(ctx, catalog.Universe{})
	require.NoError(t, err)
	require.NoError(t, cat.PlaylistAdd(ctx, DefaultPlaylist, ids[0]))
	m, _ = nextEvent(t, m)

	require.NoError(t, cat.DeleteTracks(ctx, []string{"/m/a/x/02.mp3"}))
	m, e := nextEvent(t, m)
	require.True(t, e.Resync())

	// the entry keeps its slot and renders as missing
	c := m.Playlist.Cache()
	assert.Equal(t, 1, c.Len())
	m = fetch(t, m, c)
	m, _ = press(t, m, "2")
	assert.Contains(t, m.View(), "missing track")
}

func TestLibraryChange_DeferredDuringScan(t *testing.T) {
	m, cat := newTestModel(t, nil)
	m.Scanning = true

	require.NoError(t, cat.DeleteTracks(context.Background(), []string{"/m/a/x/02.mp3"}))
	m, _ = nextEvent(t, m)
	assert.True(t, m.Stale)

	m = update(t, m, LibraryScanCompleteMsg{Stats: &library.ScanStats{}})
	assert.False(t, m.Stale)
	assert.False(t, m.Scanning)
	assert.Nil(t, m.ScanReport)
}

func TestScanReport(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.Scanning = true
	m.ReportScan = true

	m = update(t, m, LibraryScanCompleteMsg{Stats: &library.ScanStats{Files: 1, Added: []string{"/m/new.mp3"}}})
	require.NotNil(t, m.ScanReport)
	assert.Contains(t, m.View(), "Library Scan Complete")

	m, _ = press(t, m, "j")
	assert.NotNil(t, m.ScanReport, "other keys leave the report open")
	m, _ = press(t, m, "enter")
	assert.Nil(t, m.ScanReport)
}

func TestScanProgress(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = update(t, m, LibraryScanProgressMsg{Phase: library.PhaseProcessing, Current: 3, Total: 10})
	assert.Contains(t, m.View(), "3/10")
}

func TestRescan_WithoutSources(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, cmd := press(t, m, "R")
	assert.Nil(t, cmd)
	assert.Contains(t, m.ErrorMsg, "No library sources")
}

func TestOpError_ShownInFooter(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = update(t, m, OpDoneMsg{Op: errmsg.OpPlaylistMove, Err: errors.New("boom")})
	assert.Contains(t, m.View(), "Failed to move playlist item: boom")

	m, _ = press(t, m, "j")
	assert.Empty(t, m.ErrorMsg)
}

func TestHelpAndViews(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = press(t, m, "?")
	assert.True(t, m.ShowHelp)
	assert.Contains(t, m.View(), "Keys")
	m, _ = press(t, m, "esc")
	assert.False(t, m.ShowHelp)

	m, _ = press(t, m, "tab")
	assert.Equal(t, ViewPlaylist, m.Mode)
	m, _ = press(t, m, "tab")
	assert.Equal(t, ViewBrowser, m.Mode, "search is skipped without results")
}

func TestCacheEvent(t *testing.T) {
	tests := []struct {
		kind catalog.Kind
		want collcache.Kind
	}{
		{catalog.KindAdd, collcache.KindAdd},
		{catalog.KindInsert, collcache.KindInsert},
		{catalog.KindRemove, collcache.KindRemove},
		{catalog.KindMove, collcache.KindMove},
		{catalog.KindClear, collcache.KindClear},
		{catalog.KindOther, collcache.KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			e := cacheEvent(catalog.ChangeEvent{Kind: tt.kind, ID: 7, Pos: 1, NewPos: 2})
			assert.Equal(t, collcache.Event{Kind: tt.want, ID: 7, Pos: 1, NewPos: 2}, e)
		})
	}
}

func TestPlaylist_ClearAsksFirst(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ids, err := cat.QueryIDs(context.Background(), catalog.Universe{})
	require.NoError(t, err)
	require.NoError(t, cat.PlaylistAdd(context.Background(), DefaultPlaylist, ids...))
	for range ids {
		m, _ = nextEvent(t, m)
	}

	m, _ = press(t, m, "2")
	m, cmd := press(t, m, "c")
	assert.Nil(t, cmd)
	require.True(t, m.Confirm.Active())
	assert.Contains(t, m.View(), "Remove all 3 entries")

	m, cmd = press(t, m, "n")
	m = run(t, m, cmd)
	assert.False(t, m.Confirm.Active())
	assert.Equal(t, 3, m.Playlist.Cache().Len())

	m, _ = press(t, m, "c")
	m, cmd = press(t, m, "y")
	require.NotNil(t, cmd)
	next, mutate := m.Update(cmd())
	m = run(t, next.(Model), mutate)
	m, e := nextEvent(t, m)
	assert.Equal(t, catalog.KindClear, e.Kind)
	assert.Equal(t, 0, m.Playlist.Cache().Len())
}

func TestSession_RestoredOnNextStart(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ids, err := cat.QueryIDs(context.Background(), catalog.Universe{})
	require.NoError(t, err)
	require.NoError(t, cat.PlaylistAdd(context.Background(), DefaultPlaylist, ids...))
	for range ids {
		m, _ = nextEvent(t, m)
	}
	m = loadBrowser(t, m)
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "enter") // into Björk
	m, _ = press(t, m, "2")
	m, _ = press(t, m, "G")
	m.Close()

	again, err := New(&config.Config{}, cat, nil)
	require.NoError(t, err)
	t.Cleanup(again.Close)
	again = update(t, again, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, ViewPlaylist, again.Mode)
	assert.Equal(t, 2, again.Playlist.Cache().Focus())

	again = loadBrowser(t, again)
	assert.Equal(t, []string{"Björk"}, again.Browser.Browser().Path())
}

func TestPlaylist_OverflowResyncsToCatalog(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ctx := context.Background()
	ids, err := cat.QueryIDs(ctx, catalog.Universe{})
	require.NoError(t, err)

	var many []int64
	for range 100 {
		many = append(many, ids...)
	}
	require.NoError(t, cat.PlaylistAdd(ctx, DefaultPlaylist, many...))

	m, e := nextEvent(t, m)
	require.True(t, e.Resync())
	c := m.Playlist.Cache()
	assert.Equal(t, len(many), c.Len())
	assert.Equal(t, many, c.IDs())

	// adds queued after the resync are already part of the reload
	require.NoError(t, cat.PlaylistRemove(ctx, DefaultPlaylist, 0))
	for {
		m, e = nextEvent(t, m)
		if e.Kind == catalog.KindRemove {
			break
		}
		require.Equal(t, len(many), c.Len())
	}
	assert.Equal(t, many[1:], c.IDs())
	_ = m
}

func TestPlaylist_EventsCoveredByReloadAreSkipped(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ctx := context.Background()
	ids, err := cat.QueryIDs(ctx, catalog.Universe{})
	require.NoError(t, err)

	require.NoError(t, cat.DeleteTracks(ctx, []string{"/m/gone.flac"}))
	require.NoError(t, cat.PlaylistAdd(ctx, DefaultPlaylist, ids[0]))

	// the reload already sees the add queued behind the library change
	m, e := nextEvent(t, m)
	require.True(t, e.Resync())
	c := m.Playlist.Cache()
	assert.Equal(t, []int64{ids[0]}, c.IDs())

	m, e = nextEvent(t, m)
	require.Equal(t, catalog.KindAdd, e.Kind)
	assert.Equal(t, []int64{ids[0]}, c.IDs())
	_ = m
}

func TestPlaylist_InsertWithoutRecordIsFetched(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ctx := context.Background()
	ids, err := cat.QueryIDs(ctx, catalog.Universe{})
	require.NoError(t, err)
	require.NoError(t, cat.PlaylistAdd(ctx, DefaultPlaylist, ids[0], ids[1]))
	for range 2 {
		m, _ = nextEvent(t, m)
	}
	c := m.Playlist.Cache()
	m = fetch(t, m, c)
	require.Equal(t, 0, c.Focus())

	m = update(t, m, CatalogEventMsg{Playlist: DefaultPlaylist, Kind: catalog.KindInsert, ID: ids[2], Pos: 2, Seq: 1 << 20})
	_, ok := c.Peek(2)
	require.False(t, ok)

	m = fetch(t, m, c)
	row, ok := c.Peek(2)
	require.True(t, ok)
	assert.Contains(t, row.Text, "Xtal")
}

func TestSearch_OlderResultIsDropped(t *testing.T) {
	m, _ := newTestModel(t, nil)

	older := m.newSearch("Post")
	newer := m.newSearch("Xtal")
	m = run(t, m, newer)
	m = run(t, m, older)

	assert.Equal(t, "Xtal", m.LastQuery)
	assert.Equal(t, 1, m.Results.Cache().Len())
	m = fetch(t, m, m.Results.Cache())
	assert.Contains(t, m.View(), "Search: Xtal")
}

func TestBrowser_OlderLoadIsDropped(t *testing.T) {
	m, _ := newTestModel(t, nil)

	older := m.reloadBrowser()
	newer := m.reloadBrowser()
	m = run(t, m, newer)
	require.True(t, m.BrowserReady)
	b := m.Browser.Browser()

	m = run(t, m, older)
	assert.Same(t, b, m.Browser.Browser())
}

func TestNowPlaying_StaleRenderIsDropped(t *testing.T) {
	m, cat := newTestModel(t, nil)
	ctx := context.Background()
	ids, err := cat.QueryIDs(ctx, catalog.Universe{})
	require.NoError(t, err)
	require.NoError(t, cat.PlaylistAdd(ctx, DefaultPlaylist, ids...))
	require.NoError(t, cat.SetCurrent(ctx, DefaultPlaylist, 0))
	for range len(ids) + 1 {
		m, _ = nextEvent(t, m)
	}
	m = run(t, m, m.loadNowPlaying())
	require.Contains(t, m.NowPlaying, "Xtal")

	m = update(t, m, NowPlayingMsg{Version: m.NowPlayingVersion - 1, ID: ids[0], Text: "older"})
	assert.Contains(t, m.NowPlaying, "Xtal")

	m = update(t, m, NowPlayingMsg{Version: m.NowPlayingVersion, ID: ids[1], Text: "other track"})
	assert.Contains(t, m.NowPlaying, "Xtal")
}
