package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/collcache"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/library"
	"github.com/llehouerou/shelf/internal/ui/browserview"
	"github.com/llehouerou/shelf/internal/ui/confirm"
	"github.com/llehouerou/shelf/internal/ui/rowlist"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resize()
		return m, tea.Batch(m.fetchRows(m.Playlist.Cache()), m.fetchRows(m.Results.Cache()))

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case CatalogEventMsg:
		cmd := m.handleCatalogEvent(catalog.ChangeEvent(msg))
		return m, tea.Batch(cmd, m.waitForCatalog())

	case CatalogClosedMsg:
		return m, nil

	case confirm.ResultMsg:
		return m.handleConfirm(msg)

	case BrowserLoadedMsg:
		return m.handleBrowserLoaded(msg)

	case RowsFetchedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.logger.Warn("fetch rows", "error", msg.Err)
			m.ErrorMsg = errmsg.Format(errmsg.OpFetchRows, msg.Err)
		}
		msg.Cache.Finish(msg.Fetch, msg.Records, msg.Err)
		return m, nil

	case SearchResultMsg:
		return m.handleSearchResult(msg)

	case NowPlayingMsg:
		if id, _ := m.activeID(); msg.Version != m.NowPlayingVersion || msg.ID != id {
			return m, nil
		}
		if msg.Err != nil {
			m.ErrorMsg = errmsg.Format(errmsg.OpPlaylistLoad, msg.Err)
		}
		m.NowPlaying = msg.Text
		m.NowPlayingID = msg.ID
		m.resize()
		return m, nil

	case OpDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("catalog operation", "op", string(msg.Op), "error", msg.Err)
			m.ErrorMsg = errmsg.Format(msg.Op, msg.Err)
		}
		return m, nil

	case LibraryChangedMsg:
		cmd := m.startScan()
		return m, tea.Batch(cmd, m.waitForRescan())

	case LibraryScanProgressMsg:
		m.Scan.Update(library.ScanProgress(msg))
		m.resize()
		return m, m.waitForScan()

	case LibraryScanCompleteMsg:
		return m.handleScanComplete(msg)

	case WatcherFailedMsg:
		m.logger.Warn("watcher", "error", msg.Err)
		m.ErrorMsg = errmsg.Format(errmsg.OpLibraryWatch, msg.Err)
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.Searching:
		m.Query, cmd = m.Query.Update(msg)
	case m.Prompting:
		m.Prompt, cmd = m.Prompt.Update(msg)
	}
	return m, cmd
}

// handleCatalogEvent reconciles the views with one catalog change. Events
// already reflected by the last playlist reload are skipped.
func (m *Model) handleCatalogEvent(e catalog.ChangeEvent) tea.Cmd {
	if e.Resync() {
		var cmds []tea.Cmd
		if e.Seq > m.playlistSeq {
			cmds = append(cmds, m.reloadPlaylist())
		}
		if m.Scanning {
			// requery the other views once the scan is over
			m.Stale = true
			return tea.Batch(cmds...)
		}
		return tea.Batch(append(cmds, m.resyncViews())...)
	}
	if e.Playlist != m.playlist || e.Seq <= m.playlistSeq {
		return nil
	}
	m.playlistSeq = e.Seq

	c := m.Playlist.Cache()
	if e.Kind == catalog.KindCurrent {
		c.SetActive(e.Pos)
		return m.reloadNowPlaying()
	}

	active := c.Active()
	if c.Apply(cacheEvent(e)) {
		return m.reloadPlaylist()
	}
	m.Playlist.Follow()

	cmds := []tea.Cmd{m.fetchRows(c)}
	if c.Active() != active {
		cmds = append(cmds, m.reloadNowPlaying())
	}
	return tea.Batch(cmds...)
}

// cacheEvent translates a catalog change into a cache event.
func cacheEvent(e catalog.ChangeEvent) collcache.Event {
	var kind collcache.Kind
	switch e.Kind { //nolint:exhaustive // current is handled before
	case catalog.KindAdd:
		kind = collcache.KindAdd
	case catalog.KindInsert:
		kind = collcache.KindInsert
	case catalog.KindRemove:
		kind = collcache.KindRemove
	case catalog.KindMove:
		kind = collcache.KindMove
	case catalog.KindClear:
		kind = collcache.KindClear
	default:
		kind = collcache.KindOther
	}
	return collcache.Event{Kind: kind, ID: e.ID, Pos: e.Pos, NewPos: e.NewPos, Fields: e.Record}
}

// resync requeries everything after the library changed.
func (m *Model) resync() tea.Cmd {
	return tea.Batch(m.reloadPlaylist(), m.resyncViews())
}

// resyncViews reloads the browser and reruns the search.
func (m *Model) resyncViews() tea.Cmd {
	m.Stale = false
	cmds := []tea.Cmd{m.reloadBrowser()}
	if m.HasResults && m.LastQuery != "" {
		cmds = append(cmds, m.newSearch(m.LastQuery))
	}
	return tea.Batch(cmds...)
}

// reloadPlaylist requeries the playlist ids. Ids are cheap, so this runs
// on the event loop; queued events the snapshot already covers are then
// skipped by sequence.
func (m *Model) reloadPlaylist() tea.Cmd {
	ids, cur, seq, err := m.catalog.PlaylistSnapshot(m.ctx, m.playlist)
	if err != nil {
		m.logger.Warn("reload playlist", "error", err)
		m.ErrorMsg = errmsg.Format(errmsg.OpPlaylistLoad, err)
		return nil
	}
	m.playlistSeq = seq
	c := m.Playlist.Cache()
	c.Reload(ids)
	c.SetActive(cur)
	m.Playlist.Follow()
	return tea.Batch(m.fetchRows(c), m.reloadNowPlaying())
}

func (m Model) handleBrowserLoaded(msg BrowserLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Version != m.BrowserVersion {
		return m, nil
	}
	if msg.Err != nil {
		if !errors.Is(msg.Err, context.Canceled) {
			m.logger.Warn("load browser", "error", msg.Err)
			m.ErrorMsg = errmsg.Format(errmsg.OpBrowserLoad, msg.Err)
		}
		return m, nil
	}

	path := m.restore
	if m.BrowserReady {
		path = m.Browser.Browser().Path()
	}
	m.restore = nil
	m.Browser = browserview.New(msg.Browser)
	m.BrowserReady = true
	restorePath(&m.Browser, path)
	m.resize()
	m.focusView()
	return m, nil
}

// restorePath drills the new browser down the keys the user had opened,
// as far as they still exist.
func restorePath(v *browserview.Model, path []string) {
	b := v.Browser()
	for _, key := range path {
		found := false
		for i, g := range b.Entries() {
			if g.Key == key {
				b.SetFocus(i)
				found = true
				break
			}
		}
		if !found || !b.DrillIn() {
			break
		}
	}
	v.Reset()
}

func (m Model) handleSearchResult(msg SearchResultMsg) (tea.Model, tea.Cmd) {
	if msg.Version != m.SearchVersion {
		return m, nil
	}
	if msg.Err != nil {
		m.ErrorMsg = errmsg.FormatWith(errmsg.OpLibrarySearch, msg.Query, msg.Err)
		return m, nil
	}
	if m.HasResults {
		m.Results.Cache().Reload(msg.IDs)
	} else {
		c := collcache.New(msg.IDs, m.radius, m.catalog, m.renderer(m.presets.Search), m.presets.Search.Fields(),
			collcache.WithLogger(m.logger.With("list", "search")))
		m.Results = rowlist.New("", c)
		m.HasResults = true
	}
	m.LastQuery = msg.Query
	m.Results.SetTitle("Search: " + msg.Query)
	m.resize()
	m.Results.Follow()
	m.focusView()
	m.saveSession()
	return m, m.fetchRows(m.Results.Cache())
}

func (m Model) handleScanComplete(msg LibraryScanCompleteMsg) (tea.Model, tea.Cmd) {
	m.Scanning = false
	m.ScanCh = nil
	m.Scan.Stop()
	m.resize()

	switch {
	case errors.Is(msg.Err, context.Canceled):
		return m, nil
	case msg.Err != nil:
		m.logger.Warn("scan", "error", msg.Err)
		m.ErrorMsg = errmsg.Format(errmsg.OpLibraryScan, msg.Err)
	case m.ReportScan:
		m.ScanReport = msg.Stats
	}
	m.ReportScan = false

	var cmds []tea.Cmd
	if m.Stale {
		cmds = append(cmds, m.resync())
	}
	if m.RescanPending {
		cmds = append(cmds, m.startScan())
	}
	return m, tea.Batch(cmds...)
}
