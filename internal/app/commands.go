package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/collcache"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/grouping"
	"github.com/llehouerou/shelf/internal/library"
	"github.com/llehouerou/shelf/internal/titleformat"
)

// waitForChannel creates a command that waits for a value from a channel and converts it to a message.
// onResult receives the value and a boolean indicating if the channel is still open (false means channel closed).
func waitForChannel[T any](ch <-chan T, onResult func(T, bool) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		result, ok := <-ch
		return onResult(result, ok)
	}
}

// waitForCatalog waits for the next catalog change.
func (m Model) waitForCatalog() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.Events:
			return CatalogEventMsg(e)
		case <-sub.Done:
			return CatalogClosedMsg{}
		}
	}
}

// loadBrowser builds and loads a new browser over the whole catalog off
// the event loop. The current browser stays usable until it arrives.
func (m Model) loadBrowser() tea.Cmd {
	ctx, cat, format, ev, version := m.ctx, m.catalog, m.presets.Browser, m.eval, m.BrowserVersion
	return func() tea.Msg {
		b := grouping.New(format, ev, cat)
		if err := b.Load(ctx, nil); err != nil {
			return BrowserLoadedMsg{Version: version, Err: err}
		}
		return BrowserLoadedMsg{Version: version, Browser: b}
	}
}

// reloadBrowser supersedes any pending browser load.
func (m *Model) reloadBrowser() tea.Cmd {
	m.BrowserVersion++
	return m.loadBrowser()
}

// fetchRows starts an asynchronous fetch of the window around the focus
// of c. It returns nil when the window is already materialized.
func (m Model) fetchRows(c *collcache.Cache) tea.Cmd {
	if c == nil {
		return nil
	}
	f := c.StartFetch(c.Focus())
	if f == nil {
		return nil
	}
	ctx, fetcher, fields := m.ctx, m.catalog, c.Fields()
	return func() tea.Msg {
		recs, err := f.Run(ctx, fetcher, fields)
		return RowsFetchedMsg{Cache: c, Fetch: f, Records: recs, Err: err}
	}
}

// search queries the tracks matching query.
func (m Model) search(query string) tea.Cmd {
	ctx, cat, version := m.ctx, m.catalog, m.SearchVersion
	return func() tea.Msg {
		ids, err := cat.QueryIDs(ctx, catalog.Search{Text: query})
		return SearchResultMsg{Version: version, Query: query, IDs: ids, Err: err}
	}
}

// newSearch supersedes any pending search.
func (m *Model) newSearch(query string) tea.Cmd {
	m.SearchVersion++
	return m.search(query)
}

// loadNowPlaying renders the now-playing preset for the active entry of
// the playlist.
func (m Model) loadNowPlaying() tea.Cmd {
	version := m.NowPlayingVersion
	id, ok := m.activeID()
	if !ok {
		return func() tea.Msg { return NowPlayingMsg{Version: version} }
	}
	ctx, cat, format, ev := m.ctx, m.catalog, m.presets.NowPlaying, m.eval
	return func() tea.Msg {
		msg := NowPlayingMsg{Version: version, ID: id}
		recs, err := cat.QueryRecords(ctx, []int64{id}, format.Fields())
		if err != nil {
			msg.Err = err
			return msg
		}
		rec, found := recs[id]
		if !found {
			msg.Text = "missing track"
			return msg
		}
		msg.Text = format.Render(ev, titleformat.NewContext(rec))
		return msg
	}
}

// reloadNowPlaying supersedes any pending now-playing render.
func (m *Model) reloadNowPlaying() tea.Cmd {
	m.NowPlayingVersion++
	return m.loadNowPlaying()
}

// activeID returns the track id of the playlist's active entry.
func (m Model) activeID() (int64, bool) {
	c := m.Playlist.Cache()
	return c.ID(c.Active())
}

// mutate runs a catalog mutation off the event loop.
func (m Model) mutate(op errmsg.Op, fn func(ctx context.Context, cat *catalog.Catalog) error) tea.Cmd {
	ctx, cat := m.ctx, m.catalog
	return func() tea.Msg {
		return OpDoneMsg{Op: op, Err: fn(ctx, cat)}
	}
}

// startScan scans the library sources unless a scan is already running.
func (m *Model) startScan() tea.Cmd {
	if len(m.sources) == 0 {
		return nil
	}
	if m.Scanning {
		m.RescanPending = true
		return nil
	}
	m.Scanning = true
	m.RescanPending = false

	ch := make(chan library.ScanProgress, 16)
	m.ScanCh = ch
	scanner := library.NewScanner(m.catalog, library.WithLogger(m.logger.With("component", "scanner")))
	ctx, sources := m.ctx, m.sources

	run := func() tea.Msg {
		stats, err := scanner.Scan(ctx, sources, ch)
		return LibraryScanCompleteMsg{Stats: stats, Err: err}
	}
	return tea.Batch(run, m.waitForScan())
}

// waitForScan waits for the next progress report of the running scan.
func (m Model) waitForScan() tea.Cmd {
	return waitForChannel(m.ScanCh, func(p library.ScanProgress, ok bool) tea.Msg {
		if !ok {
			return nil
		}
		return LibraryScanProgressMsg(p)
	})
}

// startWatcher watches the library sources for changes until the model
// is closed. Changes are funneled through rescanCh.
func (m Model) startWatcher() tea.Cmd {
	if len(m.sources) == 0 || !m.watch {
		return nil
	}
	ctx, sources, logger, ch := m.ctx, m.sources, m.logger.With("component", "watcher"), m.rescanCh
	return func() tea.Msg {
		notify := func() {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
		w, err := library.NewWatcher(sources, library.DefaultDebounce, notify, logger)
		if err != nil {
			return WatcherFailedMsg{Err: err}
		}
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			return WatcherFailedMsg{Err: err}
		}
		return nil
	}
}

// requestScan asks Update to start a scan.
func (m Model) requestScan() tea.Cmd {
	if len(m.sources) == 0 {
		return nil
	}
	return func() tea.Msg { return LibraryChangedMsg{} }
}

// waitForRescan waits for the watcher to report changed files.
func (m Model) waitForRescan() tea.Cmd {
	return waitForChannel((<-chan struct{})(m.rescanCh), func(struct{}, bool) tea.Msg {
		return LibraryChangedMsg{}
	})
}
