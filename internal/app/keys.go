package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/shelf/internal/app/handler"
	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/keymap"
	"github.com/llehouerou/shelf/internal/ui/browserview"
	"github.com/llehouerou/shelf/internal/ui/confirm"
	"github.com/llehouerou/shelf/internal/ui/rowlist"
)

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Popups swallow every key.
	if m.Confirm.Active() {
		return m, m.Confirm.Update(msg)
	}
	if m.ScanReport != nil {
		if key == "enter" || key == "esc" || key == "q" {
			m.ScanReport = nil
		}
		return m, nil
	}
	if m.ShowHelp {
		if key == "?" || key == "esc" || key == "q" {
			m.ShowHelp = false
		}
		return m, nil
	}
	if m.Searching {
		return m.handleQueryKey(msg)
	}
	if m.Prompting {
		return m.handlePromptKey(msg)
	}

	m.ErrorMsg = ""
	action := m.keys.Resolve(m.context(), key)
	_, cmd := handler.Chain(action,
		m.handleGlobalKeys,
		m.handleBrowserKeys,
		m.handlePlaylistKeys,
		m.handleResultKeys,
	)
	if action != keymap.ActionQuit {
		m.saveSession()
	}
	return m, cmd
}

// handleQueryKey edits the search query while the input has the keyboard.
func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Resolve(keymap.ContextSearch, msg.String()) { //nolint:exhaustive // the input takes every other key
	case keymap.ActionCancel:
		m.blurQuery()
		if !m.HasResults {
			m.Mode = ViewBrowser
		}
		m.focusView()
		m.resize()
		return m, nil
	case keymap.ActionSubmit:
		query := strings.TrimSpace(m.Query.Value())
		if query == "" {
			return m, nil
		}
		m.blurQuery()
		m.focusView()
		return m, m.newSearch(query)
	}

	var cmd tea.Cmd
	m.Query, cmd = m.Query.Update(msg)
	return m, cmd
}

func (m *Model) focusQuery() tea.Cmd {
	m.Mode = ViewSearch
	m.Searching = true
	m.focusView()
	m.resize()
	return m.Query.Focus()
}

func (m *Model) blurQuery() {
	m.Searching = false
	m.Query.Blur()
}

func (m *Model) handleGlobalKeys(action keymap.Action) handler.Result {
	switch action { //nolint:exhaustive // only global actions
	case keymap.ActionQuit:
		m.saveSession()
		m.Close()
		return handler.Handled(tea.Quit)
	case keymap.ActionNextView:
		return handler.Handled(m.switchView(m.nextView()))
	case keymap.ActionViewBrowser:
		return handler.Handled(m.switchView(ViewBrowser))
	case keymap.ActionViewPlaylist:
		return handler.Handled(m.switchView(ViewPlaylist))
	case keymap.ActionSearch:
		return handler.Handled(m.focusQuery())
	case keymap.ActionRescan:
		if len(m.sources) == 0 {
			m.ErrorMsg = "No library sources configured"
			return handler.HandledNoCmd
		}
		m.ReportScan = true
		return handler.Handled(m.startScan())
	case keymap.ActionHelp:
		m.ShowHelp = true
		return handler.HandledNoCmd
	case keymap.ActionCommand:
		return handler.Handled(m.openPrompt())
	}
	return handler.NotHandled
}

func (m Model) nextView() ViewMode {
	switch m.Mode {
	case ViewBrowser:
		return ViewPlaylist
	case ViewPlaylist:
		if m.HasResults {
			return ViewSearch
		}
	}
	return ViewBrowser
}

func (m *Model) switchView(v ViewMode) tea.Cmd {
	m.Mode = v
	m.focusView()
	m.resize()
	switch v {
	case ViewPlaylist:
		return m.fetchRows(m.Playlist.Cache())
	case ViewSearch:
		if !m.HasResults {
			return m.focusQuery()
		}
		return m.fetchRows(m.Results.Cache())
	}
	return nil
}

func (m *Model) handleBrowserKeys(action keymap.Action) handler.Result {
	if m.Mode != ViewBrowser || !m.BrowserReady {
		return handler.NotHandled
	}
	r := m.Browser.Handle(action)
	if r.Action != browserview.ActionAdd {
		return handler.HandledNoCmd
	}
	ids, name := r.Group.IDs, m.playlist
	return handler.Handled(m.mutate(errmsg.OpPlaylistAddTrack, func(ctx context.Context, cat *catalog.Catalog) error {
		return cat.PlaylistAdd(ctx, name, ids...)
	}))
}

func (m *Model) handlePlaylistKeys(action keymap.Action) handler.Result {
	if m.Mode != ViewPlaylist {
		return handler.NotHandled
	}
	c := m.Playlist.Cache()
	name := m.playlist
	r := m.Playlist.Handle(action)

	setCurrent := func(pos int) handler.Result {
		if pos < 0 || pos >= c.Len() {
			return handler.HandledNoCmd
		}
		return handler.Handled(m.mutate(errmsg.OpPlaylistCurrent, func(ctx context.Context, cat *catalog.Catalog) error {
			return cat.SetCurrent(ctx, name, pos)
		}))
	}

	switch r.Action {
	case rowlist.ActionMoved:
		return handler.Handled(m.fetchRows(c))
	case rowlist.ActionPlay:
		return setCurrent(r.Pos)
	case rowlist.ActionNext:
		return setCurrent(c.Active() + 1)
	case rowlist.ActionPrev:
		return setCurrent(c.Active() - 1)
	case rowlist.ActionRemove:
		return handler.Handled(m.mutate(errmsg.OpPlaylistRemove, func(ctx context.Context, cat *catalog.Catalog) error {
			return cat.PlaylistRemove(ctx, name, r.Pos)
		}))
	case rowlist.ActionMove:
		return handler.Handled(m.mutate(errmsg.OpPlaylistMove, func(ctx context.Context, cat *catalog.Catalog) error {
			return cat.PlaylistMove(ctx, name, r.Pos, r.To)
		}))
	case rowlist.ActionClear:
		m.confirmClear()
		return handler.HandledNoCmd
	case rowlist.ActionAdd, rowlist.ActionNone:
	}
	return handler.HandledNoCmd
}

// clearPlaylist is the confirmation context of a pending clear.
type clearPlaylist struct {
	name string
}

// confirmClear asks before clearing the playlist.
func (m *Model) confirmClear() {
	n := m.Playlist.Cache().Len()
	m.Confirm.Show("Clear playlist", fmt.Sprintf("Remove all %d entries from %q?", n, m.playlist), clearPlaylist{name: m.playlist})
}

func (m Model) handleConfirm(msg confirm.ResultMsg) (tea.Model, tea.Cmd) {
	if !msg.Confirmed {
		return m, nil
	}
	if c, ok := msg.Context.(clearPlaylist); ok {
		return m, m.mutate(errmsg.OpPlaylistClear, func(ctx context.Context, cat *catalog.Catalog) error {
			return cat.PlaylistClear(ctx, c.name)
		})
	}
	return m, nil
}

func (m *Model) handleResultKeys(action keymap.Action) handler.Result {
	if m.Mode != ViewSearch || !m.HasResults {
		return handler.NotHandled
	}
	switch action { //nolint:exhaustive // only search result actions
	case keymap.ActionSubmit, keymap.ActionCancel:
		return handler.Handled(m.focusQuery())
	}

	c := m.Results.Cache()
	r := m.Results.Handle(action)
	switch r.Action { //nolint:exhaustive // results are read only
	case rowlist.ActionMoved:
		return handler.Handled(m.fetchRows(c))
	case rowlist.ActionAdd:
		id, name := r.ID, m.playlist
		return handler.Handled(m.mutate(errmsg.OpPlaylistAddTrack, func(ctx context.Context, cat *catalog.Catalog) error {
			return cat.PlaylistAdd(ctx, name, id)
		}))
	}
	return handler.HandledNoCmd
}
