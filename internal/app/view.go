package app

import (
	"slices"
	"strings"

	"github.com/llehouerou/shelf/internal/keymap"
	"github.com/llehouerou/shelf/internal/ui/headerbar"
	"github.com/llehouerou/shelf/internal/ui/nowplaying"
	"github.com/llehouerou/shelf/internal/ui/popup"
	"github.com/llehouerou/shelf/internal/ui/render"
	"github.com/llehouerou/shelf/internal/ui/scanreport"
	"github.com/llehouerou/shelf/internal/ui/styles"
)

// helpColumn is the number of bindings per column of the full help.
const helpColumn = 8

// View renders the application UI.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}

	parts := []string{headerbar.Render(m.modeName(), m.headerStatus(), m.Width)}
	parts = append(parts, m.mainView())
	if np := nowplaying.Render(m.nowPlayingState(), m.Width); np != "" {
		parts = append(parts, np)
	}
	if bar := m.Scan.View(m.Width); bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, m.footer())
	view := strings.Join(parts, "\n")

	switch {
	case m.Confirm.Active():
		view = popup.Overlay(view, m.Confirm.View(m.Width), m.Width, m.Height)
	case m.ScanReport != nil:
		box := popup.Box(scanreport.Title, scanreport.Render(m.ScanReport, scanreport.DefaultMaxExamples),
			"Press Enter or Escape to close", m.Width)
		view = popup.Overlay(view, box, m.Width, m.Height)
	case m.ShowHelp:
		keys := keymap.HelpKeys(m.context())
		box := popup.Box("Keys", m.Help.FullHelpView(slices.Collect(slices.Chunk(keys, helpColumn))),
			"? or Escape to close", m.Width)
		view = popup.Overlay(view, box, m.Width, m.Height)
	}
	return view
}

func (m Model) modeName() string {
	switch m.Mode {
	case ViewPlaylist:
		return headerbar.ModePlaylist
	case ViewSearch:
		return headerbar.ModeSearch
	}
	return headerbar.ModeBrowser
}

func (m Model) headerStatus() string {
	if m.Scanning {
		return "scanning…"
	}
	return ""
}

func (m Model) mainView() string {
	switch m.Mode {
	case ViewPlaylist:
		return m.Playlist.View()
	case ViewSearch:
		return m.searchView()
	}
	if !m.BrowserReady {
		return m.placeholder("Loading library…")
	}
	return m.Browser.View()
}

func (m Model) searchView() string {
	input := render.Truncate(m.Query.View(), m.Width)
	if !m.HasResults {
		return input + "\n" + m.placeholder("Type a query and press Enter")
	}
	return input + "\n" + m.Results.View()
}

// placeholder renders an empty panel with a hint, sized like the views.
func (m Model) placeholder(hint string) string {
	t := styles.T()
	lines := make([]string, max(m.mainHeight()-2, 1))
	lines[0] = t.S().Subtle.Render(hint)
	return t.Panel(false).
		Width(max(m.Width-2, 0)).
		Render(strings.Join(lines, "\n"))
}

func (m Model) footer() string {
	if m.Prompting {
		return render.Truncate(m.Prompt.View(), m.Width)
	}
	if m.ErrorMsg != "" {
		return styles.T().S().Error.Render(render.Truncate(m.ErrorMsg, m.Width))
	}
	return m.Help.ShortHelpView(keymap.HelpKeys(m.context()))
}
