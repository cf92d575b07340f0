package app

import (
	"github.com/llehouerou/shelf/internal/ui/headerbar"
	"github.com/llehouerou/shelf/internal/ui/nowplaying"
	"github.com/llehouerou/shelf/internal/ui/scanbar"
)

const (
	footerHeight = 1
	queryHeight  = 1
)

// nowPlayingState describes the now-playing panel.
func (m Model) nowPlayingState() nowplaying.State {
	c := m.Playlist.Cache()
	return nowplaying.State{Text: m.NowPlaying, Position: c.Active(), Total: c.Len()}
}

// mainHeight returns the height left for the active view.
func (m Model) mainHeight() int {
	h := m.Height - headerbar.Height - footerHeight - nowplaying.Height(m.nowPlayingState())
	if m.Scan.Active() {
		h -= scanbar.Height
	}
	if m.Mode == ViewSearch {
		h -= queryHeight
	}
	return max(h, 0)
}

// resize propagates the terminal size to the views.
func (m *Model) resize() {
	h := m.mainHeight()
	m.Browser.SetSize(m.Width, h)
	m.Playlist.SetSize(m.Width, h)
	m.Results.SetSize(m.Width, h)
	m.Query.Width = max(m.Width-4, 0)
	m.Prompt.Width = max(m.Width-2, 0)
	m.Help.Width = m.Width

	m.Playlist.Follow()
	if m.HasResults {
		m.Results.Follow()
	}
}
