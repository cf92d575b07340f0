// Package headerbar renders the view tabs on top of the screen.
package headerbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/shelf/internal/ui/styles"
)

// Height is the fixed height of the header bar (single line).
const Height = 1

// View modes shown as tabs.
const (
	ModeBrowser  = "browser"
	ModePlaylist = "playlist"
	ModeSearch   = "search"
)

type tab struct {
	key  string
	name string
	mode string
}

var tabs = []tab{
	{"1", "Browser", ModeBrowser},
	{"2", "Playlist", ModePlaylist},
	{"/", "Search", ModeSearch},
}

// Render returns the header bar for the given width, with the tab of
// currentMode highlighted and status right aligned.
func Render(currentMode, status string, width int) string {
	if width < 20 {
		return ""
	}

	t := styles.T()
	active := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	inactiveKey := lipgloss.NewStyle().Foreground(t.FgSubtle)
	inactiveName := lipgloss.NewStyle().Foreground(t.FgMuted)
	separator := lipgloss.NewStyle().Foreground(t.Border).Render(" │ ")

	parts := make([]string, 0, len(tabs))
	for _, tb := range tabs {
		if tb.mode == currentMode {
			parts = append(parts, active.Render(tb.key+" "+tb.name))
			continue
		}
		parts = append(parts, inactiveKey.Render(tb.key)+" "+inactiveName.Render(tb.name))
	}

	content := " " + strings.Join(parts, separator)
	if status == "" {
		return content
	}
	status = t.S().Muted.Render(status) + " "
	gap := width - lipgloss.Width(content) - lipgloss.Width(status)
	if gap < 1 {
		return content
	}
	return content + strings.Repeat(" ", gap) + status
}
