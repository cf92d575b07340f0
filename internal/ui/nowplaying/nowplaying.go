// Package nowplaying shows the playlist's current entry below the views.
package nowplaying

import (
	"strconv"
	"strings"

	"github.com/llehouerou/shelf/internal/ui/render"
	"github.com/llehouerou/shelf/internal/ui/styles"
)

// MaxLines caps how many lines of the rendered preset are shown.
const MaxLines = 4

// State holds what the panel displays.
type State struct {
	Text     string // rendered now-playing preset, possibly multi-line
	Position int    // current entry, zero based
	Total    int    // playlist length
}

// Height returns the panel height for s, border included. Nothing is
// shown without a current entry.
func Height(s State) int {
	if s.Text == "" {
		return 0
	}
	return len(lines(s.Text)) + 2
}

// Render returns the panel for width, or the empty string when there is
// no current entry.
func Render(s State, width int) string {
	if s.Text == "" {
		return ""
	}
	t := styles.T()
	st := t.S()
	inner := max(width-2, 0)

	ls := lines(s.Text)
	out := make([]string, len(ls))
	for i, l := range ls {
		style := st.Muted
		if i == 0 {
			style = st.Active
		}
		if i == 0 && s.Total > 0 {
			counter := st.Subtle.Render(position(s))
			out[i] = render.Row(style.Render(l), counter, inner)
			continue
		}
		out[i] = style.Render(render.Truncate(l, inner))
	}

	return t.Panel(false).
		Width(inner).
		Render(strings.Join(out, "\n"))
}

func lines(text string) []string {
	ls := render.Lines(strings.TrimRight(text, "\n"))
	if len(ls) > MaxLines {
		ls = ls[:MaxLines]
	}
	return ls
}

func position(s State) string {
	return "▶ " + strconv.Itoa(s.Position+1) + "/" + strconv.Itoa(s.Total)
}
