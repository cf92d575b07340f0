// Package browserview renders a grouping browser as a drill-down list.
package browserview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/llehouerou/shelf/internal/grouping"
	"github.com/llehouerou/shelf/internal/keymap"
	"github.com/llehouerou/shelf/internal/ui"
	"github.com/llehouerou/shelf/internal/ui/cursor"
	"github.com/llehouerou/shelf/internal/ui/render"
	"github.com/llehouerou/shelf/internal/ui/styles"
)

// Action tells the parent what a key did.
type Action int

const (
	ActionNone Action = iota
	ActionAdd         // append Group to the playlist
)

// Result is returned from Handle.
type Result struct {
	Action Action
	Group  grouping.Group
}

// Model shows the current level of a browser.
type Model struct {
	ui.Base
	browser *grouping.Browser
	cursor  cursor.Cursor
}

// New creates a view over b. b must already be loaded.
func New(b *grouping.Browser) Model {
	return Model{
		browser: b,
		cursor:  cursor.New(ui.ScrollMargin),
	}
}

// Browser returns the browser being shown.
func (m Model) Browser() *grouping.Browser {
	return m.browser
}

// Reset scrolls back to the top, after the browser was reloaded.
func (m *Model) Reset() {
	m.cursor.Reset()
	m.cursor.Follow(m.browser.Focus(), m.browser.Len(), m.ListHeight())
}

// Handle applies action to the browser.
func (m *Model) Handle(action keymap.Action) Result {
	b := m.browser
	height := m.ListHeight()

	if pos, ok := cursor.Target(action, b.Focus(), b.Len(), height); ok {
		b.SetFocus(pos)
		m.cursor.Follow(b.Focus(), b.Len(), height)
		return Result{}
	}

	switch action { //nolint:exhaustive // only browser actions
	case keymap.ActionDrillIn:
		if b.DrillIn() {
			m.cursor.Center(b.Focus(), b.Len(), height)
			return Result{}
		}
		// Opening a terminal group adds it.
		if g, ok := b.Selected(); ok {
			return Result{Action: ActionAdd, Group: g}
		}
	case keymap.ActionDrillOut:
		if b.DrillOut() {
			m.cursor.Center(b.Focus(), b.Len(), height)
		}
	case keymap.ActionAdd:
		if g, ok := b.Selected(); ok {
			return Result{Action: ActionAdd, Group: g}
		}
	}
	return Result{}
}

// View renders the panel.
func (m Model) View() string {
	t := styles.T()
	s := t.S()
	width := m.InnerWidth()
	height := m.ListHeight()
	b := m.browser

	lines := make([]string, 0, height+ui.HeaderHeight)
	lines = append(lines, render.Row(m.title(), s.Muted.Render(m.levelInfo()), width))
	lines = append(lines, s.Subtle.Render(render.Separator(width)))

	entries := b.Entries()
	start, end := m.cursor.VisibleRange(len(entries), height)
	for i := start; i < end; i++ {
		g := entries[i]
		count := strconv.Itoa(len(g.IDs))
		focused := i == b.Focus() && m.IsFocused()
		if focused && b.CanDrillIn() {
			count += " ▸"
		}
		line := render.Row(render.Sanitize(g.Key), s.Muted.Render(count), width)
		if focused {
			line = s.Cursor.Render(render.Fit(line, width))
		}
		lines = append(lines, line)
	}
	if len(entries) == 0 {
		lines = append(lines, s.Subtle.Render("nothing to browse"))
	}
	for len(lines) < height+ui.HeaderHeight {
		lines = append(lines, "")
	}

	return t.Panel(m.IsFocused()).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) title() string {
	s := styles.T().S()
	path := m.browser.Path()
	if len(path) == 0 {
		return s.Title.Render("All")
	}
	for i, p := range path {
		path[i] = render.Sanitize(p)
	}
	return s.Crumb.Render(strings.Join(path, " › "))
}

func (m Model) levelInfo() string {
	b := m.browser
	info := fmt.Sprintf("level %d/%d", min(b.Level()+1, b.Levels()), b.Levels())
	if n := b.Skipped(); n > 0 {
		info += fmt.Sprintf(", %d skipped", n)
	}
	return info
}
