// Package rowlist renders a windowed collection cache as a numbered list.
package rowlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/llehouerou/shelf/internal/collcache"
	"github.com/llehouerou/shelf/internal/keymap"
	"github.com/llehouerou/shelf/internal/ui"
	"github.com/llehouerou/shelf/internal/ui/cursor"
	"github.com/llehouerou/shelf/internal/ui/render"
	"github.com/llehouerou/shelf/internal/ui/styles"
)

// Action represents what happened during Handle.
type Action int

const (
	ActionNone   Action = iota
	ActionMoved         // focus changed; rows around it may need a fetch
	ActionPlay          // mark Pos as current
	ActionNext          // advance the current entry
	ActionPrev          // step the current entry back
	ActionRemove        // remove Pos
	ActionMove          // move Pos to To
	ActionClear         // remove every entry
	ActionAdd           // append ID elsewhere
)

// Result is returned from Handle to tell the parent what happened.
type Result struct {
	Action Action
	Pos    int
	To     int
	ID     int64
}

// Model shows the rows of a cache around its focus.
type Model struct {
	ui.Base
	cache  *collcache.Cache
	cursor cursor.Cursor
	title  string
}

// New creates a list over cache.
func New(title string, cache *collcache.Cache) Model {
	return Model{
		cache:  cache,
		cursor: cursor.New(ui.ScrollMargin),
		title:  title,
	}
}

// Cache returns the cache being shown.
func (m Model) Cache() *collcache.Cache {
	return m.cache
}

// SetTitle changes the panel title.
func (m *Model) SetTitle(title string) {
	m.title = title
}

// Follow scrolls to keep the focus visible, after the cache changed.
func (m *Model) Follow() {
	m.cursor.Follow(m.cache.Focus(), m.cache.Len(), m.ListHeight())
}

// Handle maps action to a list operation. Navigation is applied directly;
// edits are returned for the parent to carry out against the catalog.
func (m *Model) Handle(action keymap.Action) Result {
	c := m.cache
	n := c.Len()
	focus := c.Focus()

	if pos, ok := cursor.Target(action, focus, n, m.ListHeight()); ok {
		c.SetFocus(pos)
		m.Follow()
		return Result{Action: ActionMoved, Pos: c.Focus()}
	}

	switch action { //nolint:exhaustive // only list actions
	case keymap.ActionNextTrack:
		return Result{Action: ActionNext}
	case keymap.ActionPrevTrack:
		return Result{Action: ActionPrev}
	case keymap.ActionClear:
		if n > 0 {
			return Result{Action: ActionClear}
		}
	}

	if n == 0 {
		return Result{}
	}
	switch action { //nolint:exhaustive // only list actions
	case keymap.ActionPlay:
		return Result{Action: ActionPlay, Pos: focus}
	case keymap.ActionRemove:
		return Result{Action: ActionRemove, Pos: focus}
	case keymap.ActionMoveItemDown:
		if focus < n-1 {
			return Result{Action: ActionMove, Pos: focus, To: focus + 1}
		}
	case keymap.ActionMoveItemUp:
		if focus > 0 {
			return Result{Action: ActionMove, Pos: focus, To: focus - 1}
		}
	case keymap.ActionAdd:
		if id, ok := c.ID(focus); ok {
			return Result{Action: ActionAdd, Pos: focus, ID: id}
		}
	}
	return Result{}
}

// View renders the panel. Rows not materialized yet show as placeholders;
// the parent is expected to have started a fetch for them.
func (m Model) View() string {
	t := styles.T()
	s := t.S()
	width := m.InnerWidth()
	height := m.ListHeight()
	n := m.cache.Len()

	lines := make([]string, 0, height+ui.HeaderHeight)
	lines = append(lines, render.Row(s.Title.Render(m.title), s.Muted.Render(m.counter()), width))
	lines = append(lines, s.Subtle.Render(render.Separator(width)))

	digits := len(strconv.Itoa(n))
	focus := m.cache.Focus()
	start, end := m.cursor.VisibleRange(n, height)
	for i := start; i < end; i++ {
		line := m.line(i, digits, width)
		if i == focus && m.IsFocused() {
			line = s.Cursor.Render(render.Fit(line, width))
		}
		lines = append(lines, line)
	}
	if n == 0 {
		lines = append(lines, s.Subtle.Render("empty"))
	}
	for len(lines) < height+ui.HeaderHeight {
		lines = append(lines, "")
	}

	return t.Panel(m.IsFocused()).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// line renders the row at pos. The position number is added here rather
// than stored, since inserts and removals shift it.
func (m Model) line(pos, digits, width int) string {
	s := styles.T().S()
	prefix := fmt.Sprintf("%*d. ", digits, pos+1)

	row, ok := m.cache.Peek(pos)
	switch {
	case !ok:
		return s.Subtle.Render(prefix + "…")
	case row.Missing:
		return s.Missing.Render(render.Truncate(prefix+fmt.Sprintf("missing track #%d", row.ID), width))
	case row.Active:
		return s.Active.Render(render.Truncate(prefix+render.Sanitize(row.Text), width))
	}
	return s.Muted.Render(prefix) + s.Base.Render(render.Truncate(render.Sanitize(row.Text), width-len(prefix)))
}

func (m Model) counter() string {
	n := m.cache.Len()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", m.cache.Focus()+1, n)
}
