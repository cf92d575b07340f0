package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/shelf/internal/app/handler"
	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/command"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/keymap"
	"github.com/llehouerou/shelf/internal/ui/rowlist"
)

var errNoList = errors.New("no list in this view")

func newPromptInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ":"
	ti.CharLimit = 500
	return ti
}

// openPrompt gives the keyboard to the command prompt.
func (m *Model) openPrompt() tea.Cmd {
	m.Prompting = true
	m.Prompt.SetValue("")
	return m.Prompt.Focus()
}

func (m *Model) closePrompt() {
	m.Prompting = false
	m.Prompt.Blur()
}

// handlePromptKey edits the command line while the prompt has the keyboard.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Resolve(keymap.ContextSearch, msg.String()) { //nolint:exhaustive // the input takes every other key
	case keymap.ActionCancel:
		m.closePrompt()
		return m, nil
	case keymap.ActionSubmit:
		line := m.Prompt.Value()
		m.closePrompt()
		m.ErrorMsg = ""
		cmd, quit := m.runLine(line)
		if !quit {
			m.saveSession()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.Prompt, cmd = m.Prompt.Update(msg)
	return m, cmd
}

// runLine runs the commands of line in order, stopping at the first one
// that fails. It reports whether the line quit the application.
func (m *Model) runLine(line string) (tea.Cmd, bool) {
	cmds, err := command.Parse(line, m.aliases)
	if err != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpCommand, err)
		return nil, false
	}

	var out []tea.Cmd
	for _, c := range cmds {
		cmd, err := m.runCommand(c)
		if err != nil {
			m.logger.Debug("command", "line", c.String(), "error", err)
			m.ErrorMsg = errmsg.FormatWith(errmsg.OpCommand, c.String(), err)
			break
		}
		out = append(out, cmd)
		if c.Name == string(keymap.ActionQuit) {
			return tea.Sequence(out...), true
		}
	}
	// mutations depend on each other's positions
	return tea.Sequence(out...), false
}

// runCommand runs one command. Besides the commands below, every bound
// action can be run by name, e.g. "next_track".
func (m *Model) runCommand(c command.Command) (tea.Cmd, error) {
	name := m.playlist

	switch c.Name {
	case "search":
		if c.Args == "" {
			return m.focusQuery(), nil
		}
		m.Query.SetValue(c.Args)
		m.Mode = ViewSearch
		m.focusView()
		m.resize()
		return m.newSearch(c.Args), nil

	case "tab":
		v, ok := viewNamed(c.Args)
		if !ok {
			return nil, fmt.Errorf("%w: tab browser|playlist|search", command.ErrUsage)
		}
		return m.switchView(v), nil

	case "goto":
		list, ok := m.focusedList()
		if !ok {
			return nil, errNoList
		}
		cache := list.Cache()
		pos, err := positions(c.Args, 1, cache.Len())
		if err != nil {
			return nil, err
		}
		cache.SetFocus(pos[0])
		list.Follow()
		return m.fetchRows(cache), nil

	case "rm":
		pos, err := m.playlistPosition(c.Args)
		if err != nil {
			return nil, err
		}
		return m.mutate(errmsg.OpPlaylistRemove, func(ctx context.Context, cat *catalog.Catalog) error {
			return cat.PlaylistRemove(ctx, name, pos)
		}), nil

	case "activate":
		pos, err := m.playlistPosition(c.Args)
		if err != nil {
			return nil, err
		}
		return m.mutate(errmsg.OpPlaylistCurrent, func(ctx context.Context, cat *catalog.Catalog) error {
			return cat.SetCurrent(ctx, name, pos)
		}), nil

	case "move":
		pos, err := positions(c.Args, 2, m.Playlist.Cache().Len())
		if err != nil {
			return nil, err
		}
		return m.mutate(errmsg.OpPlaylistMove, func(ctx context.Context, cat *catalog.Catalog) error {
			return cat.PlaylistMove(ctx, name, pos[0], pos[1])
		}), nil

	case "clear":
		m.confirmClear()
		return nil, nil

	case "rehash":
		_, cmd := handler.Chain(keymap.ActionRescan, m.handleGlobalKeys)
		return cmd, nil
	}

	action, ok := keymap.Lookup(c.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", command.ErrUnknown, c.Name)
	}
	if c.Args != "" {
		return nil, fmt.Errorf("%w: %s takes no arguments", command.ErrUsage, c.Name)
	}
	_, cmd := handler.Chain(action,
		m.handleGlobalKeys,
		m.handleBrowserKeys,
		m.handlePlaylistKeys,
		m.handleResultKeys,
	)
	return cmd, nil
}

// focusedList returns the list shown by the current view.
func (m *Model) focusedList() (*rowlist.Model, bool) {
	switch {
	case m.Mode == ViewPlaylist:
		return &m.Playlist, true
	case m.Mode == ViewSearch && m.HasResults:
		return &m.Results, true
	}
	return nil, false
}

// playlistPosition reads an optional 1-based playlist position. Without
// one it is the focused entry.
func (m Model) playlistPosition(args string) (int, error) {
	c := m.Playlist.Cache()
	if args == "" {
		if c.Len() == 0 {
			return 0, fmt.Errorf("%w: the playlist is empty", command.ErrUsage)
		}
		return c.Focus(), nil
	}
	pos, err := positions(args, 1, c.Len())
	if err != nil {
		return 0, err
	}
	return pos[0], nil
}

// positions parses exactly n 1-based positions of a list of length entries
// into 0-based ones.
func positions(args string, n, length int) ([]int, error) {
	fields := strings.Fields(args)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: want %d position(s), got %q", command.ErrUsage, n, args)
	}
	out := make([]int, n)
	for i, f := range fields {
		p, err := strconv.Atoi(f)
		if err != nil || p < 1 || p > length {
			return nil, fmt.Errorf("%w: position %q not in 1..%d", command.ErrUsage, f, length)
		}
		out[i] = p - 1
	}
	return out, nil
}
