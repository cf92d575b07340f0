// Package confirm provides a yes/no confirmation popup component.
package confirm

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/shelf/internal/ui/popup"
)

// ResultMsg is sent when the popup closes.
type ResultMsg struct {
	Confirmed bool
	Context   any // passed through from Show
}

// Model is a yes/no confirmation popup.
type Model struct {
	title   string
	message string
	context any
	active  bool
}

// New creates a new confirmation model.
func New() Model {
	return Model{}
}

// Show displays the popup. context comes back in the ResultMsg.
func (m *Model) Show(title, message string, context any) {
	m.title = title
	m.message = message
	m.context = context
	m.active = true
}

// Active returns whether the confirmation is currently shown.
func (m Model) Active() bool {
	return m.active
}

// Update handles a key while the popup is shown. Other keys are ignored.
func (m *Model) Update(msg tea.KeyMsg) tea.Cmd {
	if !m.active {
		return nil
	}

	var confirmed bool
	switch msg.String() {
	case "enter", "y", "Y":
		confirmed = true
	case "esc", "n", "N", "q":
	default:
		return nil
	}

	m.active = false
	ctx := m.context
	m.context = nil
	return func() tea.Msg {
		return ResultMsg{Confirmed: confirmed, Context: ctx}
	}
}

// View renders the popup box, at most maxWidth columns wide.
func (m Model) View(maxWidth int) string {
	if !m.active {
		return ""
	}
	return popup.Box(m.title, m.message, "enter/y confirm · esc/n cancel", maxWidth)
}
