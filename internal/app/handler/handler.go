// Package handler chains key handlers: each one either claims an action
// or passes it on.
package handler

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/shelf/internal/keymap"
)

// Result is the outcome of a handler.
type Result struct {
	Handled bool
	Cmd     tea.Cmd
}

// NotHandled passes the action to the next handler.
var NotHandled = Result{}

// HandledNoCmd claims the action without a command.
var HandledNoCmd = Result{Handled: true}

// Handled claims the action and returns cmd.
func Handled(cmd tea.Cmd) Result {
	return Result{Handled: true, Cmd: cmd}
}

// Handler attempts to handle an action.
type Handler func(action keymap.Action) Result

// Chain offers action to handlers in order until one handles it.
// The empty action is never handled.
func Chain(action keymap.Action, handlers ...Handler) (bool, tea.Cmd) {
	if action == "" {
		return false, nil
	}
	for _, h := range handlers {
		if r := h(action); r.Handled {
			return true, r.Cmd
		}
	}
	return false, nil
}
