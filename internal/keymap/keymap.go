package keymap

import "github.com/charmbracelet/bubbles/key"

// Binding contexts.
const (
	ContextGlobal   = "global"
	ContextNavigate = "navigate"
	ContextBrowser  = "browser"
	ContextPlaylist = "playlist"
	ContextSearch   = "search"
)

// Binding ties keys to an action within a context.
type Binding struct {
	Action  Action
	Keys    []string
	Help    string
	Context string
}

// Key returns the binding as a bubbles key binding, for help rendering.
func (b Binding) Key() key.Binding {
	return key.NewBinding(
		key.WithKeys(b.Keys...),
		key.WithHelp(b.Keys[0], b.Help),
	)
}

// All contains every key binding.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "quit", ContextGlobal},
	{ActionNextView, []string{"tab"}, "switch view", ContextGlobal},
	{ActionViewBrowser, []string{"1", "f1"}, "browser", ContextGlobal},
	{ActionViewPlaylist, []string{"2", "f2"}, "playlist", ContextGlobal},
	{ActionSearch, []string{"/"}, "search", ContextGlobal},
	{ActionRescan, []string{"R"}, "rescan library", ContextGlobal},
	{ActionHelp, []string{"?"}, "help", ContextGlobal},
	{ActionCommand, []string{":"}, "command", ContextGlobal},

	// Navigation in any list
	{ActionMoveDown, []string{"j", "down"}, "down", ContextNavigate},
	{ActionMoveUp, []string{"k", "up"}, "up", ContextNavigate},
	{ActionJumpStart, []string{"g", "home"}, "first", ContextNavigate},
	{ActionJumpEnd, []string{"G", "end"}, "last", ContextNavigate},
	{ActionPageDown, []string{"ctrl+d", "pgdown"}, "page down", ContextNavigate},
	{ActionPageUp, []string{"ctrl+u", "pgup"}, "page up", ContextNavigate},

	// Browser
	{ActionDrillIn, []string{"enter", "l", "right"}, "open", ContextBrowser},
	{ActionDrillOut, []string{"backspace", "h", "left"}, "back", ContextBrowser},
	{ActionAdd, []string{"a"}, "add to playlist", ContextBrowser},

	// Playlist
	{ActionPlay, []string{"enter"}, "play", ContextPlaylist},
	{ActionNextTrack, []string{"n"}, "next", ContextPlaylist},
	{ActionPrevTrack, []string{"p"}, "previous", ContextPlaylist},
	{ActionRemove, []string{"d", "delete"}, "remove", ContextPlaylist},
	{ActionMoveItemDown, []string{"J", "shift+down"}, "move down", ContextPlaylist},
	{ActionMoveItemUp, []string{"K", "shift+up"}, "move up", ContextPlaylist},
	{ActionClear, []string{"c"}, "clear", ContextPlaylist},

	// Search results
	{ActionSubmit, []string{"enter"}, "search", ContextSearch},
	{ActionCancel, []string{"esc"}, "close", ContextSearch},
	{ActionAdd, []string{"a"}, "add to playlist", ContextSearch},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// Lookup returns the bound action named name, so that the command prompt
// can run anything a key can.
func Lookup(name string) (Action, bool) {
	for _, b := range All {
		if string(b.Action) == name {
			return b.Action, true
		}
	}
	return "", false
}

// HelpKeys returns the bindings of context followed by the global ones, as
// bubbles key bindings.
func HelpKeys(context string) []key.Binding {
	var keys []key.Binding
	for _, ctx := range []string{context, ContextGlobal} {
		for _, b := range ByContext(ctx) {
			keys = append(keys, b.Key())
		}
	}
	return keys
}
