// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit         Action = "quit"
	ActionNextView     Action = "next_view"
	ActionViewBrowser  Action = "view_browser"
	ActionViewPlaylist Action = "view_playlist"
	ActionSearch       Action = "search"
	ActionRescan       Action = "rescan"
	ActionHelp         Action = "help"
	ActionCommand      Action = "command" // : - open the command prompt

	// Navigation actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"
	ActionPageUp    Action = "page_up"
	ActionPageDown  Action = "page_down"

	// Browser actions
	ActionDrillIn  Action = "drill_in"  // l/enter - open the focused group
	ActionDrillOut Action = "drill_out" // h/backspace - back to the parent level
	ActionAdd      Action = "add"       // a - append to the playlist

	// Playlist actions
	ActionPlay         Action = "play"           // enter - mark as current
	ActionNextTrack    Action = "next_track"     // n
	ActionPrevTrack    Action = "prev_track"     // p
	ActionRemove       Action = "remove"         // d/delete
	ActionMoveItemUp   Action = "move_item_up"   // shift+k
	ActionMoveItemDown Action = "move_item_down" // shift+j
	ActionClear        Action = "clear"          // c

	// Search input
	ActionSubmit Action = "submit"
	ActionCancel Action = "cancel"
)
