// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryScan   Op = "scan library"
	OpLibraryWatch  Op = "watch library"
	OpLibrarySearch Op = "search library"

	// Format operations
	OpFormatParse  Op = "parse format"
	OpFormatConfig Op = "load format presets"

	// Browser operations
	OpBrowserLoad Op = "load browser"

	// Playlist operations
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistLoad     Op = "load playlist"
	OpPlaylistAddTrack Op = "add track to playlist"
	OpPlaylistRemove   Op = "remove track from playlist"
	OpPlaylistMove     Op = "move playlist item"
	OpPlaylistClear    Op = "clear playlist"
	OpPlaylistCurrent  Op = "set current track"

	// Row fetches
	OpFetchRows Op = "fetch rows"

	// Command prompt
	OpCommand Op = "run command"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
