// Package cursor keeps a focused position visible in a scrolling list.
//
// The focus itself lives with the data (the grouping browser, the windowed
// cache); a Cursor only tracks the scroll offset and turns navigation
// actions into new focus positions.
package cursor

import "github.com/llehouerou/shelf/internal/keymap"

// Cursor manages the scroll offset of a list. The list length and viewport
// height are passed to methods rather than stored, since they change with
// catalog events and window resizes.
type Cursor struct {
	offset int // first visible item index
	margin int // items kept visible above/below the focus
}

// New creates a new Cursor with the specified scroll margin.
func New(margin int) Cursor {
	return Cursor{margin: margin}
}

// Offset returns the current scroll offset.
func (c Cursor) Offset() int {
	return c.offset
}

// Margin returns the current scroll margin.
func (c Cursor) Margin() int {
	return c.margin
}

// Follow adjusts the scroll offset so pos stays visible.
func (c *Cursor) Follow(pos, listLen, height int) {
	if height <= 0 || listLen == 0 {
		c.offset = 0
		return
	}

	// Keep the margin smaller than half the viewport
	margin := min(c.margin, (height-1)/2)

	// Scroll up: focus too close to top
	if pos < c.offset+margin {
		c.offset = max(pos-margin, 0)
	}

	// Scroll down: focus too close to bottom
	if pos >= c.offset+height-margin {
		c.offset = pos - height + margin + 1
	}

	c.offset = clamp(c.offset, max(listLen-height, 0))
}

// Center scrolls so pos sits in the middle of the viewport.
func (c *Cursor) Center(pos, listLen, height int) {
	if height <= 0 || listLen == 0 {
		return
	}
	c.offset = clamp(pos-height/2, max(listLen-height, 0))
}

// Reset scrolls back to the top.
func (c *Cursor) Reset() {
	c.offset = 0
}

// VisibleRange returns the range of visible indices [start, end).
func (c Cursor) VisibleRange(listLen, height int) (start, end int) {
	if listLen == 0 || height <= 0 {
		return 0, 0
	}
	start = min(c.offset, listLen)
	end = min(start+height, listLen)
	return start, end
}

// Target returns the focus position a navigation action leads to from pos,
// and false when the action is not a navigation action.
func Target(action keymap.Action, pos, listLen, height int) (int, bool) {
	var next int
	switch action {
	case keymap.ActionMoveDown:
		next = pos + 1
	case keymap.ActionMoveUp:
		next = pos - 1
	case keymap.ActionJumpStart:
		next = 0
	case keymap.ActionJumpEnd:
		next = listLen - 1
	case keymap.ActionPageDown:
		next = pos + max(height/2, 1)
	case keymap.ActionPageUp:
		next = pos - max(height/2, 1)
	default:
		return pos, false
	}
	if listLen == 0 {
		return 0, true
	}
	return clamp(next, listLen-1), true
}

func clamp(v, maxVal int) int {
	if v < 0 {
		return 0
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
