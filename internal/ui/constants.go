// Package ui provides shared UI constants and utilities.
package ui

// Layout constants for consistent sizing across views.
const (
	// ScrollMargin is the number of rows kept visible above/below the focus.
	ScrollMargin = 3

	// BorderHeight is the vertical space consumed by a panel border.
	BorderHeight = 2

	// BorderWidth is the horizontal space consumed by a panel border.
	BorderWidth = 2

	// HeaderHeight is the space for the title line and separator in panels.
	HeaderHeight = 2

	// PanelOverhead is the total vertical overhead (border + header).
	PanelOverhead = BorderHeight + HeaderHeight
)
