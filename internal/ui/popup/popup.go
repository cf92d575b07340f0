// Package popup draws centered modal boxes over the main screen.
package popup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/shelf/internal/ui/styles"
)

// Box renders content with a title and footer inside a rounded border.
// The box is sized to its content and never wider than maxWidth.
func Box(title, content, footer string, maxWidth int) string {
	s := styles.T().S()

	parts := make([]string, 0, 3)
	if title != "" {
		parts = append(parts, s.Title.Render(title)+"\n")
	}
	parts = append(parts, content)
	if footer != "" {
		parts = append(parts, "\n"+s.Subtle.Render(footer))
	}
	body := strings.Join(parts, "\n")

	// border and padding take four columns
	width := min(lipgloss.Width(body), max(maxWidth-4, 1))
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, width, "…")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().BorderFocus).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Overlay draws box centered on base, which is width columns wide and
// height lines tall. Base lines under the box are cut around it.
func Overlay(base, box string, width, height int) string {
	baseLines := strings.Split(base, "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	boxLines := strings.Split(box, "\n")

	boxWidth := 0
	for _, l := range boxLines {
		boxWidth = max(boxWidth, ansi.StringWidth(l))
	}
	top := max((height-len(boxLines))/2, 0)
	left := max((width-boxWidth)/2, 0)

	for i, l := range boxLines {
		row := top + i
		if row >= len(baseLines) {
			break
		}
		line := baseLines[row]
		if w := ansi.StringWidth(line); w < width {
			line += strings.Repeat(" ", width-w)
		}
		end := left + ansi.StringWidth(l)
		baseLines[row] = ansi.Cut(line, 0, left) + l + ansi.Cut(line, end, width)
	}
	return strings.Join(baseLines, "\n")
}
