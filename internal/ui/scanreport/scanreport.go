// Package scanreport renders the outcome of a library scan.
package scanreport

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/shelf/internal/library"
	"github.com/llehouerou/shelf/internal/ui/styles"
)

// DefaultMaxExamples is the number of example paths shown per category.
const DefaultMaxExamples = 3

// Title is shown above the report.
const Title = "Library Scan Complete"

// Render lists what a scan changed, a few example paths per category.
func Render(stats *library.ScanStats, maxExamples int) string {
	if stats == nil {
		return ""
	}
	t := styles.T()
	s := t.S()

	var sb strings.Builder
	sb.WriteString(s.Muted.Render(humanize.Comma(int64(stats.Files)) + " files scanned"))
	sb.WriteString("\n\n")

	if !stats.Changed() && len(stats.Unparsed) == 0 {
		sb.WriteString(s.Subtle.Render("No changes"))
		return sb.String()
	}

	category(&sb, "Added", stats.Added, t.Success, maxExamples)
	category(&sb, "Removed", stats.Removed, t.Error, maxExamples)
	category(&sb, "Updated", stats.Updated, t.Warning, maxExamples)
	category(&sb, "Without tags", stats.Unparsed, t.FgMuted, maxExamples)

	sb.WriteString(strings.Repeat("─", 40))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf(
		"Total: %d added, %d removed, %d updated",
		len(stats.Added), len(stats.Removed), len(stats.Updated))))
	return sb.String()
}

func category(sb *strings.Builder, label string, paths []string, color lipgloss.Color, maxExamples int) {
	if len(paths) == 0 {
		return
	}
	dim := styles.T().S().Subtle
	sb.WriteString(lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%s: %d", label, len(paths))))
	sb.WriteString("\n")

	for i, path := range paths {
		if i >= maxExamples {
			sb.WriteString("    ")
			sb.WriteString(dim.Render(fmt.Sprintf("... and %d more", len(paths)-maxExamples)))
			sb.WriteString("\n")
			break
		}
		sb.WriteString("    • ")
		sb.WriteString(dim.Render(path))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}
