// Package scanbar displays the progress of a running library scan at the
// bottom of the screen.
package scanbar

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/shelf/internal/library"
	"github.com/llehouerou/shelf/internal/ui/render"
	"github.com/llehouerou/shelf/internal/ui/styles"
)

// Height is the height of the bar while a scan runs, border included.
const Height = 3

// Model holds the latest progress report of a scan.
type Model struct {
	state  library.ScanProgress
	active bool
	bar    progress.Model
}

// New returns an idle bar.
func New() Model {
	t := styles.T()
	return Model{
		bar: progress.New(
			progress.WithSolidFill(string(t.Primary)),
			progress.WithoutPercentage(),
		),
	}
}

// Active reports whether a scan is in progress.
func (m Model) Active() bool {
	return m.active
}

// Update records a progress report. The bar hides once the scan is done.
func (m *Model) Update(p library.ScanProgress) {
	m.state = p
	m.active = p.Phase != library.PhaseDone
}

// Stop hides the bar, for a scan that ended without a done report.
func (m *Model) Stop() {
	m.active = false
}

// View renders "◦ phase  [bar] current/total", or a file counter while
// the total is unknown. It is empty when no scan runs.
func (m Model) View(width int) string {
	if !m.active {
		return ""
	}
	t := styles.T()
	s := t.S()
	inner := max(width-2, 0)

	label := "◦ " + m.label()
	var line string
	if m.state.Total > 0 {
		count := fmt.Sprintf("%d/%d", m.state.Current, m.state.Total)
		labelWidth := min(max(inner/3, 10), inner)
		m.bar.Width = max(inner-labelWidth-lipgloss.Width(count)-4, 0)
		ratio := float64(m.state.Current) / float64(m.state.Total)
		line = render.Fit(s.Title.Render(label), labelWidth) + "  " + m.bar.ViewAs(min(ratio, 1)) + "  " + s.Muted.Render(count)
	} else {
		count := ""
		if m.state.Current > 0 {
			count = s.Muted.Render(humanize.Comma(int64(m.state.Current)) + " files found")
		}
		line = render.Row(s.Title.Render(label), count, inner)
	}

	return t.Panel(false).
		Width(inner).
		Render(render.Truncate(line, inner))
}

func (m Model) label() string {
	switch m.state.Phase {
	case library.PhaseProcessing:
		return "Reading tags"
	case library.PhaseCleaning:
		return "Removing vanished tracks"
	}
	return "Scanning library"
}
