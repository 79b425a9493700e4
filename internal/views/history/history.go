// Package history renders the completed-sessions table: one row per
// finished session with its attention distribution.
package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/drbiga/lsuadhd-companion/internal/session"
	"github.com/drbiga/lsuadhd-companion/internal/theme"
)

// Model holds the history table state.
type Model struct {
	Width     int
	analytics []session.Analytics
}

// New creates a history model.
func New() Model {
	return Model{}
}

// SetAnalytics updates the per-session summaries. The table sorts its
// own copy by sequence number so callers need not pre-sort.
func (m *Model) SetAnalytics(analytics []session.Analytics) {
	m.analytics = make([]session.Analytics, len(analytics))
	copy(m.analytics, analytics)
	sort.Slice(m.analytics, func(i, j int) bool {
		return m.analytics[i].SessionSeqnum < m.analytics[j].SessionSeqnum
	})
}

// View renders the completed-sessions table.
func (m Model) View() string {
	header := theme.StyleHeader.Render("  Completed sessions")

	if len(m.analytics) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  No sessions completed yet"),
		)
	}

	colSeq := 10
	colBar := 24
	colPct := 9

	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)

	tableHeader := fmt.Sprintf("  %-*s %-*s %*s %*s %*s",
		colSeq, "Session",
		colBar, "Focus",
		colPct, "Focused",
		colPct, "Normal",
		colPct, "Distr.",
	)
	lines := []string{
		header,
		dimStyle.Render(tableHeader),
		dimStyle.Render("  " + strings.Repeat("─", colSeq+colBar+colPct*3+4)),
	}

	for _, a := range m.analytics {
		seq := fmt.Sprintf("%-*d", colSeq, a.SessionSeqnum)
		bar := renderFocusBar(a.PercentageTimeFocused, colBar-1)
		line := fmt.Sprintf("  %s %s %*.0f%% %*.0f%% %*.0f%%",
			seq,
			lipgloss.NewStyle().Width(colBar).Render(bar),
			colPct-1, a.PercentageTimeFocused,
			colPct-1, a.PercentageTimeNormal,
			colPct-1, a.PercentageTimeDistracted,
		)
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderFocusBar draws a small bar for a focus percentage in [0,100].
func renderFocusBar(pct float64, barWidth int) string {
	if barWidth < 8 {
		barWidth = 8
	}
	filled := int(pct / 100 * float64(barWidth))
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}

	color := theme.ColorTimeLast
	switch {
	case pct >= 66:
		color = theme.ColorTimeAmple
	case pct >= 33:
		color = theme.ColorTimeShort
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	bar += lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("░", barWidth-filled))
	return bar
}
