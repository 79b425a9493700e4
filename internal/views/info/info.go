// Package info provides the session status bar for the companion TUI.
package info

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/drbiga/lsuadhd-companion/internal/session"
	"github.com/drbiga/lsuadhd-companion/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Participant string
	Seqnum      int
	Progress    *session.Progress
	Connected   bool
	BackendDown bool
	Width       int
}

// New creates a status bar model.
func New(participant string) Model {
	return Model{Participant: participant}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	switch {
	case m.BackendDown:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("✗ Backend down")
	case m.Connected:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Live")
	default:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("○ Not subscribed")
	}

	parts := []string{
		theme.StyleHeader.Render(m.Participant),
		connStr,
	}

	if m.Seqnum > 0 {
		parts = append(parts, fmt.Sprintf("session %d", m.Seqnum))
	}

	if m.Progress != nil {
		stage := strings.ToUpper(string(m.Progress.Stage))
		stageStr := lipgloss.NewStyle().
			Foreground(theme.StageColor(stage)).
			Bold(true).
			Render(stage)
		timeStr := lipgloss.NewStyle().
			Foreground(theme.TimeColor(m.Progress.RemainingSeconds)).
			Render(session.FormatRemaining(m.Progress))
		parts = append(parts, stageStr, timeStr)
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := strings.Join(parts, sep)

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
