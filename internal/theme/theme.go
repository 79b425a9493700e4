// Package theme provides the Lip Gloss color palette and reusable styles
// for the study companion TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Stage colors.
var (
	ColorWaiting  = lipgloss.Color("#854d0e")
	ColorReadcomp = lipgloss.Color("#3b82f6")
	ColorHomework = lipgloss.Color("#a855f7")
	ColorSurvey   = lipgloss.Color("#06b6d4")
	ColorFinished = lipgloss.Color("#16a34a")
	ColorDefault  = lipgloss.Color("#9ca3af")
)

// Readiness check colors.
var (
	ColorCheckPending = lipgloss.Color("#4b5563")
	ColorCheckRunning = lipgloss.Color("#2563eb")
	ColorCheckPassed  = lipgloss.Color("#22c55e")
	ColorCheckFailed  = lipgloss.Color("#dc2626")
)

// Remaining-time thresholds.
var (
	ColorTimeAmple = lipgloss.Color("#22c55e") // >5 min
	ColorTimeShort = lipgloss.Color("#d97706") // 1-5 min
	ColorTimeLast  = lipgloss.Color("#dc2626") // <1 min
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// StageColor returns the Lip Gloss color for a session stage name.
func StageColor(stage string) lipgloss.Color {
	switch stage {
	case "WAITING":
		return ColorWaiting
	case "READCOMP":
		return ColorReadcomp
	case "HOMEWORK":
		return ColorHomework
	case "SURVEY":
		return ColorSurvey
	case "FINISHED":
		return ColorFinished
	default:
		return ColorDefault
	}
}

// TimeColor returns the color for a remaining-seconds value.
func TimeColor(seconds int) lipgloss.Color {
	switch {
	case seconds < 60:
		return ColorTimeLast
	case seconds < 300:
		return ColorTimeShort
	default:
		return ColorTimeAmple
	}
}

// CheckGlyph returns a Unicode glyph for a readiness-check state.
func CheckGlyph(state string) string {
	switch state {
	case "pending":
		return "○"
	case "running":
		return "◎"
	case "passed":
		return "✓"
	case "failed":
		return "✗"
	default:
		return "·"
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDanger = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDanger)

	StyleHealthy = lipgloss.NewStyle().
			Foreground(ColorHealthy)
)
