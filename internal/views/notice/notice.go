// Package notice renders the full-screen terminal states that replace
// the normal session flow: loading, backend outage, demoted instance
// and the all-sessions-done congratulations.
package notice

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/drbiga/lsuadhd-companion/internal/theme"
)

// Loading renders the initial data-fetch screen.
func Loading(spinner string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		"  "+spinner+" Loading your study data...",
	)
}

// Outage renders the backend-unreachable screen.
func Outage() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleDanger.Render("Connection lost"),
		"",
		"The study server is not reachable right now.",
		"Leave this window open; it reconnects on its own",
		"and your session picks up where it left off.",
	)
	return theme.StyleBorder.Padding(1, 2).Render(body)
}

// Moved renders the inert screen shown after the session moved to
// another instance.
func Moved() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleHeader.Render("Session moved"),
		"",
		"Your session continues in another window.",
		"This one is no longer active and can be closed.",
	)
	return theme.StyleBorder.Padding(1, 2).Render(body)
}

// AllDone renders the congratulations screen shown when no sessions
// remain. The caller appends the completed-sessions table below it.
func AllDone() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleHealthy.Render("  Congratulations!"),
		"",
		"  You have completed every session in the study.",
		"  Thank you for participating.",
	)
}
