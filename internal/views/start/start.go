// Package start renders the pre-session start screen. The copy depends
// on the session's equipment flags, and later sessions get a headset
// reminder that must be acknowledged before the session can start.
package start

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/drbiga/lsuadhd-companion/internal/session"
	"github.com/drbiga/lsuadhd-companion/internal/theme"
)

// headsetConfirmAfter is the last sequence number that starts without
// the headset reminder.
const headsetConfirmAfter = 2

// Model holds the start screen state.
type Model struct {
	Width int

	next     *session.Session
	awaiting bool
}

// New creates a start screen for the given upcoming session.
func New(next *session.Session) Model {
	return Model{next: next}
}

// NeedsHeadsetAck reports whether starting must first be acknowledged
// because the session uses the headset.
func (m Model) NeedsHeadsetAck() bool {
	return m.next != nil && m.next.HasEquipment() && m.next.Seqnum > headsetConfirmAfter
}

// Awaiting reports whether the headset reminder is currently shown.
func (m Model) Awaiting() bool { return m.awaiting }

// RequestStart is called on the first start keypress. It returns true
// when the session may start immediately, false when the headset
// reminder was raised instead.
func (m *Model) RequestStart() bool {
	if m.awaiting {
		return true
	}
	if m.NeedsHeadsetAck() {
		m.awaiting = true
		return false
	}
	return true
}

// Dismiss hides the headset reminder without starting.
func (m *Model) Dismiss() { m.awaiting = false }

// View renders the start screen.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}
	if m.next == nil {
		return theme.StyleDimmed.Render("  No session to start")
	}

	lines := []string{
		theme.StyleHeader.Render(fmt.Sprintf("Session %d is ready", m.next.Seqnum)),
		"",
	}

	if m.next.HasEquipment() {
		lines = append(lines,
			"Put the headset on and keep it on for the whole session.",
			"Work will happen inside the headset browser.",
		)
	} else {
		lines = append(lines,
			"This session runs without the headset.",
			"Keep this window open for the whole session.",
		)
	}
	if m.next.StartLink != "" {
		lines = append(lines, "", "Reading material: "+m.next.StartLink)
	}
	lines = append(lines, "", theme.StyleDimmed.Render("press enter to start"))

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)

	if m.awaiting {
		warn := lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleDanger.Render("Headset check"),
			"",
			"Make sure the headset is charged and strapped on",
			"before continuing. Once started, the session timer",
			"does not pause.",
			"",
			theme.StyleDimmed.Render("enter: start anyway   esc: go back"),
		)
		box := theme.StyleBorder.Padding(1, 2).Render(warn)
		return lipgloss.JoinVertical(lipgloss.Left, body, "", box)
	}

	return body
}
