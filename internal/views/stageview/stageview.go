// Package stageview renders the per-stage session screens. Walkthrough
// copy is written in Markdown and rendered with Glamour so links and
// emphasis survive the terminal.
package stageview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/drbiga/lsuadhd-companion/internal/session"
	"github.com/drbiga/lsuadhd-companion/internal/theme"
)

// Model renders the active stage.
type Model struct {
	Width int

	// Goal is the focus target chosen during the readiness checklist.
	Goal int
	// AutoDetect selects the submission copy: polling vs manual confirm.
	AutoDetect bool
	// Polling is set while a submission completion poll is in flight.
	Polling bool
	// ConfirmingSubmit is set after the first enter during readcomp
	// time-up, until the participant confirms or backs out.
	ConfirmingSubmit bool

	renderer *glamour.TermRenderer
}

// New creates a stage view.
func New() Model {
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	return Model{renderer: r}
}

// Resize rebuilds the Markdown renderer so it wraps at the new width.
func (m *Model) Resize(width int) {
	m.Width = width
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	); err == nil {
		m.renderer = r
	}
}

// TimeUp reports whether the stage countdown has run out.
func TimeUp(p *session.Progress) bool {
	return p != nil && p.RemainingSeconds <= 0
}

// View renders the screen for the given session and progress.
func (m Model) View(s *session.Session, p *session.Progress) string {
	if p == nil {
		return theme.StyleDimmed.Render("  Waiting for session data...")
	}

	switch p.Stage {
	case session.StageWaiting:
		return m.markdown(waitingCopy)
	case session.StageReadcomp:
		return m.readcomp(s, p)
	case session.StageHomework:
		return m.homework(p)
	case session.StageSurvey:
		return m.survey(s)
	case session.StageFinished:
		return m.finished(s)
	default:
		return theme.StyleDimmed.Render("  Unknown stage")
	}
}

const waitingCopy = `# Getting ready

The session is being prepared. Sit tight, the reading
comprehension task starts in a moment.`

func (m Model) readcomp(s *session.Session, p *session.Progress) string {
	var b strings.Builder
	b.WriteString("# Reading comprehension\n\n")
	b.WriteString("Read the passage and answer the questions.\n\n")
	if s != nil && s.ReadcompLink != "" {
		fmt.Fprintf(&b, "Open the quiz: %s\n\n", s.ReadcompLink)
	}
	out := m.markdown(b.String())

	if !TimeUp(p) {
		lines := []string{out, m.countdownLine(p)}
		if m.AutoDetect {
			lines = append(lines, theme.StyleDimmed.Render("  the quiz submission is detected automatically"))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines := []string{out, theme.StyleDanger.Render("  Time is up.")}
	switch {
	case m.ConfirmingSubmit:
		lines = append(lines,
			"  Did you submit the quiz?",
			theme.StyleDimmed.Render("  enter: yes, move on   esc: not yet"),
		)
	case m.AutoDetect && m.Polling:
		lines = append(lines, theme.StyleDimmed.Render("  checking for your submission..."))
	default:
		lines = append(lines, theme.StyleDimmed.Render("  press enter once you submitted the quiz"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) homework(p *session.Progress) string {
	header := "# Homework\n\nWork on your own homework now. Passive tracking is running.\n"
	out := m.markdown(header)

	lines := []string{out, m.countdownLine(p)}
	if m.Goal > 0 {
		lines = append(lines, theme.StyleDimmed.Render(
			fmt.Sprintf("  focus target: %d%%", m.Goal)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) survey(s *session.Session) string {
	var b strings.Builder
	b.WriteString("# Post-session survey\n\n")
	b.WriteString("Fill in the survey to finish the session.\n\n")
	if s != nil && s.PostLink != "" {
		fmt.Fprintf(&b, "Open the survey: %s\n\n", s.PostLink)
	}
	out := m.markdown(b.String())

	var hint string
	switch {
	case m.AutoDetect && m.Polling:
		hint = theme.StyleDimmed.Render("  checking for your submission...")
	case m.AutoDetect:
		hint = theme.StyleDimmed.Render("  the session finishes automatically once the survey is submitted")
	default:
		hint = theme.StyleDimmed.Render("  press enter once you submitted the survey")
	}
	return lipgloss.JoinVertical(lipgloss.Left, out, hint)
}

func (m Model) finished(s *session.Session) string {
	var b strings.Builder
	b.WriteString("# Session complete\n\n")
	b.WriteString("Great work today. You can close this window.\n")
	if s != nil && s.HasEquipment() {
		b.WriteString("\nPlease put the headset back on its charger.\n")
	}
	return m.markdown(b.String())
}

func (m Model) countdownLine(p *session.Progress) string {
	return lipgloss.NewStyle().
		Foreground(theme.TimeColor(p.RemainingSeconds)).
		Bold(true).
		Render("  " + session.FormatRemaining(p) + " remaining")
}

func (m Model) markdown(src string) string {
	if m.renderer == nil {
		return src
	}
	out, err := m.renderer.Render(src)
	if err != nil {
		return src
	}
	return strings.TrimRight(out, "\n")
}
