// Package ready is the readiness checklist screen: it walks the
// participant through the pre-session steps, polls the supporting apps,
// runs the audio-cue check and collects the focus goal.
package ready

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drbiga/lsuadhd-companion/internal/checklist"
	"github.com/drbiga/lsuadhd-companion/internal/theme"
)

// Audio plays sounds through the feedback device: the headphone test
// tone and the named cue clips.
type Audio interface {
	PlayBeep() error
	PlayClip(name string) error
}

// BeepResultMsg reports the outcome of the test tone.
type BeepResultMsg struct{ Err error }

// CuePlayedMsg reports the outcome of playing the cue clip.
type CuePlayedMsg struct{ Err error }

// Model holds the checklist screen state.
type Model struct {
	Width int

	machine *checklist.Machine
	probes  *checklist.Probes
	audio   Audio

	input   textinput.Model
	spin    spinner.Model
	beepErr error
	beeped  bool
	cueErr  error
}

// New creates the checklist screen for one session.
func New(machine *checklist.Machine, probes *checklist.Probes, audio Audio) Model {
	ti := textinput.New()
	ti.Placeholder = "type the word you heard"
	ti.CharLimit = 64
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorCheckRunning)

	return Model{
		machine: machine,
		probes:  probes,
		audio:   audio,
		input:   ti,
		spin:    sp,
	}
}

// Init kicks off the dependency probes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.probes.VerifyAll(), m.spin.Tick)
}

// Done reports whether the checklist has completed.
func (m Model) Done() bool { return m.machine.Done() }

// Goal returns the chosen focus target.
func (m Model) Goal() int { return m.machine.Goal() }

// Update handles checklist screen messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case checklist.ProbeResultMsg:
		cmd := m.probes.Update(msg)
		return m, cmd

	case BeepResultMsg:
		m.beeped = true
		m.beepErr = msg.Err
		return m, nil

	case CuePlayedMsg:
		m.cueErr = msg.Err
		return m, nil

	case spinner.TickMsg:
		if !m.probes.Checking() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.machine.Step().Type == checklist.StepAudioCue {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	step := m.machine.Step()

	switch step.Type {
	case checklist.StepWelcome, checklist.StepVRMode, checklist.StepConfirmation:
		if msg.String() == "enter" {
			if step.Type == checklist.StepConfirmation {
				m.machine.Reduce(checklist.Finish{})
			} else {
				m.machine.Reduce(checklist.Next{})
			}
		}
		return m, m.cueOnEntry()

	case checklist.StepSupportingApps:
		switch msg.String() {
		case "enter":
			if m.probes.Ready() {
				m.machine.Reduce(checklist.Next{})
			}
			return m, m.cueOnEntry()
		case "r":
			if !m.probes.Checking() {
				return m, tea.Batch(m.probes.VerifyAll(), m.spin.Tick)
			}
		}
		return m, nil

	case checklist.StepHeadphoneCheck:
		switch msg.String() {
		case "enter":
			m.machine.Reduce(checklist.Next{})
			return m, m.cueOnEntry()
		case "b":
			if m.machine.NeedsBeepCheck() && m.audio != nil {
				return m, m.playBeep()
			}
		}
		return m, nil

	case checklist.StepAudioCue:
		switch msg.String() {
		case "enter":
			m.machine.Reduce(checklist.SetAnswer{Answer: m.input.Value()})
			m.machine.Reduce(checklist.ValidateCue{})
			return m, nil
		case "tab":
			m.machine.Reduce(checklist.ChangeCue{})
			m.input.SetValue("")
			return m, m.playCue()
		case "ctrl+p":
			return m, m.playCue()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.machine.Reduce(checklist.SetAnswer{Answer: m.input.Value()})
		return m, cmd

	case checklist.StepGoalSetting:
		switch msg.String() {
		case "left", "h":
			m.machine.Reduce(checklist.SetGoal{Percent: step.Goal - 5})
		case "right", "l":
			m.machine.Reduce(checklist.SetGoal{Percent: step.Goal + 5})
		case "enter":
			m.machine.Reduce(checklist.Next{})
		}
		return m, nil
	}

	return m, nil
}

func (m Model) playBeep() tea.Cmd {
	audio := m.audio
	return func() tea.Msg {
		return BeepResultMsg{Err: audio.PlayBeep()}
	}
}

// cueOnEntry starts the cue clip when a step transition just landed on
// the audio-cue step.
func (m Model) cueOnEntry() tea.Cmd {
	if m.machine.Step().Type != checklist.StepAudioCue {
		return nil
	}
	return m.playCue()
}

func (m Model) playCue() tea.Cmd {
	if m.audio == nil {
		return nil
	}
	audio := m.audio
	cue := m.machine.Step().Cue
	return func() tea.Msg {
		return CuePlayedMsg{Err: audio.PlayClip(cue)}
	}
}

// View renders the current checklist step.
func (m Model) View() string {
	step := m.machine.Step()

	var body string
	switch step.Type {
	case checklist.StepWelcome:
		body = m.welcome()
	case checklist.StepSupportingApps:
		body = m.supportingApps()
	case checklist.StepHeadphoneCheck:
		body = m.headphoneCheck()
	case checklist.StepVRMode:
		body = m.vrMode()
	case checklist.StepAudioCue:
		body = m.audioCue(step)
	case checklist.StepGoalSetting:
		body = m.goalSetting(step)
	case checklist.StepConfirmation:
		body = m.confirmation(step)
	case checklist.StepDone:
		body = theme.StyleHealthy.Render("  Checklist complete.")
	}

	header := theme.StyleHeader.Render("Before you start")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

func (m Model) welcome() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"Welcome back. A few quick checks before the session starts.",
		"",
		theme.StyleDimmed.Render("  press enter to begin"),
	)
}

func (m Model) supportingApps() string {
	lines := []string{"Checking the supporting apps:", ""}

	for _, d := range m.probes.Required() {
		var glyph, hint string
		switch {
		case m.probes.InFlight(d):
			glyph = m.spin.View()
		case m.probes.Healthy(d):
			glyph = theme.StyleHealthy.Render(theme.CheckGlyph("passed"))
		default:
			glyph = theme.StyleDanger.Render(theme.CheckGlyph("failed"))
			hint = m.probes.Hint(d)
		}
		line := fmt.Sprintf("  %s %s", glyph, d)
		if hint != "" {
			line += theme.StyleDimmed.Render("  " + hint)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	if m.probes.Ready() {
		lines = append(lines, theme.StyleDimmed.Render("  press enter to continue"))
	} else if !m.probes.Checking() {
		lines = append(lines, theme.StyleDimmed.Render("  r: verify again"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) headphoneCheck() string {
	lines := []string{
		"Put the headphones on and set a comfortable volume.",
		"",
	}
	if m.machine.NeedsBeepCheck() {
		switch {
		case m.beepErr != nil:
			lines = append(lines, theme.StyleDanger.Render("  could not play the test tone: "+m.beepErr.Error()))
		case m.beeped:
			lines = append(lines, theme.StyleHealthy.Render("  test tone played"))
		}
		lines = append(lines, theme.StyleDimmed.Render("  b: play test tone   enter: continue"))
	} else {
		lines = append(lines, theme.StyleDimmed.Render("  press enter to continue"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) vrMode() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"Switch the headset to passthrough mode so you can see",
		"your keyboard and screen.",
		"",
		theme.StyleDimmed.Render("  press enter once passthrough is on"),
	)
}

func (m Model) audioCue(step checklist.Step) string {
	lines := []string{
		"A cue word is playing through your headphones.",
		"Type what you heard.",
		"",
		"  " + m.input.View(),
	}
	if m.cueErr != nil {
		lines = append(lines, "", theme.StyleDanger.Render("  could not play the cue: "+m.cueErr.Error()))
	}
	if step.Err != "" {
		lines = append(lines, "", theme.StyleDanger.Render("  "+step.Err))
	}
	lines = append(lines, "", theme.StyleDimmed.Render("  enter: check   ctrl+p: play again   tab: play a different cue"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) goalSetting(step checklist.Step) string {
	filled := step.Goal / 5
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
	return lipgloss.JoinVertical(lipgloss.Left,
		"Set your focus goal for this session.",
		"",
		fmt.Sprintf("  %s %3d%%", lipgloss.NewStyle().Foreground(theme.ColorCheckPassed).Render(bar), step.Goal),
		"",
		theme.StyleDimmed.Render("  ←/→: adjust   enter: continue"),
	)
}

func (m Model) confirmation(step checklist.Step) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("All set. Focus goal: %d%%.", step.Goal),
		"",
		theme.StyleDimmed.Render("  press enter to finish the checklist"),
	)
}
