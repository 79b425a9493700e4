// Package checklist is the pre-session readiness machine: a nested,
// purely client-side flow that gates session start. Steps adapt to the
// session's equipment flags; the whole machine resets to its first
// step every time the checklist is opened.
package checklist

import (
	"math/rand"

	"github.com/drbiga/lsuadhd-companion/internal/session"
)

// StepType identifies the current checklist step.
type StepType int

const (
	StepWelcome StepType = iota
	StepSupportingApps
	StepHeadphoneCheck
	StepVRMode
	StepAudioCue
	StepGoalSetting
	StepConfirmation
	StepDone
)

// Step is the current step with its per-step payload. Cue, Answer and
// Err are only meaningful on StepAudioCue; Goal only from
// StepGoalSetting on.
type Step struct {
	Type   StepType
	Cue    string
	Answer string
	Err    string
	Goal   int
}

// Actions fed to Reduce.
type (
	// Next advances to the following step, honoring skips.
	Next struct{}
	// SetAnswer records the typed audio-cue answer.
	SetAnswer struct{ Answer string }
	// ValidateCue checks the answer against the chosen cue.
	ValidateCue struct{}
	// ChangeCue deterministically cycles to the next cue in the list.
	ChangeCue struct{}
	// SetGoal records the target focus percentage.
	SetGoal struct{ Percent int }
	// Finish completes the checklist from the confirmation step.
	Finish struct{}
)

const (
	defaultGoal = 80
	goalStep    = 5
)

// Machine runs the checklist for one session.
type Machine struct {
	step Step
	cues []string

	skipHeadset   bool
	skipVRConfirm bool
	needsBeep     bool

	// Pick chooses the first cue's index. Overridable in tests; the
	// default is a pseudorandom draw.
	Pick func(n int) int
}

// earlySessionMax is the last sequence number that runs without the
// headset regardless of flags; headset sessions begin at session 3.
const earlySessionMax = 2

// New builds the machine for the given session, computing which steps
// apply. A nil session behaves like an equipment-less one.
func New(s *session.Session, cues []string) *Machine {
	m := &Machine{
		cues: cues,
		Pick: rand.Intn,
	}
	if s == nil || s.NoEquipment || s.Seqnum <= earlySessionMax {
		m.skipHeadset = true
	}
	if s != nil {
		m.skipVRConfirm = s.IsPassthrough
		m.needsBeep = s.HasFeedback
	}
	m.Reset()
	return m
}

// Reset puts the machine back on the first step. There is no
// mid-checklist resume.
func (m *Machine) Reset() {
	m.step = Step{Type: StepWelcome, Goal: defaultGoal}
}

// Step returns the current step.
func (m *Machine) Step() Step { return m.step }

// Done reports whether the checklist completed.
func (m *Machine) Done() bool { return m.step.Type == StepDone }

// Goal returns the chosen focus-goal percentage.
func (m *Machine) Goal() int { return m.step.Goal }

// NeedsBeepCheck reports whether the feedback-device beep check
// applies to this session.
func (m *Machine) NeedsBeepCheck() bool { return m.needsBeep }

// SkipsHeadset reports whether the headset steps are skipped.
func (m *Machine) SkipsHeadset() bool { return m.skipHeadset }

// Reduce applies an action to the current step. Actions that do not
// apply to the current step are ignored.
func (m *Machine) Reduce(action any) {
	s := m.step
	switch s.Type {
	case StepWelcome:
		if _, ok := action.(Next); ok {
			m.step.Type = StepSupportingApps
		}

	case StepSupportingApps:
		if _, ok := action.(Next); ok {
			if m.skipHeadset {
				m.enterAudioCue()
			} else {
				m.step.Type = StepHeadphoneCheck
			}
		}

	case StepHeadphoneCheck:
		if _, ok := action.(Next); ok {
			if m.skipVRConfirm {
				m.enterAudioCue()
			} else {
				m.step.Type = StepVRMode
			}
		}

	case StepVRMode:
		if _, ok := action.(Next); ok {
			m.enterAudioCue()
		}

	case StepAudioCue:
		switch a := action.(type) {
		case SetAnswer:
			m.step.Answer = a.Answer
		case ValidateCue:
			if s.Answer == s.Cue {
				m.step.Type = StepGoalSetting
				m.step.Err = ""
			} else {
				m.step.Err = "Invalid answer"
			}
		case ChangeCue:
			m.step.Cue = m.nextCue(s.Cue)
			m.step.Answer = ""
			m.step.Err = ""
		}

	case StepGoalSetting:
		switch a := action.(type) {
		case SetGoal:
			m.step.Goal = clampGoal(a.Percent)
		case Next:
			m.step.Type = StepConfirmation
		}

	case StepConfirmation:
		if _, ok := action.(Finish); ok {
			m.step.Type = StepDone
		}
	}
}

// enterAudioCue moves onto the audio-cue step with a fresh
// pseudorandom cue and an empty answer.
func (m *Machine) enterAudioCue() {
	m.step.Type = StepAudioCue
	if len(m.cues) > 0 {
		m.step.Cue = m.cues[m.Pick(len(m.cues))]
	}
	m.step.Answer = ""
	m.step.Err = ""
}

// nextCue cycles deterministically through the cue list with
// wrap-around. A cue not in the list restarts at the first entry.
func (m *Machine) nextCue(current string) string {
	if len(m.cues) == 0 {
		return current
	}
	for i, c := range m.cues {
		if c == current {
			return m.cues[(i+1)%len(m.cues)]
		}
	}
	return m.cues[0]
}

// clampGoal snaps a percentage onto the discrete 0-100 step-of-5 range.
func clampGoal(p int) int {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return (p + goalStep/2) / goalStep * goalStep
}
