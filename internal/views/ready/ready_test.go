package ready

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drbiga/lsuadhd-companion/internal/checklist"
	"github.com/drbiga/lsuadhd-companion/internal/session"
	"github.com/drbiga/lsuadhd-companion/internal/theme"
)

type fakeAudio struct {
	clips []string
	beeps int
}

func (f *fakeAudio) PlayBeep() error { f.beeps++; return nil }

func (f *fakeAudio) PlayClip(name string) error {
	f.clips = append(f.clips, name)
	return nil
}

type fakeAgent struct{}

func (fakeAgent) Ping() error                         { return nil }
func (fakeAgent) Initialize(participant string) error { return nil }
func (fakeAgent) CheckAnalytics() error               { return nil }

type fakeDevice struct{}

func (fakeDevice) Health() error { return nil }

// readyProbes returns a probe set with every required dependency
// already answered healthy.
func readyProbes() *checklist.Probes {
	p := checklist.NewProbes("student1", fakeAgent{}, fakeDevice{}, false)
	p.Update(checklist.ProbeResultMsg{Dep: checklist.DepAgent})
	p.Update(checklist.ProbeResultMsg{Dep: checklist.DepAnalytics})
	return p
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func TestCuePlaysOnStepEntry(t *testing.T) {
	audio := &fakeAudio{}
	machine := checklist.New(&session.Session{Seqnum: 1, NoEquipment: true}, []string{"apple", "river"})
	machine.Pick = func(int) int { return 0 }
	m := New(machine, readyProbes(), audio)

	m, _ = m.Update(enter())
	m, cmd := m.Update(enter())
	if machine.Step().Type != checklist.StepAudioCue {
		t.Fatalf("step = %d, want the audio-cue step", machine.Step().Type)
	}
	if cmd == nil {
		t.Fatal("entering the audio-cue step should play the cue")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("cue command should report its outcome")
	}
	if len(audio.clips) != 1 || audio.clips[0] != "apple" {
		t.Fatalf("played clips = %v, want the chosen cue", audio.clips)
	}

	// The cue word itself must never be shown on screen.
	if strings.Contains(m.View(), "apple") {
		t.Error("view must not reveal the cue word")
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Fatal("switching cues should play the new one")
	}
	cmd()
	if len(audio.clips) != 2 || audio.clips[1] != "river" {
		t.Fatalf("played clips = %v, want the next cue after tab", audio.clips)
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if cmd == nil {
		t.Fatal("ctrl+p should replay the cue")
	}
	cmd()
	if len(audio.clips) != 3 || audio.clips[2] != "river" {
		t.Fatalf("played clips = %v, want a replay of the current cue", audio.clips)
	}
}

func TestSupportingAppsPerDependencyGlyphs(t *testing.T) {
	machine := checklist.New(&session.Session{Seqnum: 1, NoEquipment: true}, []string{"apple"})
	machine.Reduce(checklist.Next{})
	probes := checklist.NewProbes("student1", fakeAgent{}, fakeDevice{}, false)
	m := New(machine, probes, &fakeAudio{})

	probes.VerifyAll()
	probes.Update(checklist.ProbeResultMsg{Dep: checklist.DepAgent})

	if probes.InFlight(checklist.DepAgent) {
		t.Fatal("a resolved probe should not be in flight")
	}
	if !probes.InFlight(checklist.DepAnalytics) {
		t.Fatal("an unresolved probe should still be in flight")
	}
	if n := strings.Count(m.View(), theme.CheckGlyph("passed")); n != 1 {
		t.Errorf("passed glyphs = %d, want only the resolved dependency's", n)
	}
}
