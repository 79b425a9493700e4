package monitor

import (
	"errors"
	"testing"
	"time"
)

func newTestMonitor(probe func() error) *Monitor {
	return New(probe, 30*time.Second, time.Second, 2*time.Second)
}

func TestMonitor_HealthyStaysQuiet(t *testing.T) {
	m := newTestMonitor(func() error { return nil })

	cmd, ev := m.Update(probeResultMsg{gen: m.gen, err: nil})
	if ev != EventNone {
		t.Errorf("event = %d, want EventNone", ev)
	}
	if cmd == nil {
		t.Error("a next probe must be scheduled")
	}
	if m.Down() {
		t.Error("monitor should not be down")
	}
}

func TestMonitor_WentDownEdgeFiresOnce(t *testing.T) {
	m := newTestMonitor(func() error { return errors.New("boom") })

	_, ev := m.Update(probeResultMsg{gen: m.gen, err: errors.New("boom")})
	if ev != EventWentDown {
		t.Fatalf("first failure event = %d, want EventWentDown", ev)
	}
	if !m.Down() {
		t.Fatal("monitor should be down")
	}

	_, ev = m.Update(probeResultMsg{gen: m.gen, err: errors.New("boom")})
	if ev != EventNone {
		t.Errorf("repeat failure event = %d, want EventNone (edge already reported)", ev)
	}
}

func TestMonitor_RecoverySequence(t *testing.T) {
	m := newTestMonitor(nil)

	m.Update(probeResultMsg{gen: m.gen, err: errors.New("boom")})

	_, ev := m.Update(probeResultMsg{gen: m.gen, err: nil})
	if ev != EventBackUp {
		t.Fatalf("event = %d, want EventBackUp", ev)
	}
	if m.Down() {
		t.Error("down flag should clear immediately on success")
	}

	_, ev = m.Update(settleMsg{gen: m.gen})
	if ev != EventRecovered {
		t.Errorf("settle event = %d, want EventRecovered", ev)
	}
}

func TestMonitor_StaleMessagesDiscarded(t *testing.T) {
	m := newTestMonitor(nil)
	m.Update(probeResultMsg{gen: m.gen, err: nil}) // bumps gen

	cmd, ev := m.Update(probeTickMsg{gen: 0})
	if cmd != nil || ev != EventNone {
		t.Error("stale tick must be discarded")
	}
	cmd, ev = m.Update(probeResultMsg{gen: 0, err: errors.New("boom")})
	if cmd != nil || ev != EventNone {
		t.Error("stale probe result must be discarded")
	}
	if m.Down() {
		t.Error("stale failure must not flip the down flag")
	}
	_, ev = m.Update(settleMsg{gen: 0})
	if ev != EventNone {
		t.Error("stale settle must be discarded")
	}
}

func TestMonitor_TickRunsProbe(t *testing.T) {
	calls := 0
	m := newTestMonitor(func() error { calls++; return nil })

	cmd, _ := m.Update(probeTickMsg{gen: m.gen})
	if cmd == nil {
		t.Fatal("current-generation tick must run a probe")
	}
	msg := cmd()
	if calls != 1 {
		t.Errorf("probe calls = %d, want 1", calls)
	}
	res, ok := msg.(probeResultMsg)
	if !ok || res.err != nil {
		t.Errorf("msg = %#v, want successful probeResultMsg", msg)
	}
}

func TestMonitor_DownUsesShortInterval(t *testing.T) {
	// The adaptive interval is observable through the scheduled
	// command's delay only indirectly; assert the state flip here and
	// leave the tea.Tick plumbing to the framework.
	m := newTestMonitor(nil)
	m.Update(probeResultMsg{gen: m.gen, err: errors.New("down")})
	if !m.Down() || !m.lastFailed {
		t.Error("failure should set both the down flag and the retry marker")
	}
}
