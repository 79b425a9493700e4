package start

import (
	"strings"
	"testing"

	"github.com/drbiga/lsuadhd-companion/internal/session"
)

func TestHeadsetAck(t *testing.T) {
	tests := []struct {
		name     string
		session  *session.Session
		needsAck bool
	}{
		{"late session with equipment", &session.Session{Seqnum: 3}, true},
		{"early session", &session.Session{Seqnum: 2}, false},
		{"no equipment", &session.Session{Seqnum: 5, NoEquipment: true}, false},
		{"no session", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.session)
			if got := m.NeedsHeadsetAck(); got != tt.needsAck {
				t.Errorf("NeedsHeadsetAck() = %v, want %v", got, tt.needsAck)
			}
		})
	}
}

func TestRequestStartRaisesReminderOnce(t *testing.T) {
	m := New(&session.Session{Seqnum: 4})

	if m.RequestStart() {
		t.Fatal("first request on a late equipment session should raise the reminder")
	}
	if !m.Awaiting() {
		t.Fatal("reminder should be showing")
	}
	if !strings.Contains(m.View(), "Headset check") {
		t.Error("view should render the headset reminder")
	}
	if !m.RequestStart() {
		t.Error("second request should start the session")
	}
}

func TestDismissHidesReminder(t *testing.T) {
	m := New(&session.Session{Seqnum: 4})
	m.RequestStart()
	m.Dismiss()
	if m.Awaiting() {
		t.Error("dismiss should hide the reminder")
	}
}

func TestCopyVariesByEquipment(t *testing.T) {
	with := New(&session.Session{Seqnum: 1})
	if !strings.Contains(with.View(), "headset") {
		t.Error("equipment session copy should mention the headset")
	}

	without := New(&session.Session{Seqnum: 1, NoEquipment: true})
	if !strings.Contains(without.View(), "without the headset") {
		t.Error("no-equipment session copy should say no headset is needed")
	}
}
