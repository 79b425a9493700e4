package session

import "testing"

func TestResolveRemaining_PicksLowestSeqnum(t *testing.T) {
	r := ResolveRemaining([]Session{{Seqnum: 4}, {Seqnum: 2}, {Seqnum: 7}})
	if r.State != NextAvailable {
		t.Fatalf("State = %d, want NextAvailable", r.State)
	}
	if r.Next.Seqnum != 2 {
		t.Errorf("Next.Seqnum = %d, want 2", r.Next.Seqnum)
	}
	if len(r.Remaining) != 3 || r.Remaining[0].Seqnum != 2 || r.Remaining[2].Seqnum != 7 {
		t.Errorf("Remaining not sorted ascending: %+v", r.Remaining)
	}
}

func TestResolveRemaining_Empty(t *testing.T) {
	r := ResolveRemaining(nil)
	if r.State != NextNone {
		t.Errorf("State = %d, want NextNone", r.State)
	}
	if r.Next != nil {
		t.Error("Next should be nil when nothing remains")
	}
}

func TestResolveRemaining_DoesNotMutateInput(t *testing.T) {
	in := []Session{{Seqnum: 3}, {Seqnum: 1}}
	ResolveRemaining(in)
	if in[0].Seqnum != 3 {
		t.Error("input slice was reordered")
	}
}

func TestWithActive_TakesPrecedence(t *testing.T) {
	active := &Session{Seqnum: 2, Stage: StageHomework}
	r := ResolveRemaining([]Session{{Seqnum: 3}}).WithActive(&Participant{ActiveSession: active})
	if r.Active != active {
		t.Fatal("active session not captured")
	}
	if r.Next != active {
		t.Error("active session must take precedence over the next-session pick")
	}
}

func TestWithActive_NilParticipantOrSession(t *testing.T) {
	base := ResolveRemaining([]Session{{Seqnum: 5}})
	if r := base.WithActive(nil); r.Next.Seqnum != 5 || r.Active != nil {
		t.Error("nil participant must leave the resolution unchanged")
	}
	if r := base.WithActive(&Participant{}); r.Next.Seqnum != 5 || r.Active != nil {
		t.Error("participant without an active session must leave the resolution unchanged")
	}
}
