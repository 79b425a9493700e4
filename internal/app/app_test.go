package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drbiga/lsuadhd-companion/internal/cache"
	"github.com/drbiga/lsuadhd-companion/internal/client"
	"github.com/drbiga/lsuadhd-companion/internal/config"
	"github.com/drbiga/lsuadhd-companion/internal/monitor"
	"github.com/drbiga/lsuadhd-companion/internal/session"
	"github.com/drbiga/lsuadhd-companion/internal/tablock"
)

func newTestModel(t *testing.T, arbiter *tablock.Arbiter) Model {
	t.Helper()
	return newTestModelStore(t, arbiter, cache.NewStore(t.TempDir()))
}

func newTestModelStore(t *testing.T, arbiter *tablock.Arbiter, store *cache.Store) Model {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if arbiter == nil {
		arbiter = tablock.New(t.TempDir(), tablock.NewToken(), false)
	}

	m := New(cfg, "student1", Deps{
		Backend: client.NewBackend("http://localhost:1", "token"),
		Feed:    client.NewProgressFeed("ws://localhost:1", "token"),
		Agent:   client.NewAgent("http://localhost:1"),
		Device:  client.NewFeedbackDevice("http://localhost:1"),
		Survey:  client.NewSurvey("http://localhost:1", "token"),
		Store:   store,
		Arbiter: arbiter,
	})
	m.width = 80
	m.height = 24
	return m
}

func update(t *testing.T, m Model, msg interface{}) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestPrimaryStartsActive(t *testing.T) {
	m := newTestModel(t, nil)
	if m.screen == ScreenMoved {
		t.Fatal("sole instance should come up as primary, not moved")
	}
	if m.Init() == nil {
		t.Error("primary should start the monitor and initial fetches")
	}
}

func TestDemotedInstanceStartsInert(t *testing.T) {
	dir := t.TempDir()
	primary := tablock.New(dir, tablock.NewToken(), false)
	if primary.Startup() {
		t.Fatal("first instance should come up as primary")
	}

	m := newTestModel(t, tablock.New(dir, tablock.NewToken(), false))
	if m.screen != ScreenMoved {
		t.Fatalf("screen = %d, want ScreenMoved", m.screen)
	}
	if m.Init() != nil {
		t.Error("a demoted instance should start nothing")
	}
	if !strings.Contains(m.View(), "Session moved") {
		t.Error("moved screen should say the session moved")
	}
}

func TestResolveAllDone(t *testing.T) {
	m := newTestModel(t, nil)

	m = update(t, m, participantMsg{p: &session.Participant{Name: "student1"}})
	if m.screen != ScreenLoading {
		t.Fatalf("screen = %d before remaining fetch, want ScreenLoading", m.screen)
	}

	m = update(t, m, remainingMsg{})
	if m.screen != ScreenAllDone {
		t.Fatalf("screen = %d, want ScreenAllDone", m.screen)
	}
	if !strings.Contains(m.View(), "Congratulations") {
		t.Error("all-done screen should congratulate")
	}
}

func TestResolveOpensChecklist(t *testing.T) {
	m := newTestModel(t, nil)

	m = update(t, m, participantMsg{p: &session.Participant{Name: "student1"}})
	m = update(t, m, remainingMsg{sessions: []session.Session{
		{Seqnum: 3, Stage: session.StageWaiting},
		{Seqnum: 1, Stage: session.StageWaiting},
	}})

	if m.screen != ScreenChecklist {
		t.Fatalf("screen = %d, want ScreenChecklist", m.screen)
	}
	if m.res.Next == nil || m.res.Next.Seqnum != 1 {
		t.Errorf("next session = %+v, want seqnum 1", m.res.Next)
	}
}

func TestResumeActiveSession(t *testing.T) {
	m := newTestModel(t, nil)

	active := &session.Session{Seqnum: 2, Stage: session.StageHomework}
	m = update(t, m, participantMsg{p: &session.Participant{
		Name:          "student1",
		ActiveSession: active,
	}})
	m = update(t, m, remainingMsg{sessions: []session.Session{*active}})

	if m.screen != ScreenSession {
		t.Fatalf("screen = %d, want ScreenSession", m.screen)
	}
	if !m.life.Started() {
		t.Error("resumed session should count as started")
	}
}

func TestProgressUpdatesView(t *testing.T) {
	m := newTestModel(t, nil)

	active := &session.Session{Seqnum: 2, Stage: session.StageHomework}
	m = update(t, m, participantMsg{p: &session.Participant{Name: "student1", ActiveSession: active}})
	m = update(t, m, remainingMsg{sessions: []session.Session{*active}})

	m = update(t, m, client.ProgressMsg{Progress: session.Progress{
		Stage:            session.StageHomework,
		RemainingSeconds: 1200,
	}})

	if got := m.life.Progress(); got == nil || got.RemainingSeconds != 1200 {
		t.Fatalf("Progress() = %+v, want 1200s remaining", got)
	}
	if !strings.Contains(m.View(), "20:00") {
		t.Error("session view should show the countdown")
	}
}

func TestOutageShowsOutageScreen(t *testing.T) {
	m := newTestModel(t, nil)

	next, _ := m.handleMonitor(nil, monitor.EventWentDown)
	m = next.(Model)

	if m.screen != ScreenOutage {
		t.Fatalf("screen = %d, want ScreenOutage", m.screen)
	}
	if !strings.Contains(m.View(), "Connection lost") {
		t.Error("outage screen should say the connection was lost")
	}
}

func TestOwnershipTickDemotes(t *testing.T) {
	dir := t.TempDir()
	mine := tablock.New(dir, tablock.NewToken(), false)
	m := newTestModel(t, mine)
	if m.screen == ScreenMoved {
		t.Fatal("first instance should come up as primary")
	}

	// A fresh primary arrives in another process.
	other := tablock.New(dir, tablock.NewToken(), true)
	other.Startup()

	m = update(t, m, ownershipTickMsg{})
	if m.screen != ScreenMoved {
		t.Fatalf("screen = %d after takeover, want ScreenMoved", m.screen)
	}
}

func TestReadcompEnterGatedOnTimeUp(t *testing.T) {
	m := newTestModel(t, nil)

	active := &session.Session{Seqnum: 1, Stage: session.StageReadcomp}
	m = update(t, m, participantMsg{p: &session.Participant{Name: "student1", ActiveSession: active}})
	m = update(t, m, remainingMsg{sessions: []session.Session{*active}})
	m = update(t, m, client.ProgressMsg{Progress: session.Progress{
		Stage:            session.StageReadcomp,
		RemainingSeconds: 90,
	}})

	next, cmd := m.confirmStage()
	m = next.(Model)
	if cmd != nil || m.submitAck {
		t.Fatal("enter with reading time remaining should do nothing")
	}

	m = update(t, m, client.ProgressMsg{Progress: session.Progress{
		Stage:            session.StageReadcomp,
		RemainingSeconds: 0,
	}})

	next, cmd = m.confirmStage()
	m = next.(Model)
	if cmd != nil {
		t.Fatal("first enter after time-up should not submit yet")
	}
	if !m.submitAck || !m.stageView.ConfirmingSubmit {
		t.Fatal("first enter after time-up should arm the submit confirmation")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.submitAck || m.stageView.ConfirmingSubmit {
		t.Fatal("esc should back out of the submit confirmation")
	}

	next, _ = m.confirmStage()
	m = next.(Model)
	next, cmd = m.confirmStage()
	m = next.(Model)
	if cmd == nil {
		t.Fatal("confirming enter should submit the quiz")
	}
	if m.submitAck || m.stageView.ConfirmingSubmit {
		t.Error("confirmation should clear once the quiz is submitted")
	}
}

func TestReadcompAutoDetectPolls(t *testing.T) {
	m := newTestModel(t, nil)
	m.cfg.Survey.AutoDetect = true

	sid := 7
	active := &session.Session{Seqnum: 1, Stage: session.StageReadcomp}
	m = update(t, m, participantMsg{p: &session.Participant{
		Name:          "student1",
		SurveyID:      &sid,
		ActiveSession: active,
	}})
	m = update(t, m, remainingMsg{sessions: []session.Session{*active}})
	m = update(t, m, client.ProgressMsg{Progress: session.Progress{
		Stage:            session.StageReadcomp,
		RemainingSeconds: 300,
	}})

	if !m.surveyPolling {
		t.Fatal("readcomp with auto-detect should poll for the quiz submission")
	}

	next, cmd := m.handleSurveyPollDone(surveyPollDoneMsg{stage: session.StageReadcomp, complete: true})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("a detected quiz submission should advance to homework")
	}
	if m.surveyPolling {
		t.Error("polling should stop once the quiz submission is detected")
	}
	if m.finishing {
		t.Error("a detected quiz submission must not finish the session")
	}
}

func TestSnapshotSeedsStateOnStartup(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	next := &session.Session{Seqnum: 2, Stage: session.StageHomework}
	if err := store.Save(&cache.Snapshot{
		NextSession:       next,
		RemainingSessions: []session.Session{*next},
		SessionHasStarted: true,
		Stage:             session.StageHomework,
		HasNextSession:    session.NextAvailable,
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m := newTestModelStore(t, nil, store)
	if !m.life.Started() {
		t.Fatal("seeded model should know a session was in flight")
	}
	if p := m.life.Progress(); p == nil || p.Stage != session.StageHomework {
		t.Fatalf("Progress() = %+v, want homework from the snapshot", p)
	}
	if m.res.State != session.NextAvailable || len(m.res.Remaining) != 1 {
		t.Errorf("resolution State = %d Remaining = %d, want the snapshot's values",
			m.res.State, len(m.res.Remaining))
	}
	if m.infoBar.Seqnum != 2 {
		t.Errorf("info bar seqnum = %d, want 2 from the snapshot", m.infoBar.Seqnum)
	}

	// The server shows no active session once the fetches land, so the
	// seeded in-flight state must be dropped.
	m = update(t, m, participantMsg{p: &session.Participant{Name: "student1"}})
	m = update(t, m, remainingMsg{sessions: []session.Session{
		{Seqnum: 2, Stage: session.StageWaiting},
	}})
	if m.life.Started() {
		t.Error("server state without an active session should clear the seed")
	}
	if m.screen != ScreenChecklist {
		t.Fatalf("screen = %d, want ScreenChecklist", m.screen)
	}
}

func TestStaleSnapshotInvalidatedOnFetch(t *testing.T) {
	m := newTestModel(t, nil)

	// A snapshot claiming a started session with no active session on
	// the server is stale and must go.
	if err := m.store.Save(&cache.Snapshot{
		SessionHasStarted: true,
		Stage:             session.StageHomework,
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m = update(t, m, participantMsg{p: &session.Participant{Name: "student1"}})
	if _, ok := m.store.Load(); ok {
		t.Error("stale snapshot should have been invalidated")
	}
}
