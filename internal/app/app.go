// Package app wires the companion together: one root Bubble Tea model
// owning the session lifecycle, the push feed, the connectivity
// monitor, the ownership arbiter and the per-screen views.
package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/drbiga/lsuadhd-companion/internal/cache"
	"github.com/drbiga/lsuadhd-companion/internal/checklist"
	"github.com/drbiga/lsuadhd-companion/internal/client"
	"github.com/drbiga/lsuadhd-companion/internal/config"
	"github.com/drbiga/lsuadhd-companion/internal/monitor"
	"github.com/drbiga/lsuadhd-companion/internal/session"
	"github.com/drbiga/lsuadhd-companion/internal/tablock"
	"github.com/drbiga/lsuadhd-companion/internal/theme"
	"github.com/drbiga/lsuadhd-companion/internal/views/history"
	"github.com/drbiga/lsuadhd-companion/internal/views/info"
	"github.com/drbiga/lsuadhd-companion/internal/views/notice"
	"github.com/drbiga/lsuadhd-companion/internal/views/ready"
	"github.com/drbiga/lsuadhd-companion/internal/views/stageview"
	"github.com/drbiga/lsuadhd-companion/internal/views/start"
)

// Screen identifies which top-level screen is active.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenMoved
	ScreenOutage
	ScreenAllDone
	ScreenChecklist
	ScreenStart
	ScreenSession
)

// --- app-level messages ---

type participantMsg struct {
	p   *session.Participant
	err error
}
type remainingMsg struct {
	sessions []session.Session
	err      error
}
type retryParticipantMsg struct{}
type retryRemainingMsg struct{}
type sessionStartedMsg struct {
	s   *session.Session
	err error
}
type homeworkStartedMsg struct{ err error }
type sessionFinishedMsg struct{ err error }
type progressFetchedMsg struct {
	p   *session.Progress
	err error
}
type collectionMsg struct {
	op  string
	err error
}
type trackingUploadedMsg struct{ err error }
type agentReinitMsg struct{ err error }
type ownershipTickMsg struct{}
type graceTickMsg struct{}
type surveyPollTickMsg struct{}
type surveyPollDoneMsg struct {
	stage    session.Stage
	complete bool
	err      error
}

const fetchRetryWait = 2 * time.Second

// Deps bundles the external clients and stores the app drives.
type Deps struct {
	Backend *client.Backend
	Feed    *client.ProgressFeed
	Agent   *client.Agent
	Device  *client.FeedbackDevice
	Survey  *client.Survey
	Store   *cache.Store
	Arbiter *tablock.Arbiter
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg *config.Config

	backend *client.Backend
	feed    *client.ProgressFeed
	agent   *client.Agent
	device  *client.FeedbackDevice
	survey  *client.Survey
	store   *cache.Store
	arbiter *tablock.Arbiter
	mon     *monitor.Monitor

	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	life        *session.Lifecycle
	participant *session.Participant
	remaining   []session.Session
	res         session.Resolution

	screen            Screen
	loadedParticipant bool
	loadedRemaining   bool
	surveyPolling     bool
	submitAck         bool
	finishing         bool
	lastErr           string

	// Sub-views.
	infoBar     info.Model
	startView   start.Model
	stageView   stageview.Model
	readyView   ready.Model
	historyView history.Model
	loadSpin    spinner.Model
}

// New creates the root model. Ownership arbitration runs here, before
// any session logic: a demoted instance comes up straight on the inert
// moved screen.
func New(cfg *config.Config, participant string, d Deps) Model {
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorCheckRunning)

	sv := stageview.New()
	sv.AutoDetect = cfg.Survey.AutoDetect

	m := Model{
		cfg:     cfg,
		backend: d.Backend,
		feed:    d.Feed,
		agent:   d.Agent,
		device:  d.Device,
		survey:  d.Survey,
		store:   d.Store,
		arbiter: d.Arbiter,
		mon: monitor.New(d.Backend.Health,
			cfg.Backend.ProbeHealthy, cfg.Backend.ProbeDown, cfg.Backend.RecoverySettle),
		ctx:         ctx,
		cancel:      cancel,
		keys:        DefaultKeyMap(),
		life:        session.NewLifecycle(participant, int(cfg.Session.TrackingThreshold.Seconds())),
		infoBar:     info.New(participant),
		stageView:   sv,
		historyView: history.New(),
		loadSpin:    sp,
	}

	// Startup reports true when this instance must come up demoted.
	if d.Arbiter.Startup() {
		m.screen = ScreenMoved
		return m
	}

	// A cached snapshot seeds the state before the first fetch lands;
	// the server responses reconcile it in resolve.
	if snap, ok := d.Store.Load(); ok {
		m.res.Remaining = snap.RemainingSessions
		m.res.State = snap.HasNextSession
		if snap.NextSession != nil {
			m.life.SetNext(snap.NextSession)
			m.infoBar.Seqnum = snap.NextSession.Seqnum
		}
		if snap.SessionHasStarted {
			m.life.MarkStarted()
			m.life.ApplyAuthoritative(snap.Stage)
			m.infoBar.Progress = m.life.Progress()
		}
	}
	return m
}

// Init starts the monitor, the initial fetches and the ownership tick.
// A demoted instance starts nothing.
func (m Model) Init() tea.Cmd {
	if m.screen == ScreenMoved {
		return nil
	}
	return tea.Batch(
		m.mon.Start(),
		m.fetchParticipant(),
		m.fetchRemaining(),
		m.ownershipTick(),
		m.loadSpin.Tick,
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, ev := m.mon.Update(msg); cmd != nil || ev != monitor.EventNone {
		return m.handleMonitor(cmd, ev)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.infoBar.Width = msg.Width
		m.startView.Width = msg.Width
		m.readyView.Width = msg.Width
		m.historyView.Width = msg.Width
		m.stageView.Resize(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		switch m.screen {
		case ScreenLoading:
			var cmd tea.Cmd
			m.loadSpin, cmd = m.loadSpin.Update(msg)
			return m, cmd
		case ScreenChecklist:
			var cmd tea.Cmd
			m.readyView, cmd = m.readyView.Update(msg)
			return m, cmd
		}
		return m, nil

	case checklist.ProbeResultMsg, ready.BeepResultMsg, ready.CuePlayedMsg:
		if m.screen != ScreenChecklist {
			return m, nil
		}
		var cmd tea.Cmd
		m.readyView, cmd = m.readyView.Update(msg)
		return m, cmd

	case ownershipTickMsg:
		return m.handleOwnershipTick()

	case client.FeedConnectedMsg:
		m.life.MarkSubscribed()
		m.infoBar.Connected = true
		return m, m.feed.ReadLoop(m.ctx)

	case client.FeedDownMsg:
		return m.handleFeedDown(msg)

	case client.ProgressMsg:
		return m.applyProgress(msg.Progress, m.feed.ReadLoop(m.ctx))

	case progressFetchedMsg:
		if msg.err != nil || msg.p == nil {
			return m, nil
		}
		return m.applyProgress(*msg.p, nil)

	case participantMsg:
		return m.handleParticipant(msg)

	case remainingMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("remaining sessions fetch failed")
			return m, tea.Tick(fetchRetryWait, func(time.Time) tea.Msg { return retryRemainingMsg{} })
		}
		m.remaining = msg.sessions
		m.loadedRemaining = true
		return m.resolve()

	case retryParticipantMsg:
		return m, m.fetchParticipant()

	case retryRemainingMsg:
		return m, m.fetchRemaining()

	case sessionStartedMsg:
		return m.handleSessionStarted(msg)

	case homeworkStartedMsg:
		if msg.err != nil {
			m.lastErr = "could not submit: " + msg.err.Error()
			return m, nil
		}
		m.lastErr = ""
		return m, m.fetchProgress()

	case sessionFinishedMsg:
		if msg.err != nil {
			m.finishing = false
			m.lastErr = "could not finish the session: " + msg.err.Error()
			return m, nil
		}
		m.lastErr = ""
		return m, m.fetchProgress()

	case collectionMsg:
		if msg.err != nil {
			// Passive collection is best effort; the session goes on.
			log.Warn().Err(msg.err).Str("op", msg.op).Msg("collection call failed")
		}
		return m, nil

	case trackingUploadedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("tracking upload failed")
		}
		return m, nil

	case agentReinitMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("agent re-initialization failed")
		}
		return m, nil

	case graceTickMsg:
		m.store.Invalidate()
		return m, nil

	case surveyPollTickMsg:
		return m.handleSurveyPollTick()

	case surveyPollDoneMsg:
		return m.handleSurveyPollDone(msg)
	}

	return m, nil
}

func (m Model) handleMonitor(cmd tea.Cmd, ev monitor.Event) (tea.Model, tea.Cmd) {
	if m.screen == ScreenMoved {
		return m, nil
	}

	switch ev {
	case monitor.EventWentDown:
		m.store.Invalidate()
		m.feed.Close()
		m.life.MarkUnsubscribed()
		m.infoBar.Connected = false
		m.infoBar.BackendDown = true
		m.screen = ScreenOutage
		return m, cmd

	case monitor.EventBackUp:
		m.infoBar.BackendDown = false
		return m, cmd

	case monitor.EventRecovered:
		return m.resumeAfterOutage(cmd)
	}
	return m, cmd
}

// resumeAfterOutage runs the recovery side effects after the backend
// settles: the local agent is re-initialized, collection resumes when
// a session was in progress, and all server state is re-fetched.
func (m Model) resumeAfterOutage(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.screen = ScreenLoading
	m.loadedParticipant = false
	m.loadedRemaining = false

	cmds := []tea.Cmd{cmd,
		m.reinitAgent(),
		m.fetchParticipant(),
		m.fetchRemaining(),
		m.loadSpin.Tick,
	}
	if m.life.Started() {
		cmds = append(cmds,
			m.startCollection(),
			m.feed.Subscribe(m.ctx, m.life.Participant()),
		)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleOwnershipTick() (tea.Model, tea.Cmd) {
	if m.screen == ScreenMoved {
		return m, nil
	}
	// Check reports true on the poll that demotes this instance.
	if m.arbiter.Check() {
		log.Info().Msg("session moved to another instance")
		m.feed.Close()
		m.life.MarkUnsubscribed()
		m.store.Invalidate()
		m.screen = ScreenMoved
		return m, nil
	}
	return m, m.ownershipTick()
}

func (m Model) handleFeedDown(msg client.FeedDownMsg) (tea.Model, tea.Cmd) {
	if m.screen == ScreenMoved || m.screen == ScreenOutage {
		return m, nil
	}
	log.Warn().Err(msg.Err).Msg("progress feed down")
	m.store.Invalidate()
	m.life.MarkUnsubscribed()
	m.infoBar.Connected = false
	if m.life.Started() && !m.life.Finished() {
		return m, m.feed.Subscribe(m.ctx, m.life.Participant())
	}
	return m, nil
}

func (m Model) handleParticipant(msg participantMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Warn().Err(msg.err).Msg("participant fetch failed")
		return m, tea.Tick(fetchRetryWait, func(time.Time) tea.Msg { return retryParticipantMsg{} })
	}

	m.participant = msg.p
	m.loadedParticipant = true
	m.historyView.SetAnalytics(msg.p.Analytics)

	if snap, ok := m.store.Load(); ok {
		var auth session.Stage
		if msg.p.ActiveSession != nil {
			auth = msg.p.ActiveSession.Stage
		}
		if !snap.Sane(auth) || (snap.SessionHasStarted && msg.p.ActiveSession == nil) {
			m.store.Invalidate()
		}
	}
	return m.resolve()
}

// resolve decides the screen once both initial fetches have landed.
func (m Model) resolve() (tea.Model, tea.Cmd) {
	if !m.loadedParticipant || !m.loadedRemaining {
		return m, nil
	}

	m.res = session.ResolveRemaining(m.remaining).WithActive(m.participant)
	m.saveSnapshot()

	if m.res.Active != nil {
		return m.resume()
	}
	if m.life.Started() {
		// The snapshot seeded a session in flight but the server shows
		// none. The server wins.
		m.life.Reset()
		m.infoBar.Progress = nil
	}
	switch m.res.State {
	case session.NextNone:
		m.screen = ScreenAllDone
	case session.NextAvailable:
		return m.openChecklist()
	default:
		m.screen = ScreenLoading
	}
	return m, nil
}

// resume picks up a session that was started but never finished,
// skipping the readiness checks and the start screen.
func (m Model) resume() (tea.Model, tea.Cmd) {
	active := m.res.Active
	m.life.SetNext(active)
	m.life.MarkStarted()
	m.life.ApplyAuthoritative(active.Stage)
	m.infoBar.Seqnum = active.Seqnum
	m.screen = ScreenSession
	m.saveSnapshot()

	return m, tea.Batch(
		m.feed.Subscribe(m.ctx, m.life.Participant()),
		m.fetchProgress(),
		m.startCollection(),
	)
}

func (m Model) openChecklist() (tea.Model, tea.Cmd) {
	next := m.res.Next
	m.infoBar.Seqnum = next.Seqnum

	machine := checklist.New(next, m.cfg.Session.Cues)
	probes := checklist.NewProbes(m.life.Participant(), m.agent, m.device, next.HasFeedback)
	m.readyView = ready.New(machine, probes, m.device)
	m.readyView.Width = m.width
	m.screen = ScreenChecklist
	return m, m.readyView.Init()
}

func (m Model) handleSessionStarted(msg sessionStartedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.lastErr = "could not start the session: " + msg.err.Error()
		return m, nil
	}

	m.lastErr = ""
	m.life.SetNext(msg.s)
	m.life.MarkStarted()
	m.life.ApplyAuthoritative(msg.s.Stage)
	m.infoBar.Seqnum = msg.s.Seqnum
	m.screen = ScreenSession
	m.saveSnapshot()

	return m, tea.Batch(
		m.feed.Subscribe(m.ctx, m.life.Participant()),
		m.fetchProgress(),
		m.startCollection(),
	)
}

// applyProgress folds one authoritative update into the lifecycle and
// runs whatever side effects the transition demands. followup, when
// non-nil, continues the feed read loop.
func (m Model) applyProgress(p session.Progress, followup tea.Cmd) (tea.Model, tea.Cmd) {
	applied, upload := m.life.ApplyProgress(p)
	if !applied {
		return m, followup
	}

	cur := m.life.Progress()
	m.infoBar.Progress = cur
	m.saveSnapshot()

	cmds := []tea.Cmd{followup}
	if upload {
		cmds = append(cmds, m.uploadTracking())
	}

	switch cur.Stage {
	case session.StageHomework:
		m.submitAck = false
		m.stageView.ConfirmingSubmit = false
		cmds = append(cmds, tea.SetWindowTitle(
			fmt.Sprintf("%s remaining", session.FormatRemaining(cur))))

	case session.StageReadcomp, session.StageSurvey:
		// Both stages end with a form submission that can be detected
		// by polling its completion flag.
		if m.cfg.Survey.AutoDetect && !m.surveyPolling && m.surveyRecordID() != "" {
			m.surveyPolling = true
			cmds = append(cmds, m.surveyPollTickCmd())
		}

	case session.StageFinished:
		m.surveyPolling = false
		cmds = append(cmds,
			m.stopCollection(),
			m.graceTick(),
			tea.SetWindowTitle("Session complete"),
		)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSurveyPollTick() (tea.Model, tea.Cmd) {
	if m.screen != ScreenSession || !m.surveyPolling {
		return m, nil
	}
	p := m.life.Progress()
	if p == nil || (p.Stage != session.StageReadcomp && p.Stage != session.StageSurvey) {
		m.surveyPolling = false
		return m, nil
	}
	m.stageView.Polling = true
	return m, m.pollSurvey()
}

func (m Model) handleSurveyPollDone(msg surveyPollDoneMsg) (tea.Model, tea.Cmd) {
	m.stageView.Polling = false
	if !m.surveyPolling {
		return m, nil
	}
	if msg.err != nil {
		log.Warn().Err(msg.err).Msg("submission poll failed")
		return m, m.surveyPollTickCmd()
	}

	// A completed instrument only counts while the session is still in
	// the stage the poll was issued for.
	cur := m.life.Progress()
	if msg.complete && cur != nil && cur.Stage == msg.stage {
		switch msg.stage {
		case session.StageReadcomp:
			m.surveyPolling = false
			m.submitAck = false
			m.stageView.ConfirmingSubmit = false
			return m, m.startHomework()
		case session.StageSurvey:
			if !m.finishing {
				m.surveyPolling = false
				m.finishing = true
				return m, m.finishSession()
			}
		}
	}
	return m, m.surveyPollTickCmd()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	switch m.screen {
	case ScreenChecklist:
		// Plain letters belong to the checklist inputs, so only
		// ctrl+c quits here.
		var cmd tea.Cmd
		m.readyView, cmd = m.readyView.Update(msg)
		if m.readyView.Done() {
			m.stageView.Goal = m.readyView.Goal()
			m.startView = start.New(m.res.Next)
			m.startView.Width = m.width
			m.screen = ScreenStart
		}
		return m, cmd

	case ScreenStart:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Confirm):
			if m.startView.RequestStart() {
				return m, m.startSession()
			}
			return m, nil
		case key.Matches(msg, m.keys.Back):
			m.startView.Dismiss()
			return m, nil
		}

	case ScreenSession:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Confirm):
			return m.confirmStage()
		case key.Matches(msg, m.keys.Back):
			m.submitAck = false
			m.stageView.ConfirmingSubmit = false
			return m, nil
		}

	default:
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
	}
	return m, nil
}

// confirmStage handles the enter key during a running session. During
// readcomp it only acts once the reading time is up, and asks for a
// second enter confirming the quiz was submitted before moving on to
// homework. During the survey it finishes the session in manual mode.
func (m Model) confirmStage() (tea.Model, tea.Cmd) {
	p := m.life.Progress()
	if p == nil {
		return m, nil
	}
	switch p.Stage {
	case session.StageReadcomp:
		if !stageview.TimeUp(p) {
			return m, nil
		}
		if !m.submitAck {
			m.submitAck = true
			m.stageView.ConfirmingSubmit = true
			return m, nil
		}
		m.submitAck = false
		m.stageView.ConfirmingSubmit = false
		return m, m.startHomework()
	case session.StageSurvey:
		if !m.cfg.Survey.AutoDetect && !m.finishing {
			m.finishing = true
			return m, m.finishSession()
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.feed.Close()
	return m, tea.Quit
}

// View renders the active screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.screen {
	case ScreenMoved:
		return notice.Moved()
	case ScreenOutage:
		return notice.Outage()
	case ScreenLoading:
		return notice.Loading(m.loadSpin.View())
	case ScreenAllDone:
		return lipgloss.JoinVertical(lipgloss.Left,
			notice.AllDone(),
			"",
			m.historyView.View(),
			"",
			theme.StyleDimmed.Render("  q:quit"),
		)
	case ScreenChecklist:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.infoBar.View(),
			m.readyView.View(),
		)
	case ScreenStart:
		sections := []string{m.infoBar.View(), m.startView.View()}
		if m.lastErr != "" {
			sections = append(sections, theme.StyleDanger.Render("  "+m.lastErr))
		}
		sections = append(sections,
			"",
			m.historyView.View(),
			theme.StyleDimmed.Render("  enter:start  q:quit"),
		)
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	case ScreenSession:
		sections := []string{
			m.infoBar.View(),
			m.stageView.View(m.life.Next(), m.life.Progress()),
		}
		if m.lastErr != "" {
			sections = append(sections, theme.StyleDanger.Render("  "+m.lastErr))
		}
		sections = append(sections, theme.StyleDimmed.Render("  q:quit"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}
	return ""
}

// saveSnapshot writes the durable copy of the lifecycle state.
func (m Model) saveSnapshot() {
	var stage session.Stage
	if p := m.life.Progress(); p != nil {
		stage = p.Stage
	}
	snap := &cache.Snapshot{
		NextSession:       m.life.Next(),
		RemainingSessions: m.res.Remaining,
		SessionHasStarted: m.life.Started(),
		Stage:             stage,
		HasNextSession:    m.res.State,
	}
	if err := m.store.Save(snap); err != nil {
		log.Warn().Err(err).Msg("could not save session snapshot")
	}
}

// surveyRecordID returns the participant's survey record ID, or ""
// when none is on file.
func (m Model) surveyRecordID() string {
	if m.participant == nil || m.participant.SurveyID == nil {
		return ""
	}
	return strconv.Itoa(*m.participant.SurveyID)
}

// --- commands ---

func (m Model) fetchParticipant() tea.Cmd {
	backend, name := m.backend, m.life.Participant()
	return func() tea.Msg {
		p, err := backend.Participant(name)
		return participantMsg{p: p, err: err}
	}
}

func (m Model) fetchRemaining() tea.Cmd {
	backend, name := m.backend, m.life.Participant()
	return func() tea.Msg {
		sessions, err := backend.RemainingSessions(name)
		return remainingMsg{sessions: sessions, err: err}
	}
}

func (m Model) fetchProgress() tea.Cmd {
	backend, name := m.backend, m.life.Participant()
	return func() tea.Msg {
		p, err := backend.Progress(name)
		return progressFetchedMsg{p: p, err: err}
	}
}

func (m Model) startSession() tea.Cmd {
	backend, name := m.backend, m.life.Participant()
	return func() tea.Msg {
		s, err := backend.StartSession(name)
		return sessionStartedMsg{s: s, err: err}
	}
}

func (m Model) startHomework() tea.Cmd {
	backend, name := m.backend, m.life.Participant()
	return func() tea.Msg {
		return homeworkStartedMsg{err: backend.StartHomework(name)}
	}
}

func (m Model) finishSession() tea.Cmd {
	backend, name := m.backend, m.life.Participant()
	return func() tea.Msg {
		_, err := backend.FinishSession(name)
		return sessionFinishedMsg{err: err}
	}
}

func (m Model) startCollection() tea.Cmd {
	agent := m.agent
	return func() tea.Msg {
		return collectionMsg{op: "start", err: agent.StartCollection()}
	}
}

func (m Model) stopCollection() tea.Cmd {
	agent := m.agent
	return func() tea.Msg {
		return collectionMsg{op: "stop", err: agent.StopCollection()}
	}
}

func (m Model) uploadTracking() tea.Cmd {
	agent := m.agent
	return func() tea.Msg {
		return trackingUploadedMsg{err: agent.UploadTracking()}
	}
}

func (m Model) reinitAgent() tea.Cmd {
	agent, name := m.agent, m.life.Participant()
	return func() tea.Msg {
		return agentReinitMsg{err: agent.Initialize(name)}
	}
}

// pollSurvey checks the completion flag of the instrument belonging to
// the current stage: the reading quiz during readcomp, the post-session
// survey afterwards.
func (m Model) pollSurvey() tea.Cmd {
	survey := m.survey
	recordID := m.surveyRecordID()
	seqnum := 0
	if s := m.life.Next(); s != nil {
		seqnum = s.Seqnum
	}
	var stage session.Stage
	if p := m.life.Progress(); p != nil {
		stage = p.Stage
	}
	instrument := client.InstrumentFor(string(stage), seqnum)
	return func() tea.Msg {
		complete, err := survey.CheckCompletion(recordID, instrument)
		return surveyPollDoneMsg{stage: stage, complete: complete, err: err}
	}
}

func (m Model) ownershipTick() tea.Cmd {
	return tea.Tick(m.cfg.Session.OwnershipPoll, func(time.Time) tea.Msg {
		return ownershipTickMsg{}
	})
}

func (m Model) graceTick() tea.Cmd {
	return tea.Tick(m.cfg.Session.GraceDelay, func(time.Time) tea.Msg {
		return graceTickMsg{}
	})
}

func (m Model) surveyPollTickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Survey.PollInterval, func(time.Time) tea.Msg {
		return surveyPollTickMsg{}
	})
}
