package session

import "github.com/rs/zerolog/log"

// Lifecycle owns the client-side state of one session from "not yet
// started" to "finished". One Lifecycle is constructed per session
// start (or resume) and torn down when the session ends; nothing here
// is ambient global state.
type Lifecycle struct {
	participant string
	next        *Session
	started     bool
	progress    *Progress

	// uploadFired is sticky: once the tracking-upload condition is met
	// it stays set until Reset, so repeated timer ticks while still in
	// homework never re-trigger the upload.
	uploadFired bool

	// subscribed guards against opening the push channel twice for the
	// same session.
	subscribed bool

	// trackingThresholdSeconds is how far into the homework countdown
	// the tracking upload fires.
	trackingThresholdSeconds int
}

// NewLifecycle creates a lifecycle for the given participant. The
// threshold is the remaining-seconds mark under which, while in
// homework, the tracking upload is initiated.
func NewLifecycle(participant string, trackingThresholdSeconds int) *Lifecycle {
	return &Lifecycle{
		participant:              participant,
		trackingThresholdSeconds: trackingThresholdSeconds,
	}
}

// Participant returns the participant this lifecycle belongs to.
func (l *Lifecycle) Participant() string { return l.participant }

// Next returns the session this lifecycle is (or will be) driving.
func (l *Lifecycle) Next() *Session { return l.next }

// SetNext records the session to drive. Safe to call again when the
// backend returns an updated copy of the same session.
func (l *Lifecycle) SetNext(s *Session) { l.next = s }

// Started reports whether the session is underway.
func (l *Lifecycle) Started() bool { return l.started }

// MarkStarted flips the lifecycle into the running state. Called after
// the backend confirmed the start, or on resume of an active session.
func (l *Lifecycle) MarkStarted() { l.started = true }

// Progress returns the latest authoritative progress, or nil before
// the first update arrives.
func (l *Lifecycle) Progress() *Progress { return l.progress }

// MarkSubscribed records that the push channel is open. It returns
// false when a channel was already open, making a second subscribe a
// no-op for the caller.
func (l *Lifecycle) MarkSubscribed() bool {
	if l.subscribed {
		return false
	}
	l.subscribed = true
	return true
}

// MarkUnsubscribed records that the push channel closed, allowing a
// later resubscribe (e.g. after connectivity recovery).
func (l *Lifecycle) MarkUnsubscribed() { l.subscribed = false }

// Subscribed reports whether the push channel is open.
func (l *Lifecycle) Subscribed() bool { return l.subscribed }

// ApplyProgress folds an inbound progress update into the lifecycle.
// Stage regressions are rejected: the stage feed is monotonic, so an
// update carrying an earlier stage than the one already observed is a
// stale or corrupt message, not a transition.
//
// The returned upload flag is true exactly once per lifecycle: the
// first time the update satisfies the tracking-upload condition
// (homework stage with the countdown under the threshold).
func (l *Lifecycle) ApplyProgress(p Progress) (applied bool, upload bool) {
	if !p.Stage.Known() {
		log.Warn().Str("stage", string(p.Stage)).Msg("discarding progress update with unknown stage")
		return false, false
	}
	if l.progress != nil && p.Stage.Before(l.progress.Stage) {
		log.Warn().
			Str("current", string(l.progress.Stage)).
			Str("incoming", string(p.Stage)).
			Msg("discarding stage regression")
		return false, false
	}

	l.progress = &p

	if !l.uploadFired && p.Stage == StageHomework && p.RemainingSeconds < l.trackingThresholdSeconds {
		l.uploadFired = true
		upload = true
	}
	return true, upload
}

// ApplyAuthoritative overwrites the progress stage from the result of a
// confirmed backend call (finish-session returns the updated record).
// The server committed the transition before responding, so this never
// lets the client run ahead of server truth.
func (l *Lifecycle) ApplyAuthoritative(stage Stage) {
	if !stage.Known() {
		return
	}
	if l.progress == nil {
		l.progress = &Progress{Stage: stage}
		return
	}
	if stage.Before(l.progress.Stage) {
		return
	}
	p := *l.progress
	p.Stage = stage
	l.progress = &p
}

// Finished reports whether the session reached its terminal stage.
func (l *Lifecycle) Finished() bool {
	return l.progress != nil && l.progress.Stage.Terminal()
}

// Reset clears all per-session state at cleanup.
func (l *Lifecycle) Reset() {
	l.next = nil
	l.started = false
	l.progress = nil
	l.uploadFired = false
	l.subscribed = false
}
