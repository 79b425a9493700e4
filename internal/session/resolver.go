package session

import "sort"

// NextState is the tri-state outcome of resolving the participant's
// remaining sessions.
type NextState int

const (
	// NextLoading means the remaining-sessions fetch has not resolved.
	NextLoading NextState = iota
	// NextNone means the participant has finished their whole program.
	NextNone
	// NextAvailable means a next session exists and can be started.
	NextAvailable
)

// Resolution is the resolved view of what the participant should do
// next. Active, when non-nil, takes precedence over Next: it is a
// session that was started but never finished and must be resumed
// directly, skipping the readiness checks and the start screen.
type Resolution struct {
	State     NextState
	Next      *Session
	Remaining []Session
	Active    *Session
}

// ResolveRemaining orders the not-yet-finished sessions by sequence
// number and picks the first as the next session.
func ResolveRemaining(remaining []Session) Resolution {
	sorted := make([]Session, len(remaining))
	copy(sorted, remaining)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seqnum < sorted[j].Seqnum })

	if len(sorted) == 0 {
		return Resolution{State: NextNone}
	}
	return Resolution{
		State:     NextAvailable,
		Next:      &sorted[0],
		Remaining: sorted,
	}
}

// WithActive layers the participant record's active session onto a
// resolution. A non-nil active session wins over the next-session pick.
func (r Resolution) WithActive(p *Participant) Resolution {
	if p == nil || p.ActiveSession == nil {
		return r
	}
	r.Active = p.ActiveSession
	r.Next = p.ActiveSession
	r.State = NextAvailable
	return r
}
