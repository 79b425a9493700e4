// Package tablock arbitrates session ownership between companion
// instances. The study flow redirects participants into a fresh
// instance; the stale one must stop driving the session immediately.
// Two invariants hold: exactly one instance owns the session, and a
// demoted instance never issues another authoritative call.
//
// Coordination happens through the state directory: an owner file
// names the current primary, and a durable per-token "moved" marker
// pins an instance in the demoted state. Instances poll the owner file
// instead of receiving a broadcast; the poll period is the arbiter's
// reaction latency.
package tablock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

const (
	ownerFileName = "owner.json"
	// ownerStaleAfter is how old an owner heartbeat may be before a
	// starting instance treats the owner as dead and claims the lock.
	ownerStaleAfter = 10 * time.Second
)

// NewToken mints an instance-lifetime ownership token. ULIDs are
// time-ordered and collision-free, which keeps the marker files tidy
// and debuggable.
func NewToken() string {
	return ulid.Make().String()
}

type ownerRecord struct {
	Token     string    `json:"token"`
	PID       int       `json:"pid"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Arbiter tracks this instance's ownership of the session.
type Arbiter struct {
	dir      string
	token    string
	takeover bool
	demoted  bool
}

// New creates an arbiter for the given state directory and instance
// token. takeover marks this instance as the fresh primary arriving
// via redirect: it claims ownership unconditionally and is exempt from
// self-demotion.
func New(dir, token string, takeover bool) *Arbiter {
	return &Arbiter{dir: dir, token: token, takeover: takeover}
}

// Token returns this instance's ownership token.
func (a *Arbiter) Token() string { return a.token }

// Demoted reports whether this instance has been demoted. Once true it
// never becomes false again for the life of the process.
func (a *Arbiter) Demoted() bool { return a.demoted }

// Startup resolves ownership before any session logic runs. It returns
// true when this instance must render the inert "session moved" state
// straight away.
func (a *Arbiter) Startup() bool {
	if a.takeover {
		// Fresh arrival: clear any stale marker for our own token and
		// take the session over. The marker check is bypassed so the
		// arrival cannot demote itself.
		os.Remove(a.markerPath(a.token))
		if err := a.claim(); err != nil {
			log.Warn().Err(err).Msg("could not claim session ownership")
		}
		return false
	}

	if a.markerExists(a.token) {
		a.demoted = true
		return true
	}

	owner, ok := a.readOwner()
	if !ok || time.Since(owner.UpdatedAt) > ownerStaleAfter {
		if err := a.claim(); err != nil {
			log.Warn().Err(err).Msg("could not claim session ownership")
		}
		return false
	}
	if owner.Token != a.token {
		// A live primary exists elsewhere; this instance must not
		// drive the session.
		a.demote()
		return true
	}
	return false
}

// Check is the periodic ownership poll. The owner refreshes its
// heartbeat; anyone else demotes itself durably. It returns true on
// the poll that demotes this instance (and on every poll after).
func (a *Arbiter) Check() bool {
	if a.demoted {
		return true
	}

	owner, ok := a.readOwner()
	switch {
	case !ok:
		// Owner file vanished; reclaim rather than orphan the session.
		if err := a.claim(); err != nil {
			log.Warn().Err(err).Msg("could not reclaim session ownership")
		}
	case owner.Token == a.token:
		if err := a.claim(); err != nil { // heartbeat refresh
			log.Warn().Err(err).Msg("could not refresh ownership heartbeat")
		}
	default:
		a.demote()
		return true
	}
	return false
}

func (a *Arbiter) demote() {
	a.demoted = true
	if err := a.writeMarker(a.token); err != nil {
		log.Warn().Err(err).Msg("could not persist moved marker")
	}
	log.Info().Str("token", a.token).Msg("session moved to another instance")
}

// claim writes the owner file atomically with this instance's token.
func (a *Arbiter) claim() error {
	if err := os.MkdirAll(a.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := json.Marshal(ownerRecord{
		Token:     a.token,
		PID:       os.Getpid(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(a.dir, ".owner-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, filepath.Join(a.dir, ownerFileName))
}

func (a *Arbiter) readOwner() (ownerRecord, bool) {
	data, err := os.ReadFile(filepath.Join(a.dir, ownerFileName))
	if err != nil {
		return ownerRecord{}, false
	}
	var rec ownerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ownerRecord{}, false
	}
	return rec, true
}

func (a *Arbiter) markerPath(token string) string {
	return filepath.Join(a.dir, "moved-"+token)
}

func (a *Arbiter) markerExists(token string) bool {
	_, err := os.Stat(a.markerPath(token))
	return err == nil
}

func (a *Arbiter) writeMarker(token string) error {
	if err := os.MkdirAll(a.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(a.markerPath(token), []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o600)
}
