// Package cache persists a versioned snapshot of in-progress session
// state so the companion survives a restart without losing its place.
// The snapshot is a hint, never truth: on load it is reconciled against
// the backend, and any conflict resolves in the server's favor.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drbiga/lsuadhd-companion/internal/session"
)

const (
	// snapshotVersion is bumped when the schema changes; snapshots
	// with any other version are discarded.
	snapshotVersion = 1

	snapshotFileName = "session-cache.json"
	appDirName       = "lsuadhd-companion"
)

// Snapshot is the durable copy of the lifecycle state, written after
// every externally visible transition.
type Snapshot struct {
	Version           int               `json:"version"`
	NextSession       *session.Session  `json:"nextSession"`
	RemainingSessions []session.Session `json:"remainingSessions"`
	SessionHasStarted bool              `json:"sessionHasStarted"`
	Stage             session.Stage     `json:"stage"`
	HasNextSession    session.NextState `json:"hasNextSession"`
	SavedAt           time.Time         `json:"savedAt"`
}

// Sane rejects snapshots that fail basic shape checks or whose stage
// would regress behind freshly fetched authoritative state. Server
// truth always wins on conflict.
func (s *Snapshot) Sane(authoritative session.Stage) bool {
	if s.Version != snapshotVersion {
		return false
	}
	if s.SessionHasStarted && !s.Stage.Known() {
		return false
	}
	if authoritative.Known() && s.Stage.Known() && authoritative.Before(s.Stage) {
		// Cached stage is ahead of what the server says: stale garbage.
		return false
	}
	return true
}

// Store reads and writes the snapshot file.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, or at the default XDG state
// path when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &Store{dir: dir}
}

// Path returns the full path to the snapshot file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, snapshotFileName)
}

// Load reads the snapshot. A missing, malformed or wrong-version file
// is a cache miss, never an error: corrupted local state must not take
// the app down when the server can supply the truth.
func (s *Store) Load() (*Snapshot, bool) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Msg("discarding corrupted session snapshot")
		s.Invalidate()
		return nil, false
	}
	if snap.Version != snapshotVersion {
		log.Warn().Int("version", snap.Version).Msg("discarding snapshot with unknown version")
		s.Invalidate()
		return nil, false
	}
	return &snap, true
}

// Save writes the snapshot atomically (temp file then rename).
func (s *Store) Save(snap *Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	snap.Version = snapshotVersion
	snap.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".session-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming snapshot: %w", err)
	}
	committed = true

	return nil
}

// Invalidate removes the snapshot. Removing an already-absent snapshot
// is fine.
func (s *Store) Invalidate() {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not remove session snapshot")
	}
}

// defaultStateDir returns ~/.local/state/lsuadhd-companion, respecting
// XDG_STATE_HOME if set.
func defaultStateDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
