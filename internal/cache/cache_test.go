package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drbiga/lsuadhd-companion/internal/session"
)

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	in := &Snapshot{
		NextSession:       &session.Session{Seqnum: 3, Stage: session.StageHomework, HasFeedback: true},
		RemainingSessions: []session.Session{{Seqnum: 3}, {Seqnum: 4}},
		SessionHasStarted: true,
		Stage:             session.StageHomework,
		HasNextSession:    session.NextAvailable,
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, ok := s.Load()
	if !ok {
		t.Fatal("Load() reported a miss after Save()")
	}
	if out.NextSession == nil || out.NextSession.Seqnum != 3 {
		t.Errorf("NextSession = %+v", out.NextSession)
	}
	if !out.SessionHasStarted || out.Stage != session.StageHomework {
		t.Errorf("started=%v stage=%s", out.SessionHasStarted, out.Stage)
	}
	if out.HasNextSession != session.NextAvailable || len(out.RemainingSessions) != 2 {
		t.Errorf("tri-state=%d remaining=%d", out.HasNextSession, len(out.RemainingSessions))
	}
}

func TestStore_MissingFile(t *testing.T) {
	if _, ok := NewStore(t.TempDir()).Load(); ok {
		t.Error("Load() on empty dir should be a miss")
	}
}

func TestStore_CorruptedSnapshotIsMiss(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := os.WriteFile(s.Path(), []byte(`{"version":1,"stage":`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Load(); ok {
		t.Error("corrupted snapshot must read as a miss")
	}
	// And the garbage is cleaned up so the next load is a clean miss.
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("corrupted snapshot should be removed")
	}
}

func TestStore_WrongVersionIsMiss(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := os.WriteFile(s.Path(), []byte(`{"version":99,"stage":"homework"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Load(); ok {
		t.Error("unknown snapshot version must read as a miss")
	}
}

func TestStore_Invalidate(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Save(&Snapshot{Stage: session.StageWaiting}); err != nil {
		t.Fatal(err)
	}
	s.Invalidate()
	if _, ok := s.Load(); ok {
		t.Error("Load() after Invalidate() should miss")
	}
	s.Invalidate() // absent snapshot: no panic, no error
}

func TestSnapshot_Sane(t *testing.T) {
	tests := []struct {
		name          string
		snap          Snapshot
		authoritative session.Stage
		want          bool
	}{
		{
			name:          "matching stage",
			snap:          Snapshot{Version: snapshotVersion, SessionHasStarted: true, Stage: session.StageHomework},
			authoritative: session.StageHomework,
			want:          true,
		},
		{
			name:          "server ahead of cache is fine",
			snap:          Snapshot{Version: snapshotVersion, SessionHasStarted: true, Stage: session.StageReadcomp},
			authoritative: session.StageSurvey,
			want:          true,
		},
		{
			name:          "cache ahead of server is rejected",
			snap:          Snapshot{Version: snapshotVersion, SessionHasStarted: true, Stage: session.StageSurvey},
			authoritative: session.StageReadcomp,
			want:          false,
		},
		{
			name:          "started without a stage is rejected",
			snap:          Snapshot{Version: snapshotVersion, SessionHasStarted: true, Stage: ""},
			authoritative: session.StageReadcomp,
			want:          false,
		},
		{
			name:          "wrong version is rejected",
			snap:          Snapshot{Version: 0, Stage: session.StageWaiting},
			authoritative: session.StageWaiting,
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Sane(tt.authoritative); got != tt.want {
				t.Errorf("Sane() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_PathAndDefaultDir(t *testing.T) {
	s := NewStore("/tmp/x")
	if s.Path() != filepath.Join("/tmp/x", snapshotFileName) {
		t.Errorf("Path() = %q", s.Path())
	}
	if d := NewStore("").dir; filepath.Base(d) != appDirName {
		t.Errorf("default dir = %q", d)
	}
}
