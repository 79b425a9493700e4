package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drbiga/lsuadhd-companion/internal/session"
)

func TestBackend_RemainingSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session_execution/student/alice/remaining_sessions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		json.NewEncoder(w).Encode([]session.Session{{Seqnum: 1, Stage: session.StageWaiting}})
	}))
	defer srv.Close()

	b := NewBackend(srv.URL, "tok")
	sessions, err := b.RemainingSessions("alice")
	if err != nil {
		t.Fatalf("RemainingSessions() error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Seqnum != 1 {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestBackend_Participant_ActiveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("student_name") != "alice" {
			t.Errorf("student_name = %q", r.URL.Query().Get("student_name"))
		}
		json.NewEncoder(w).Encode(session.Participant{
			Name:          "alice",
			ActiveSession: &session.Session{Seqnum: 2, Stage: session.StageHomework},
		})
	}))
	defer srv.Close()

	p, err := NewBackend(srv.URL, "").Participant("alice")
	if err != nil {
		t.Fatalf("Participant() error: %v", err)
	}
	if p.ActiveSession == nil || p.ActiveSession.Seqnum != 2 {
		t.Errorf("ActiveSession = %+v", p.ActiveSession)
	}
}

func TestBackend_Participant_NullActiveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"alice","sessions":[],"sessions_analytics":[],"active_session":null}`))
	}))
	defer srv.Close()

	p, err := NewBackend(srv.URL, "").Participant("alice")
	if err != nil {
		t.Fatalf("Participant() error: %v", err)
	}
	if p.ActiveSession != nil {
		t.Error("ActiveSession should be nil")
	}
}

func TestBackend_StartSessionMethods(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewEncoder(w).Encode(session.Session{Seqnum: 1, Stage: session.StageWaiting})
	}))
	defer srv.Close()
	b := NewBackend(srv.URL, "")

	if _, err := b.StartSession("alice"); err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/session_execution/student/alice/session" {
		t.Errorf("start: %s %s", gotMethod, gotPath)
	}

	if err := b.StartHomework("alice"); err != nil {
		t.Fatalf("StartHomework() error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/session_execution/student/alice/session/homework" {
		t.Errorf("homework: %s %s", gotMethod, gotPath)
	}

	if _, err := b.FinishSession("alice"); err != nil {
		t.Fatalf("FinishSession() error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/session_execution/student/alice/session/finished" {
		t.Errorf("finish: %s %s", gotMethod, gotPath)
	}
}

func TestBackend_StartSession_ErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":{"message":"no sessions left"}}`, http.StatusConflict)
	}))
	defer srv.Close()

	if _, err := NewBackend(srv.URL, "").StartSession("alice"); err == nil {
		t.Error("expected error from failed start call")
	}
}

func TestBackend_Progress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stage":"readcomp","remaining_time":480}`))
	}))
	defer srv.Close()

	p, err := NewBackend(srv.URL, "").Progress("alice")
	if err != nil {
		t.Fatalf("Progress() error: %v", err)
	}
	if p.Stage != session.StageReadcomp || p.RemainingSeconds != 480 {
		t.Errorf("progress = %+v", p)
	}
}

func TestBackend_Health(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthcheck" {
			t.Errorf("path = %q", r.URL.Path)
		}
	}))
	defer up.Close()
	if err := NewBackend(up.URL, "").Health(); err != nil {
		t.Errorf("Health() on healthy backend: %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	if err := NewBackend(down.URL, "").Health(); err == nil {
		t.Error("Health() should fail on 503")
	}
}
