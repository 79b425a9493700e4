// Package client provides the HTTP and WebSocket clients for the
// external collaborators: the session-authority backend, the local
// desktop agent, the feedback device and the survey platform.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/drbiga/lsuadhd-companion/internal/session"
)

// Backend makes REST calls to the session-authority backend.
type Backend struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewBackend creates a client targeting the given base URL
// (e.g. "http://localhost:8000").
func NewBackend(baseURL, token string) *Backend {
	return &Backend{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Health probes the backend's lightweight health endpoint. Any error
// (transport or non-2xx) means the backend is unreachable.
func (b *Backend) Health() error {
	return b.get("/healthcheck", nil)
}

// RemainingSessions fetches the participant's not-yet-finished
// sessions, ordered by sequence number ascending.
func (b *Backend) RemainingSessions(participant string) ([]session.Session, error) {
	var out []session.Session
	if err := b.get("/session_execution/student/"+url.PathEscape(participant)+"/remaining_sessions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Participant fetches the participant record, including the nullable
// active session used for resume detection.
func (b *Backend) Participant(name string) (*session.Participant, error) {
	var out session.Participant
	path := "/session_execution/student?student_name=" + url.QueryEscape(name)
	if err := b.get(path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartSession tells the backend to begin the participant's next
// session and returns the updated session record.
func (b *Backend) StartSession(participant string) (*session.Session, error) {
	var out session.Session
	if err := b.do(http.MethodPost, "/session_execution/student/"+url.PathEscape(participant)+"/session", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartHomework asks the backend to flip the session into the homework
// stage. The backend owns the stage; the transition itself arrives over
// the push channel.
func (b *Backend) StartHomework(participant string) error {
	return b.do(http.MethodPut, "/session_execution/student/"+url.PathEscape(participant)+"/session/homework", nil, nil)
}

// FinishSession asks the backend to finish the active session and
// returns the updated session record.
func (b *Backend) FinishSession(participant string) (*session.Session, error) {
	var out session.Session
	if err := b.do(http.MethodPut, "/session_execution/student/"+url.PathEscape(participant)+"/session/finished", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Progress fetches the current (stage, remaining time) snapshot. Used
// once at mount before the push channel delivers updates.
func (b *Backend) Progress(participant string) (*session.Progress, error) {
	var out session.Progress
	if err := b.get("/session_execution/student/"+url.PathEscape(participant)+"/session", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *Backend) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return err
	}
	b.setAuth(req)
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (b *Backend) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	b.setAuth(req)
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (b *Backend) setAuth(req *http.Request) {
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
}
