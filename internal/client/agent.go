package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrAgentNotInitialized is returned by Ping when the agent answers
// with its "no session yet" status. The caller should Initialize and
// treat the agent as healthy, not as failed.
var ErrAgentNotInitialized = errors.New("local agent has no session")

// agentNeedsInitStatus is the status code the agent uses to signal an
// uninitialized session.
const agentNeedsInitStatus = http.StatusPreconditionFailed

// Agent talks to the local desktop agent that performs passive
// behavioral data collection, over plain HTTP on a fixed local port.
type Agent struct {
	baseURL string
	client  *http.Client
}

// NewAgent creates a client for the local agent
// (e.g. "http://localhost:8001").
func NewAgent(baseURL string) *Agent {
	return &Agent{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Ping probes the agent's session endpoint. A 412 answer maps to
// ErrAgentNotInitialized; anything else non-2xx is a hard failure.
func (a *Agent) Ping() error {
	resp, err := a.client.Get(a.baseURL + "/session")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == agentNeedsInitStatus {
		return ErrAgentNotInitialized
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("agent ping: %d", resp.StatusCode)
	}
	return nil
}

// Initialize creates the agent-side session for the participant.
func (a *Agent) Initialize(participant string) error {
	return a.post("/session?student_name=" + url.QueryEscape(participant))
}

// CheckAnalytics probes whether the personal-analytics process is
// reachable through the agent.
func (a *Agent) CheckAnalytics() error {
	resp, err := a.client.Get(a.baseURL + "/checkPA")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics check: %d", resp.StatusCode)
	}
	return nil
}

// StartCollection tells the agent to begin passive data collection.
func (a *Agent) StartCollection() error {
	return a.post("/collection")
}

// StopCollection tells the agent to stop passive data collection.
func (a *Agent) StopCollection() error {
	return a.post("/stop_collection")
}

// UploadTracking instructs the agent to upload its tracking database.
func (a *Agent) UploadTracking() error {
	return a.post("/tracking")
}

func (a *Agent) post(path string) error {
	resp, err := a.client.Post(a.baseURL+path, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %d %s", path, resp.StatusCode, string(body))
	}
	return nil
}

// AnalyticsProcessRunning scans the local process table for the
// personal-analytics process. Used to sharpen the remediation hint when
// the HTTP probe fails: "installed but not responding" reads very
// differently from "not running at all".
func AnalyticsProcessRunning() bool {
	procs, err := process.Processes()
	if err != nil {
		return false
	}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(name), "personalanalytics") {
			return true
		}
	}
	return false
}
