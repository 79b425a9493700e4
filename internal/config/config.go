// Package config loads the companion configuration: a YAML file with
// defaults for every field, then environment overrides on top. Every
// interval and threshold the session flow depends on lives here rather
// than inline in the code that uses it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Agent    AgentConfig    `yaml:"agent"`
	Feedback FeedbackConfig `yaml:"feedback"`
	Survey   SurveyConfig   `yaml:"survey"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// BackendConfig addresses the session-authority backend. The WebSocket
// URL is derived from BaseURL when left empty.
type BackendConfig struct {
	BaseURL string `yaml:"base_url" env:"BACKEND_BASE_URL"`
	WSURL   string `yaml:"ws_url" env:"BACKEND_WS_URL"`
	Token   string `yaml:"-" env:"BACKEND_TOKEN"`

	// Connectivity monitor probe scheduling. ProbeHealthy is used while
	// the backend answers, ProbeDown while it does not; RecoverySettle
	// is the delay between a recovered probe and the resume side effects.
	ProbeHealthy   time.Duration `yaml:"probe_healthy" env:"PROBE_HEALTHY_INTERVAL"`
	ProbeDown      time.Duration `yaml:"probe_down" env:"PROBE_DOWN_INTERVAL"`
	RecoverySettle time.Duration `yaml:"recovery_settle" env:"RECOVERY_SETTLE"`
}

// AgentConfig addresses the local desktop agent used for passive data
// collection.
type AgentConfig struct {
	BaseURL string `yaml:"base_url" env:"AGENT_BASE_URL"`
}

// FeedbackConfig addresses the stoplight feedback device.
type FeedbackConfig struct {
	BaseURL string `yaml:"base_url" env:"FEEDBACK_BASE_URL"`
}

// SurveyConfig addresses the external survey platform. AutoDetect
// selects between polling for submission and a manual confirmation.
type SurveyConfig struct {
	APIURL       string        `yaml:"api_url" env:"SURVEY_API_URL"`
	APIToken     string        `yaml:"-" env:"SURVEY_API_TOKEN"`
	PollInterval time.Duration `yaml:"poll_interval" env:"SURVEY_POLL_INTERVAL"`
	AutoDetect   bool          `yaml:"auto_detect" env:"SURVEY_AUTO_DETECT"`
}

// SessionConfig carries the session-flow tunables.
type SessionConfig struct {
	// TrackingThreshold is the remaining homework time under which the
	// local agent is told to upload its tracking data.
	TrackingThreshold time.Duration `yaml:"tracking_threshold" env:"TRACKING_THRESHOLD"`
	// GraceDelay is how long after a session finishes the snapshot
	// cache is kept before invalidation.
	GraceDelay time.Duration `yaml:"grace_delay" env:"GRACE_DELAY"`
	// OwnershipPoll is how often an instance re-checks session ownership.
	OwnershipPoll time.Duration `yaml:"ownership_poll" env:"OWNERSHIP_POLL"`
	// Cues is the audio-cue word list for the readiness checklist.
	Cues []string `yaml:"cues"`
	// StateDir overrides the default XDG state directory.
	StateDir string `yaml:"state_dir" env:"STATE_DIR"`
}

type LogConfig struct {
	File  string `yaml:"file" env:"LOG_FILE"`
	MaxMB int    `yaml:"max_mb" env:"LOG_MAX_MB"`
}

// Load reads the YAML file at path (missing file is fine, defaults
// apply) and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			ProbeHealthy:   30 * time.Second,
			ProbeDown:      time.Second,
			RecoverySettle: 2 * time.Second,
		},
		Agent: AgentConfig{
			BaseURL: "http://localhost:8001",
		},
		Feedback: FeedbackConfig{
			BaseURL: "http://localhost:8080",
		},
		Survey: SurveyConfig{
			PollInterval: 15 * time.Second,
			AutoDetect:   true,
		},
		Session: SessionConfig{
			TrackingThreshold: 10 * time.Minute,
			GraceDelay:        5 * time.Second,
			OwnershipPoll:     time.Second,
			Cues:              []string{"dog", "ice cream", "laboratory"},
		},
		Log: LogConfig{
			MaxMB: 10,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}
	return cfg, nil
}
