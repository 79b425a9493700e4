package checklist

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/drbiga/lsuadhd-companion/internal/client"
)

// Dependency identifies one of the supporting external systems checked
// before a session may start.
type Dependency int

const (
	DepAgent Dependency = iota
	DepAnalytics
	DepDevice
)

// String names the dependency for display.
func (d Dependency) String() string {
	switch d {
	case DepAgent:
		return "local agent"
	case DepAnalytics:
		return "personal analytics"
	case DepDevice:
		return "feedback device"
	default:
		return "unknown"
	}
}

// AgentClient is the slice of the local-agent client the probes need.
type AgentClient interface {
	Ping() error
	Initialize(participant string) error
	CheckAnalytics() error
}

// DeviceClient is the slice of the feedback-device client the probes
// need.
type DeviceClient interface {
	Health() error
}

// ProbeResultMsg reports one dependency's poll outcome.
type ProbeResultMsg struct {
	Dep  Dependency
	Err  error
	Hint string
}

// Probes polls the supporting systems in parallel and aggregates their
// health. Each dependency tracks its own in-flight flag; the aggregate
// Checking state is the OR of them, which is what gates the "verify
// again" action.
type Probes struct {
	participant string
	agent       AgentClient
	device      DeviceClient
	needDevice  bool

	inflight map[Dependency]bool
	healthy  map[Dependency]bool
	hints    map[Dependency]string

	// processCheck looks for the analytics process on this machine to
	// sharpen the remediation hint. Overridable in tests.
	processCheck func() bool
}

// NewProbes creates the poll aggregate. needDevice is false for
// sessions without a feedback device; the device probe then neither
// runs nor blocks readiness.
func NewProbes(participant string, agent AgentClient, device DeviceClient, needDevice bool) *Probes {
	return &Probes{
		participant:  participant,
		agent:        agent,
		device:       device,
		needDevice:   needDevice,
		inflight:     make(map[Dependency]bool),
		healthy:      make(map[Dependency]bool),
		hints:        make(map[Dependency]string),
		processCheck: client.AnalyticsProcessRunning,
	}
}

// Checking reports whether at least one probe is outstanding.
func (p *Probes) Checking() bool {
	for _, v := range p.inflight {
		if v {
			return true
		}
	}
	return false
}

// InFlight reports whether one dependency's probe is outstanding.
func (p *Probes) InFlight(d Dependency) bool { return p.inflight[d] }

// Healthy reports one dependency's last poll outcome.
func (p *Probes) Healthy(d Dependency) bool { return p.healthy[d] }

// Hint returns the remediation hint for an unhealthy dependency.
func (p *Probes) Hint(d Dependency) string { return p.hints[d] }

// Required lists the dependencies that must be healthy for this
// session.
func (p *Probes) Required() []Dependency {
	deps := []Dependency{DepAgent, DepAnalytics}
	if p.needDevice {
		deps = append(deps, DepDevice)
	}
	return deps
}

// Ready reports whether every required dependency answered its most
// recent poll successfully.
func (p *Probes) Ready() bool {
	if p.Checking() {
		return false
	}
	for _, d := range p.Required() {
		if !p.healthy[d] {
			return false
		}
	}
	return true
}

// VerifyAll launches all required probes in parallel.
func (p *Probes) VerifyAll() tea.Cmd {
	var cmds []tea.Cmd
	for _, d := range p.Required() {
		cmds = append(cmds, p.run(d))
	}
	return tea.Batch(cmds...)
}

// Update folds a probe result in and returns any follow-up command.
func (p *Probes) Update(msg tea.Msg) tea.Cmd {
	res, ok := msg.(ProbeResultMsg)
	if !ok {
		return nil
	}
	p.inflight[res.Dep] = false
	p.healthy[res.Dep] = res.Err == nil
	p.hints[res.Dep] = res.Hint
	if res.Err != nil {
		log.Warn().Err(res.Err).Str("dependency", res.Dep.String()).Msg("readiness probe failed")
	}
	return nil
}

func (p *Probes) run(d Dependency) tea.Cmd {
	p.inflight[d] = true
	switch d {
	case DepAgent:
		return func() tea.Msg {
			err := p.agent.Ping()
			if errors.Is(err, client.ErrAgentNotInitialized) {
				// Not a failure: the agent simply has no session yet.
				err = p.agent.Initialize(p.participant)
			}
			hint := ""
			if err != nil {
				hint = "Start the collection agent, then verify again."
			}
			return ProbeResultMsg{Dep: DepAgent, Err: err, Hint: hint}
		}
	case DepAnalytics:
		return func() tea.Msg {
			err := p.agent.CheckAnalytics()
			hint := ""
			if err != nil {
				if p.processCheck() {
					hint = "Personal Analytics is running but not responding. Restart it, then verify again."
				} else {
					hint = "Personal Analytics is not running. Launch it, then verify again."
				}
			}
			return ProbeResultMsg{Dep: DepAnalytics, Err: err, Hint: hint}
		}
	default:
		return func() tea.Msg {
			err := p.device.Health()
			hint := ""
			if err != nil {
				hint = "Check the stoplight device's power and cable, then verify again."
			}
			return ProbeResultMsg{Dep: DepDevice, Err: err, Hint: hint}
		}
	}
}
