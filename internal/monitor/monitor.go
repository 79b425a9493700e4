// Package monitor keeps watch over backend reachability. It probes the
// health endpoint on an interval that adapts to what it sees: long
// while the backend answers, sub-second-to-seconds while it does not,
// so a recovering backend is picked up with minimal lost session time.
package monitor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

// Event tells the owner what changed on this update.
type Event int

const (
	// EventNone: nothing of interest.
	EventNone Event = iota
	// EventWentDown fires once on the reachable→unreachable edge. The
	// owner shows the outage screen and purges the snapshot cache.
	EventWentDown
	// EventBackUp fires once on the unreachable→reachable edge. The
	// owner may render the app again; resume side effects wait for
	// EventRecovered.
	EventBackUp
	// EventRecovered fires after the settle delay that follows
	// EventBackUp. The owner runs its resume side effects now.
	EventRecovered
)

type probeTickMsg struct{ gen int }
type probeResultMsg struct {
	gen int
	err error
}
type settleMsg struct{ gen int }

// Monitor schedules health probes and tracks the backend-down flag.
// The generation counter is the timer discipline: every state change
// bumps it, and messages carrying an older generation are discarded,
// so a stale retry timer can never double-fire against fresh state.
type Monitor struct {
	probe func() error

	healthyInterval time.Duration
	downInterval    time.Duration
	settleDelay     time.Duration

	down       bool
	lastFailed bool
	gen        int
}

// New creates a monitor around the given probe (typically
// Backend.Health).
func New(probe func() error, healthyInterval, downInterval, settleDelay time.Duration) *Monitor {
	return &Monitor{
		probe:           probe,
		healthyInterval: healthyInterval,
		downInterval:    downInterval,
		settleDelay:     settleDelay,
	}
}

// Down reports whether the backend is currently unreachable.
func (m *Monitor) Down() bool { return m.down }

// Start returns the command that runs the first probe immediately.
func (m *Monitor) Start() tea.Cmd {
	return m.runProbe(m.gen)
}

// Update handles the monitor's own messages. Unrelated messages come
// back as (nil, EventNone).
func (m *Monitor) Update(msg tea.Msg) (tea.Cmd, Event) {
	switch msg := msg.(type) {
	case probeTickMsg:
		if msg.gen != m.gen {
			return nil, EventNone
		}
		return m.runProbe(m.gen), EventNone

	case probeResultMsg:
		if msg.gen != m.gen {
			return nil, EventNone
		}
		m.gen++
		if msg.err != nil {
			wasDown := m.down
			m.down = true
			m.lastFailed = true
			if !wasDown {
				log.Warn().Err(msg.err).Msg("backend unreachable")
			}
			cmd := m.tick(m.downInterval, m.gen)
			if !wasDown {
				return cmd, EventWentDown
			}
			return cmd, EventNone
		}

		recovering := m.lastFailed
		m.down = false
		m.lastFailed = false
		cmds := []tea.Cmd{m.tick(m.healthyInterval, m.gen)}
		if recovering {
			log.Info().Msg("backend reachable again")
			cmds = append(cmds, m.settle(m.gen))
			return tea.Batch(cmds...), EventBackUp
		}
		return cmds[0], EventNone

	case settleMsg:
		if msg.gen != m.gen {
			return nil, EventNone
		}
		return nil, EventRecovered
	}
	return nil, EventNone
}

func (m *Monitor) runProbe(gen int) tea.Cmd {
	return func() tea.Msg {
		return probeResultMsg{gen: gen, err: m.probe()}
	}
}

func (m *Monitor) tick(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return probeTickMsg{gen: gen}
	})
}

func (m *Monitor) settle(gen int) tea.Cmd {
	return tea.Tick(m.settleDelay, func(time.Time) tea.Msg {
		return settleMsg{gen: gen}
	})
}
