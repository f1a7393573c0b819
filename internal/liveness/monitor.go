// Package liveness tracks whether a connected client still answers pings.
package liveness

import (
	"log/slog"
	"time"
)

// DefaultInterval is the probe period used when none is configured.
const DefaultInterval = 15 * time.Second

// State is the advisory responsiveness of one client.
type State int

const (
	Responsive State = iota
	Unresponsive
)

func (s State) String() string {
	if s == Unresponsive {
		return "unresponsive"
	}
	return "responsive"
}

// Observer is told about state transitions so it can show or hide a
// "not responding" affordance. It is never asked to disconnect anyone.
type Observer interface {
	ClientBecameUnresponsive(clientID int)
	ClientBecameResponsive(clientID int)
}

// NopObserver ignores every transition.
type NopObserver struct{}

func (NopObserver) ClientBecameUnresponsive(int) {}
func (NopObserver) ClientBecameResponsive(int)   {}

// Monitor is the per-connection probe state machine. It is not safe for
// concurrent use; the owner drives Tick and Ack from one goroutine.
type Monitor struct {
	clientID int
	probe    func()
	observer Observer
	logger   *slog.Logger

	state    State
	awaiting bool
	sentAt   time.Time
	now      func() time.Time
}

// New returns a Responsive monitor. probe is invoked on every tick that
// should send a Ping to the client.
func New(clientID int, probe func(), observer Observer, logger *slog.Logger) *Monitor {
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		clientID: clientID,
		probe:    probe,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

func (m *Monitor) State() State       { return m.state }
func (m *Monitor) IsResponsive() bool { return m.state == Responsive }

// Awaiting reports whether a probe is outstanding.
func (m *Monitor) Awaiting() bool { return m.awaiting }

// Tick advances the monitor by one probe interval. If the previous probe was
// not acknowledged the client becomes Unresponsive; no new probe is sent
// until the outstanding one is answered.
func (m *Monitor) Tick() {
	if m.awaiting {
		if m.state == Responsive {
			m.state = Unresponsive
			m.logger.Warn("client stopped responding",
				"client_id", m.clientID,
				"since", m.sentAt)
			m.observer.ClientBecameUnresponsive(m.clientID)
		}
		return
	}
	m.awaiting = true
	m.sentAt = m.now()
	if m.probe != nil {
		m.probe()
	}
}

// Ack records a Pong. Acks without an outstanding probe are ignored.
func (m *Monitor) Ack() {
	if !m.awaiting {
		return
	}
	m.awaiting = false
	if m.state == Unresponsive {
		m.state = Responsive
		m.logger.Info("client responsive again",
			"client_id", m.clientID,
			"latency", m.now().Sub(m.sentAt))
		m.observer.ClientBecameResponsive(m.clientID)
	}
}
