package gdb

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/mcptools/gdbmcp/internal/mi"
)

// State is the inferior execution state derived from the notification
// stream.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateExited  State = "exited"
)

// Machine tracks the inferior state from async records. It has no notion of
// a current command: MI notifications arrive asynchronously relative to the
// command that caused them, so transitions depend only on the message.
type Machine struct {
	mu         sync.Mutex
	state      State
	pid        int
	stopReason string
	log        *zap.SugaredLogger
}

func NewMachine(log *zap.SugaredLogger) *Machine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Machine{state: StateIdle, log: log}
}

// Observe applies one async record to the machine. Messages outside the
// transition table are ignored.
func (m *Machine) Observe(rec mi.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch rec.Class {
	case "running":
		m.set(StateRunning)
	case "stopped":
		m.stopReason = "unknown"
		if payload, ok := rec.Payload.(mi.MapValue); ok {
			if reason, ok := payload.GetString("reason"); ok {
				m.stopReason = reason
			}
		}
		m.set(StateStopped)
	case "thread-group-exited":
		m.set(StateExited)
	case "thread-group-started":
		// Attach scenario: remember the inferior pid.
		if payload, ok := rec.Payload.(mi.MapValue); ok {
			if pid, ok := payload.GetString("pid"); ok {
				if n, err := strconv.Atoi(pid); err == nil {
					m.pid = n
				}
			}
		}
	}
}

func (m *Machine) set(next State) {
	if m.state == next {
		return
	}
	m.log.Debugw("inferior state transition", "from", m.state, "to", next, "reason", m.stopReason)
	m.state = next
}

// Current returns the inferior state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Force overrides the state. Used when a successful load/attach resets the
// machine and on transport-level failures.
func (m *Machine) Force(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(s)
}

// PID returns the tracked inferior process id, 0 when unknown.
func (m *Machine) PID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pid
}

// StopReason returns the reason of the most recent stop, "" before any.
func (m *Machine) StopReason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopReason
}
