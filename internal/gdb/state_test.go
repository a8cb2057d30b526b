package gdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptools/gdbmcp/internal/mi"
)

func observe(t *testing.T, m *Machine, line string) {
	t.Helper()
	rec, err := mi.Parse(line)
	require.NoError(t, err)
	m.Observe(rec)
}

func TestMachineStartsIdle(t *testing.T) {
	m := NewMachine(nil)
	assert.Equal(t, StateIdle, m.Current())
}

func TestMachineRunningStoppedLoop(t *testing.T) {
	m := NewMachine(nil)

	observe(t, m, `*running,thread-id="all"`)
	assert.Equal(t, StateRunning, m.Current())

	observe(t, m, `*stopped,reason="breakpoint-hit",bkptno="1"`)
	assert.Equal(t, StateStopped, m.Current())
	assert.Equal(t, "breakpoint-hit", m.StopReason())

	observe(t, m, `*running,thread-id="all"`)
	observe(t, m, `*stopped,reason="end-stepping-range"`)
	assert.Equal(t, StateStopped, m.Current())
	assert.Equal(t, "end-stepping-range", m.StopReason())
}

func TestMachineStoppedWithoutReason(t *testing.T) {
	m := NewMachine(nil)
	observe(t, m, `*stopped`)
	assert.Equal(t, StateStopped, m.Current())
	assert.Equal(t, "unknown", m.StopReason())
}

func TestMachineExitIsReachedFromAnyState(t *testing.T) {
	for _, setup := range [][]string{
		nil,
		{`*running,thread-id="all"`},
		{`*running,thread-id="all"`, `*stopped,reason="breakpoint-hit"`},
	} {
		m := NewMachine(nil)
		for _, line := range setup {
			observe(t, m, line)
		}
		observe(t, m, `=thread-group-exited,id="i1",exit-code="0"`)
		assert.Equal(t, StateExited, m.Current())
	}
}

func TestMachineThreadGroupStartedCapturesPID(t *testing.T) {
	m := NewMachine(nil)
	observe(t, m, `=thread-group-started,id="i1",pid="2231"`)
	assert.Equal(t, StateIdle, m.Current(), "state must be unchanged")
	assert.Equal(t, 2231, m.PID())
}

func TestMachineIgnoresUnknownMessages(t *testing.T) {
	m := NewMachine(nil)
	observe(t, m, `=breakpoint-created,bkpt={number="1"}`)
	observe(t, m, `=library-loaded,id="/lib/ld.so"`)
	assert.Equal(t, StateIdle, m.Current())
}

func TestMachineForceResetsExited(t *testing.T) {
	m := NewMachine(nil)
	observe(t, m, `=thread-group-exited,id="i1"`)
	require.Equal(t, StateExited, m.Current())

	// A new load/attach resets the terminal state.
	m.Force(StateStopped)
	assert.Equal(t, StateStopped, m.Current())
}
