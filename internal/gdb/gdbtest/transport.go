// Package gdbtest provides in-memory Transport implementations for tests:
// a scripted transport that replays canned MI lines per command, and an
// overlap detector for the one-command-in-flight guarantee.
package gdbtest

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcptools/gdbmcp/internal/mi"
)

// ScriptedTransport replays canned MI lines keyed by the written command.
// Lines for unknown commands come from Default. All fields must be set
// before first use.
type ScriptedTransport struct {
	// Scripts maps a command line to the raw MI lines it produces.
	Scripts map[string][]string
	// Default is replayed for commands without a script entry.
	Default []string
	// InterruptLines are queued when Interrupt is called.
	InterruptLines []string
	// WriteErr, when set, fails every WriteLine.
	WriteErr error
	// InterruptErr, when set, fails every Interrupt.
	InterruptErr error

	mu         sync.Mutex
	pending    []mi.Record
	writes     []string
	interrupts int
	closed     bool
}

func (t *ScriptedTransport) WriteLine(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writes = append(t.writes, text)
	if t.WriteErr != nil {
		return t.WriteErr
	}
	lines, ok := t.Scripts[text]
	if !ok {
		lines = t.Default
	}
	t.queue(lines)
	return nil
}

func (t *ScriptedTransport) queue(lines []string) {
	for _, line := range lines {
		rec, err := mi.Parse(line)
		if err != nil {
			panic("gdbtest: bad scripted line " + line + ": " + err.Error())
		}
		t.pending = append(t.pending, rec)
	}
}

func (t *ScriptedTransport) ReadRecordsUntil(pred func(mi.Record) bool, timeout time.Duration) ([]mi.Record, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []mi.Record{}
	for len(t.pending) > 0 {
		rec := t.pending[0]
		t.pending = t.pending[1:]
		out = append(out, rec)
		if pred != nil && pred(rec) {
			return out, false, nil
		}
	}
	// Drained without a match: a real transport would block until the
	// deadline.
	return out, true, nil
}

func (t *ScriptedTransport) Interrupt() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interrupts++
	if t.InterruptErr != nil {
		return t.InterruptErr
	}
	t.queue(t.InterruptLines)
	return nil
}

func (t *ScriptedTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Writes returns every command line written so far.
func (t *ScriptedTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.writes))
	copy(out, t.writes)
	return out
}

// Interrupts returns how many times Interrupt was called.
func (t *ScriptedTransport) Interrupts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interrupts
}

// Closed reports whether Close was called.
func (t *ScriptedTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// OverlapTransport detects interleaved commands on one transport. Each
// write opens a window that stays open until the matching read completes;
// a second write inside the window records an overlap.
type OverlapTransport struct {
	// Delay widens the race window.
	Delay time.Duration

	inFlight   int32
	overlapped int32
}

func (t *OverlapTransport) WriteLine(string) error {
	if !atomic.CompareAndSwapInt32(&t.inFlight, 0, 1) {
		atomic.StoreInt32(&t.overlapped, 1)
	}
	time.Sleep(t.Delay)
	return nil
}

func (t *OverlapTransport) ReadRecordsUntil(pred func(mi.Record) bool, timeout time.Duration) ([]mi.Record, bool, error) {
	time.Sleep(t.Delay)
	rec, err := mi.Parse("^done")
	if err != nil {
		return nil, false, err
	}
	atomic.StoreInt32(&t.inFlight, 0)
	return []mi.Record{rec}, false, nil
}

func (t *OverlapTransport) Interrupt() error { return nil }

func (t *OverlapTransport) Close() error { return nil }

// Overlapped reports whether two commands ever interleaved.
func (t *OverlapTransport) Overlapped() bool {
	return atomic.LoadInt32(&t.overlapped) == 1
}
