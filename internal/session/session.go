// Package session isolates concurrent debugging conversations: each client
// key owns one GDB subprocess, one state machine, and its own history.
package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/mcptools/gdbmcp/internal/debugger"
	"github.com/mcptools/gdbmcp/internal/gdb"
	"github.com/mcptools/gdbmcp/internal/mi"
)

// HistoryEntry records one dispatched operation and its full outcome.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Result    any       `json:"result"`
}

// AggregateContext is the "context all" result: one outcome per pane, keyed
// by kind, never short-circuited.
type AggregateContext struct {
	Success  bool                   `json:"success"`
	State    gdb.State              `json:"state"`
	Contexts map[string]gdb.Outcome `json:"contexts"`
}

// Info is the serializable snapshot returned by get_session_info.
type Info struct {
	SessionID       string    `json:"session_id"`
	CreatedAt       string    `json:"created_at"`
	BinaryPath      string    `json:"binary_path,omitempty"`
	BinaryLoaded    bool      `json:"binary_loaded"`
	RemoteTarget    string    `json:"remote_target,omitempty"`
	RemoteConnected bool      `json:"remote_connected"`
	PID             int       `json:"pid,omitempty"`
	State           gdb.State `json:"state"`
	CommandCount    int       `json:"command_count"`
	CommandHistory  []string  `json:"command_history"`
}

// Session is one isolated debugging conversation. It owns its debugger
// facade (and therefore its subprocess) exclusively.
type Session struct {
	id        string
	createdAt time.Time
	dbg       *debugger.Debugger
	clk       clock.Clock

	mu              sync.Mutex
	binaryPath      string
	binaryLoaded    bool
	remoteTarget    string
	remoteConnected bool
	history         []HistoryEntry
	names           []string
	lastUsed        time.Time
}

func New(id string, dbg *debugger.Debugger, clk clock.Clock) *Session {
	if clk == nil {
		clk = clock.New()
	}
	return &Session{
		id:        id,
		createdAt: clk.Now(),
		dbg:       dbg,
		clk:       clk,
		lastUsed:  clk.Now(),
	}
}

// ID returns the session key.
func (s *Session) ID() string {
	return s.id
}

// State returns the inferior state of this session's subprocess.
func (s *Session) State() gdb.State {
	return s.dbg.State()
}

// LastUsed returns when the session last dispatched an operation.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) record(command string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clk.Now()
	s.lastUsed = now
	s.history = append(s.history, HistoryEntry{Timestamp: now, Command: command, Result: result})
	s.names = append(s.names, command)
}

// Execute dispatches a raw console command.
func (s *Session) Execute(command string) gdb.Outcome {
	out := s.dbg.Execute(command)
	s.record(out.Command, out)
	return out
}

// SetFile loads a binary for debugging. On success the session remembers
// the path and becomes ready to run.
func (s *Session) SetFile(path string) gdb.Outcome {
	out := s.dbg.LoadBinary(path)
	if out.Success {
		s.mu.Lock()
		s.binaryPath = path
		s.binaryLoaded = true
		s.mu.Unlock()
	}
	s.record(out.Command, out)
	return out
}

// TargetRemote connects to a remote gdbserver. A connected remote counts as
// a loaded target.
func (s *Session) TargetRemote(target string) gdb.Outcome {
	out := s.dbg.ConnectRemote(target)
	if out.Success {
		s.mu.Lock()
		s.remoteTarget = target
		s.remoteConnected = true
		s.binaryLoaded = true
		s.mu.Unlock()
	}
	s.record(out.Command, out)
	return out
}

// SetArgs sets the inferior arguments (the PoC file path).
func (s *Session) SetArgs(path string) gdb.Outcome {
	out := s.dbg.SetArgs(path)
	s.record(out.Command, out)
	return out
}

// Run starts the loaded binary. Refused with a structured failure when
// nothing is loaded yet.
func (s *Session) Run(args string, start bool) gdb.Outcome {
	s.mu.Lock()
	loaded := s.binaryLoaded
	s.mu.Unlock()
	if !loaded {
		out := s.failure("run", "No binary loaded. Use set_file first.")
		s.record("run", out)
		return out
	}
	out := s.dbg.Run(args, start)
	s.record(out.Command, out)
	return out
}

// StepControl dispatches one stepping verb by name or alias.
func (s *Session) StepControl(verb string) gdb.Outcome {
	v, ok := debugger.ParseStepVerb(verb)
	if !ok {
		out := s.failure(verb, "unknown step command "+strconv.Quote(verb))
		s.record(verb, out)
		return out
	}
	out := s.dbg.Step(v)
	s.record(out.Command, out)
	return out
}

// Finish runs until the current function returns.
func (s *Session) Finish() gdb.Outcome {
	out := s.dbg.Finish()
	s.record(out.Command, out)
	return out
}

// Interrupt signals the running inferior.
func (s *Session) Interrupt() gdb.Outcome {
	out := s.dbg.Interrupt()
	s.record(out.Command, out)
	return out
}

// Context returns one debugging context, or the aggregate of every pane
// when kind is "all".
func (s *Session) Context(kind string) any {
	if kind == "all" || kind == "" {
		if st := s.dbg.State(); st != gdb.StateStopped {
			out := s.failure("context all", "cannot get context while inferior is "+string(st))
			s.record("context all", out)
			return out
		}
		agg := AggregateContext{
			Success:  true,
			State:    s.dbg.State(),
			Contexts: s.dbg.ContextAll(),
		}
		s.record("context all", agg)
		return agg
	}

	ck, ok := debugger.ParseContextKind(kind)
	if !ok {
		out := s.failure("context "+kind, "unknown context type "+strconv.Quote(kind))
		s.record(out.Command, out)
		return out
	}
	out := s.dbg.Context(ck)
	s.record(out.Command, out)
	return out
}

// SetBreakpoint sets a breakpoint, optionally conditional.
func (s *Session) SetBreakpoint(location, condition string) gdb.Outcome {
	out := s.dbg.SetBreakpoint(location, condition)
	s.record(out.Command, out)
	return out
}

// ListBreakpoints re-queries the debugger for the authoritative listing.
func (s *Session) ListBreakpoints() gdb.Outcome {
	out := s.dbg.ListBreakpoints()
	s.record(out.Command, out)
	return out
}

// DeleteBreakpoint deletes by number.
func (s *Session) DeleteBreakpoint(number int) gdb.Outcome {
	out := s.dbg.DeleteBreakpoint(number)
	s.record(out.Command, out)
	return out
}

// ToggleBreakpoint enables or disables by number.
func (s *Session) ToggleBreakpoint(number int, enable bool) gdb.Outcome {
	out := s.dbg.ToggleBreakpoint(number, enable)
	s.record(out.Command, out)
	return out
}

// ReadMemory reads size bytes at address in the requested format.
func (s *Session) ReadMemory(address string, size int, format debugger.MemoryFormat) gdb.Outcome {
	out := s.dbg.ReadMemory(address, size, format)
	s.record(out.Command, out)
	return out
}

// Disassemble disassembles at the given address.
func (s *Session) Disassemble(address string) gdb.Outcome {
	out := s.dbg.Disassemble(address)
	s.record(out.Command, out)
	return out
}

// Info snapshots the session for get_session_info.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.names))
	copy(names, s.names)
	return Info{
		SessionID:       s.id,
		CreatedAt:       s.createdAt.UTC().Format(time.RFC3339),
		BinaryPath:      s.binaryPath,
		BinaryLoaded:    s.binaryLoaded,
		RemoteTarget:    s.remoteTarget,
		RemoteConnected: s.remoteConnected,
		PID:             s.dbg.InferiorPID(),
		State:           s.dbg.State(),
		CommandCount:    len(s.history),
		CommandHistory:  names,
	}
}

// Close terminates the owned subprocess.
func (s *Session) Close() error {
	return s.dbg.Close()
}

func (s *Session) failure(command, reason string) gdb.Outcome {
	return gdb.Outcome{
		Command:   command,
		Responses: []mi.Record{},
		Success:   false,
		State:     s.dbg.State(),
		Error:     reason,
	}
}
