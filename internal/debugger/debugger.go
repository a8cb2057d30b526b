// Package debugger is the command facade over the GDB controller: it gates
// operations on the inferior state, composes multi-step conveniences, and
// owns the console command vocabulary.
package debugger

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mcptools/gdbmcp/internal/gdb"
	"github.com/mcptools/gdbmcp/internal/mi"
)

// Debugger wraps one controller. Precondition violations short-circuit
// before any I/O and come back as failed outcomes, never as errors.
type Debugger struct {
	ctrl *gdb.Controller
	log  *zap.SugaredLogger
}

func New(ctrl *gdb.Controller, log *zap.SugaredLogger) *Debugger {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Debugger{ctrl: ctrl, log: log}
}

// State returns the current inferior state.
func (d *Debugger) State() gdb.State {
	return d.ctrl.State()
}

// InferiorPID returns the tracked inferior process id, 0 when unknown.
func (d *Debugger) InferiorPID() int {
	return d.ctrl.Machine().PID()
}

// Execute dispatches a raw console command. "interrupt" is routed to the
// signal path, which is not a command on the pipe.
func (d *Debugger) Execute(command string) gdb.Outcome {
	if strings.TrimSpace(command) == "interrupt" {
		return d.Interrupt()
	}
	return d.ctrl.Execute(command)
}

// Interrupt signals the inferior regardless of state.
func (d *Debugger) Interrupt() gdb.Outcome {
	return d.ctrl.Interrupt()
}

// LoadBinary points the debugger at an executable. A successful load resets
// the inferior to stopped, leaving a previous exited state behind.
func (d *Debugger) LoadBinary(path string) gdb.Outcome {
	return d.resetting(d.ctrl.Execute("file " + path))
}

// ConnectRemote attaches to a gdbserver-style remote target.
func (d *Debugger) ConnectRemote(target string) gdb.Outcome {
	return d.resetting(d.ctrl.Execute("target remote " + target))
}

// SetArgs sets the inferior argument string, the "set args <poc>" path.
func (d *Debugger) SetArgs(path string) gdb.Outcome {
	return d.resetting(d.ctrl.Execute("set args " + path))
}

func (d *Debugger) resetting(out gdb.Outcome) gdb.Outcome {
	if out.Success {
		d.ctrl.Machine().Force(gdb.StateStopped)
		out.State = gdb.StateStopped
	}
	return out
}

// Run starts the inferior. With a non-empty args string it first sets a
// breakpoint there and issues a continue, short-circuiting on the first
// failed sub-step. start selects "start" (stop at entry) over "run".
func (d *Debugger) Run(args string, start bool) gdb.Outcome {
	if args != "" {
		if out := d.ctrl.Execute("b " + args); !out.Success {
			return out
		}
		if out := d.ctrl.Execute("continue"); !out.Success {
			return out
		}
	}
	command := "run"
	if start {
		command = "start"
	}
	return d.ctrl.Execute(command)
}

// Step dispatches one stepping verb. Stepping requires a stopped inferior.
func (d *Debugger) Step(verb StepVerb) gdb.Outcome {
	command := verb.Command()
	if s := d.State(); s != gdb.StateStopped {
		return d.gated(command, fmt.Sprintf("cannot execute %q while inferior is %s", command, s))
	}
	return d.ctrl.Execute(command)
}

// Finish runs until the current function returns. Like the raw execute
// path it is not state-gated.
func (d *Debugger) Finish() gdb.Outcome {
	return d.ctrl.Execute("finish")
}

// Context fetches one pwndbg context pane; requires a stopped inferior.
func (d *Debugger) Context(kind ContextKind) gdb.Outcome {
	command := "context " + string(kind)
	if s := d.State(); s != gdb.StateStopped {
		return d.gated(command, fmt.Sprintf("cannot get context while inferior is %s", s))
	}
	return d.ctrl.Execute(command)
}

// ContextAll fans out to every context pane, never short-circuiting on a
// single failed pane.
func (d *Debugger) ContextAll() map[string]gdb.Outcome {
	return lo.SliceToMap(ContextKinds(), func(kind ContextKind) (string, gdb.Outcome) {
		return string(kind), d.Context(kind)
	})
}

// SetBreakpoint sets a breakpoint, optionally conditional. The condition is
// quoted with backslash escaping so quote characters cannot produce a
// malformed wire command.
func (d *Debugger) SetBreakpoint(location, condition string) gdb.Outcome {
	command := "b " + location
	if condition != "" {
		command = fmt.Sprintf("b %s if %s", location, quoteCondition(condition))
	}
	return d.ctrl.Execute(command)
}

func quoteCondition(cond string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(cond) + `"`
}

// ListBreakpoints re-queries the debugger; breakpoint metadata is never
// cached locally, the debugger's numbering is authoritative.
func (d *Debugger) ListBreakpoints() gdb.Outcome {
	return d.ctrl.Execute("info breakpoints")
}

// DeleteBreakpoint deletes by debugger-assigned number. Unknown numbers
// surface as the debugger's own ^error result.
func (d *Debugger) DeleteBreakpoint(number int) gdb.Outcome {
	return d.ctrl.Execute(fmt.Sprintf("delete %d", number))
}

// ToggleBreakpoint enables or disables by number.
func (d *Debugger) ToggleBreakpoint(number int, enable bool) gdb.Outcome {
	action := "disable"
	if enable {
		action = "enable"
	}
	return d.ctrl.Execute(fmt.Sprintf("%s breakpoints %d", action, number))
}

// ReadMemory reads size bytes at address; introspection requires a stopped
// inferior.
func (d *Debugger) ReadMemory(address string, size int, format MemoryFormat) gdb.Outcome {
	var command string
	switch format {
	case MemoryString:
		command = fmt.Sprintf("x/s %s", address)
	case MemoryRaw:
		command = fmt.Sprintf("x/%db %s", size, address)
	default:
		command = fmt.Sprintf("hexdump %s %d", address, size)
	}
	if s := d.State(); s != gdb.StateStopped {
		return d.gated(command, fmt.Sprintf("cannot read memory while inferior is %s", s))
	}
	return d.ctrl.Execute(command)
}

// Disassemble disassembles at address; requires a stopped inferior.
func (d *Debugger) Disassemble(address string) gdb.Outcome {
	command := "disassemble " + address
	if s := d.State(); s != gdb.StateStopped {
		return d.gated(command, fmt.Sprintf("cannot disassemble while inferior is %s", s))
	}
	return d.ctrl.Execute(command)
}

// gated is the structured failure for a precondition violation: no line is
// written to the subprocess.
func (d *Debugger) gated(command, reason string) gdb.Outcome {
	d.log.Debugw("gated", "command", command, "state", d.State())
	return gdb.Outcome{
		Command:   command,
		Responses: []mi.Record{},
		Success:   false,
		State:     d.State(),
		Error:     reason,
	}
}

// Close terminates the underlying subprocess.
func (d *Debugger) Close() error {
	return d.ctrl.Close()
}
