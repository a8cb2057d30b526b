package gdb

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mcptools/gdbmcp/internal/mi"
)

// Outcome is the structured result of one dispatched command. Transport and
// protocol failures are folded into it; Execute never returns an error.
type Outcome struct {
	Command   string      `json:"command"`
	Responses []mi.Record `json:"responses"`
	Success   bool        `json:"success"`
	State     State       `json:"state"`
	Error     string      `json:"error,omitempty"`
}

// Options configure a Controller.
type Options struct {
	Transport Transport // required
	Machine   *Machine  // optional, created when nil
	// CommandTimeout bounds the wait for a terminating result record.
	CommandTimeout time.Duration
	// InterruptTimeout bounds the record read that follows an interrupt.
	InterruptTimeout time.Duration
	Logger           *zap.SugaredLogger
}

// Controller dispatches commands over one transport. The MI protocol has no
// request ids, so a per-controller lock keeps exactly one command in flight
// per subprocess; concurrent callers serialize.
type Controller struct {
	mu         sync.Mutex
	transport  Transport
	machine    *Machine
	cmdTimeout time.Duration
	intTimeout time.Duration
	log        *zap.SugaredLogger
}

const (
	defaultCommandTimeout   = 5 * time.Second
	defaultInterruptTimeout = time.Second
)

func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Machine == nil {
		opts.Machine = NewMachine(opts.Logger)
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = defaultCommandTimeout
	}
	if opts.InterruptTimeout <= 0 {
		opts.InterruptTimeout = defaultInterruptTimeout
	}
	return &Controller{
		transport:  opts.Transport,
		machine:    opts.Machine,
		cmdTimeout: opts.CommandTimeout,
		intTimeout: opts.InterruptTimeout,
		log:        opts.Logger,
	}
}

// Machine returns the inferior state machine owned by this controller.
func (c *Controller) Machine() *Machine {
	return c.machine
}

// State returns the current inferior state.
func (c *Controller) State() State {
	return c.machine.Current()
}

// Execute writes one command and collects records until its terminating
// result record or the timeout. Notification records are routed to the
// state machine and excluded from the outcome.
func (c *Controller) Execute(command string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execute(command, c.cmdTimeout)
}

func (c *Controller) execute(command string, timeout time.Duration) Outcome {
	c.log.Debugw("dispatch", "command", command)

	if err := c.transport.WriteLine(command); err != nil {
		return c.transportFailure(command, err)
	}

	records, timedOut, err := c.transport.ReadRecordsUntil(isResult, timeout)

	outcome := Outcome{Command: command, Responses: []mi.Record{}, Success: true}
	sawResult := false
	for _, rec := range records {
		if rec.Kind.Notification() {
			c.machine.Observe(rec)
			continue
		}
		outcome.Responses = append(outcome.Responses, rec)
		if rec.Kind == mi.KindResult {
			sawResult = true
			if rec.Class == "error" {
				outcome.Success = false
				if payload, ok := rec.Payload.(mi.MapValue); ok {
					if msg, ok := payload.GetString("msg"); ok {
						outcome.Error = msg
					}
				}
			}
		}
	}

	switch {
	case err != nil:
		var terr *TransportError
		if errors.As(err, &terr) {
			return c.transportFailure(command, err)
		}
		// Protocol error: the line was garbage but the process is alive.
		// Fail the outcome without touching the state machine.
		outcome.Success = false
		outcome.Error = err.Error()
	case timedOut && !sawResult:
		outcome.Success = false
		outcome.Error = fmt.Sprintf("no result record within %s", timeout)
	}

	outcome.State = c.machine.Current()
	return outcome
}

// transportFailure is the recovery path for a broken pipe or dead process.
// An EOF means the subprocess is gone for good, so the inferior is exited;
// any other transport failure conservatively marks the inferior stopped and
// pokes it with SIGINT in case a write hung while it was running.
func (c *Controller) transportFailure(command string, err error) Outcome {
	c.log.Warnw("transport failure", "command", command, "error", err)
	if errors.Is(err, io.EOF) {
		c.machine.Force(StateExited)
	} else {
		c.machine.Force(StateStopped)
		if ierr := c.transport.Interrupt(); ierr != nil {
			c.log.Debugw("recovery interrupt failed", "error", ierr)
		}
	}
	return Outcome{
		Command:   command,
		Responses: []mi.Record{},
		Success:   false,
		State:     c.machine.Current(),
		Error:     err.Error(),
	}
}

// Interrupt signals the inferior regardless of state, then performs a short
// bounded read for whatever records the stop produces. It takes the same
// lock as Execute so the two never interleave on the pipes.
func (c *Controller) Interrupt() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcome := Outcome{Command: "interrupt", Responses: []mi.Record{}, Success: true}
	if err := c.transport.Interrupt(); err != nil {
		outcome.Success = false
		outcome.Error = err.Error()
		outcome.State = c.machine.Current()
		return outcome
	}

	records, _, err := c.transport.ReadRecordsUntil(nil, c.intTimeout)
	for _, rec := range records {
		if rec.Kind.Notification() {
			c.machine.Observe(rec)
			continue
		}
		outcome.Responses = append(outcome.Responses, rec)
		if rec.Kind == mi.KindResult && rec.Class == "error" {
			outcome.Success = false
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		outcome.Success = false
		outcome.Error = err.Error()
	}

	outcome.State = c.machine.Current()
	return outcome
}

// Close terminates the subprocess.
func (c *Controller) Close() error {
	return c.transport.Close()
}

func isResult(rec mi.Record) bool {
	return rec.Kind == mi.KindResult
}
