// Package gdb drives one GDB subprocess over its MI channel: the raw line
// transport, the command dispatcher, and the inferior state machine fed by
// the asynchronous notification stream.
package gdb

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/mcptools/gdbmcp/internal/mi"
)

// Transport is the raw line-level connection to a debugger subprocess.
type Transport interface {
	// WriteLine writes one command line (the newline is appended).
	WriteLine(text string) error
	// ReadRecordsUntil collects parsed records until one satisfies pred or
	// timeout elapses, returning whatever was collected plus a timed-out
	// flag. A nil pred reads until the timeout. The caller owns recovery
	// on error.
	ReadRecordsUntil(pred func(mi.Record) bool, timeout time.Duration) ([]mi.Record, bool, error)
	// Interrupt delivers SIGINT to the subprocess. This is the only way to
	// regain control over a running inferior.
	Interrupt() error
	Close() error
}

// readItem carries either a parsed record or a protocol error from the pump.
type readItem struct {
	rec mi.Record
	err error
}

// ProcessTransport owns a GDB subprocess and its stdio pipes. A reader
// goroutine parses stdout lines into a channel which ReadRecordsUntil
// drains.
type ProcessTransport struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	items chan readItem
	clk   clock.Clock
	log   *zap.SugaredLogger

	mu     sync.Mutex
	closed bool
}

// SpawnOptions configure the debugger subprocess.
type SpawnOptions struct {
	// Path of the gdb (or pwndbg wrapper) executable. Defaults to "gdb".
	Path string
	// ExtraArgs are appended after the fixed MI interpreter flags.
	ExtraArgs []string
	Clock     clock.Clock
	Logger    *zap.SugaredLogger
}

// Spawn starts the debugger in MI mode and begins pumping its stdout.
func Spawn(opts SpawnOptions) (*ProcessTransport, error) {
	if opts.Path == "" {
		opts.Path = "gdb"
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	args := append([]string{"--interpreter=mi3", "--quiet", "--nh"}, opts.ExtraArgs...)
	cmd := exec.Command(opts.Path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &TransportError{Op: "stdin pipe", Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &TransportError{Op: "stdout pipe", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &TransportError{Op: "stderr pipe", Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &TransportError{Op: "spawn " + opts.Path, Err: err}
	}

	t := &ProcessTransport{
		cmd:   cmd,
		stdin: stdin,
		items: make(chan readItem, 256),
		clk:   opts.Clock,
		log:   opts.Logger,
	}
	go t.pump(stdout)
	go t.drainStderr(stderr)
	return t, nil
}

// pump parses stdout lines into the item channel until the pipe closes.
func (t *ProcessTransport) pump(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := mi.Parse(line)
		if err != nil {
			t.log.Debugw("unparseable MI line", "line", line, "error", err)
			t.items <- readItem{err: err}
			continue
		}
		t.items <- readItem{rec: rec}
	}
	close(t.items)
}

func (t *ProcessTransport) drainStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		t.log.Debugw("gdb stderr", "line", sc.Text())
	}
}

// WriteLine writes one command terminated by a newline.
func (t *ProcessTransport) WriteLine(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return &TransportError{Op: "write", Err: errors.New("transport closed")}
	}
	if _, err := io.WriteString(t.stdin, text+"\n"); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// ReadRecordsUntil drains the record channel until pred matches or timeout
// elapses. A closed channel means the subprocess is gone.
func (t *ProcessTransport) ReadRecordsUntil(pred func(mi.Record) bool, timeout time.Duration) ([]mi.Record, bool, error) {
	timer := t.clk.Timer(timeout)
	defer timer.Stop()

	var out []mi.Record
	for {
		select {
		case item, ok := <-t.items:
			if !ok {
				return out, false, &TransportError{Op: "read", Err: io.EOF}
			}
			if item.err != nil {
				return out, false, item.err
			}
			out = append(out, item.rec)
			if pred != nil && pred(item.rec) {
				return out, false, nil
			}
		case <-timer.C:
			return out, true, nil
		}
	}
}

// Interrupt sends SIGINT to the debugger process.
func (t *ProcessTransport) Interrupt() error {
	if t.cmd.Process == nil {
		return &TransportError{Op: "interrupt", Err: errors.New("process not started")}
	}
	if err := t.cmd.Process.Signal(os.Interrupt); err != nil {
		return &TransportError{Op: "interrupt", Err: err}
	}
	return nil
}

// Close asks GDB to exit, then kills it if it lingers.
func (t *ProcessTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	_, _ = io.WriteString(t.stdin, "-gdb-exit\n")
	_ = t.stdin.Close()
	t.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- t.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-t.clk.After(2 * time.Second):
		_ = t.cmd.Process.Kill()
		return <-done
	}
}
