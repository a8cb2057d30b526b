package debugger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptools/gdbmcp/internal/gdb"
	"github.com/mcptools/gdbmcp/internal/gdb/gdbtest"
)

func newTestDebugger(tr gdb.Transport) *Debugger {
	return New(gdb.NewController(gdb.Options{
		Transport:        tr,
		CommandTimeout:   100 * time.Millisecond,
		InterruptTimeout: 20 * time.Millisecond,
	}), nil)
}

func TestStepVerbParsing(t *testing.T) {
	tests := []struct {
		in      string
		verb    StepVerb
		command string
	}{
		{"c", Continue, "continue"},
		{"continue", Continue, "continue"},
		{"n", Next, "next"},
		{"next", Next, "next"},
		{"s", Step, "step"},
		{"step", Step, "step"},
		{"ni", NextInstruction, "ni"},
		{"nexti", NextInstruction, "ni"},
		{"si", StepInstruction, "si"},
		{"stepi", StepInstruction, "si"},
	}
	for _, tt := range tests {
		verb, ok := ParseStepVerb(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.verb, verb)
		assert.Equal(t, tt.command, verb.Command())
	}

	_, ok := ParseStepVerb("jump")
	assert.False(t, ok)
}

func TestGatingProducesZeroWrites(t *testing.T) {
	tests := []struct {
		name string
		call func(d *Debugger) gdb.Outcome
	}{
		{"step", func(d *Debugger) gdb.Outcome { return d.Step(Next) }},
		{"continue", func(d *Debugger) gdb.Outcome { return d.Step(Continue) }},
		{"context", func(d *Debugger) gdb.Outcome { return d.Context(ContextRegs) }},
		{"memory", func(d *Debugger) gdb.Outcome { return d.ReadMemory("0x1000", 64, MemoryHex) }},
		{"disassemble", func(d *Debugger) gdb.Outcome { return d.Disassemble("main") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &gdbtest.ScriptedTransport{Default: []string{`^done`}}
			d := newTestDebugger(tr)
			// Inferior is idle, not stopped.
			out := tt.call(d)

			assert.False(t, out.Success)
			assert.Equal(t, gdb.StateIdle, out.State)
			assert.NotEmpty(t, out.Error)
			assert.Empty(t, tr.Writes(), "gated call must not touch the subprocess")
		})
	}
}

func TestGatingWhileRunning(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{Default: []string{`^done`}}
	d := newTestDebugger(tr)
	d.ctrl.Machine().Force(gdb.StateRunning)

	out := d.Context(ContextRegs)
	assert.False(t, out.Success)
	assert.Equal(t, gdb.StateRunning, out.State)
	assert.Contains(t, out.Error, "running")
	assert.Empty(t, tr.Writes())
}

func TestLoadBinaryResetsState(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{
		Scripts: map[string][]string{
			"file /bin/ls": {`~"Reading symbols from /bin/ls...\n"`, `^done`},
		},
	}
	d := newTestDebugger(tr)
	require.Equal(t, gdb.StateIdle, d.State())

	out := d.LoadBinary("/bin/ls")
	require.True(t, out.Success)
	assert.Equal(t, gdb.StateStopped, out.State)
	assert.Equal(t, gdb.StateStopped, d.State())
}

func TestLoadBinaryFailureKeepsState(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{
		Scripts: map[string][]string{
			"file /nope": {`^error,msg="/nope: No such file or directory."`},
		},
	}
	d := newTestDebugger(tr)

	out := d.LoadBinary("/nope")
	assert.False(t, out.Success)
	assert.Equal(t, gdb.StateIdle, d.State())
}

func TestRunComposite(t *testing.T) {
	t.Run("breakpoint argument short-circuits on failure", func(t *testing.T) {
		tr := &gdbtest.ScriptedTransport{
			Scripts: map[string][]string{
				"b nosuchsym": {`^error,msg="Function \"nosuchsym\" not defined."`},
			},
		}
		d := newTestDebugger(tr)

		out := d.Run("nosuchsym", false)
		assert.False(t, out.Success)
		assert.Equal(t, "b nosuchsym", out.Command)
		assert.Equal(t, []string{"b nosuchsym"}, tr.Writes(), "continue and run must not be dispatched")
	})

	t.Run("start flag selects start", func(t *testing.T) {
		tr := &gdbtest.ScriptedTransport{
			Scripts: map[string][]string{
				"start": {
					`=thread-group-started,id="i1",pid="4242"`,
					`*running,thread-id="all"`,
					`*stopped,reason="breakpoint-hit",bkptno="1"`,
					`^done`,
				},
			},
		}
		d := newTestDebugger(tr)

		out := d.Run("", true)
		require.True(t, out.Success)
		assert.Equal(t, gdb.StateStopped, out.State)
		assert.Equal(t, 4242, d.InferiorPID())
	})
}

func TestContextAllNeverShortCircuits(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{
		Default: []string{`^done`},
		Scripts: map[string][]string{
			"context stack": {`^error,msg="no stack"`},
		},
	}
	d := newTestDebugger(tr)
	d.ctrl.Machine().Force(gdb.StateStopped)

	contexts := d.ContextAll()
	require.Len(t, contexts, 5)
	assert.False(t, contexts["stack"].Success)
	for _, kind := range []string{"regs", "disasm", "code", "backtrace"} {
		assert.True(t, contexts[kind].Success, kind)
	}
	assert.Len(t, tr.Writes(), 5)
}

func TestSetBreakpointConditionEscaping(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{Default: []string{`^done`}}
	d := newTestDebugger(tr)

	d.SetBreakpoint("main", `name == "root"`)
	writes := tr.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, `b main if "name == \"root\""`, writes[0])
}

func TestDeleteNonexistentBreakpoint(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{
		Scripts: map[string][]string{
			"delete 99": {`&"delete 99\n"`, `^error,msg="No breakpoint number 99."`},
		},
	}
	d := newTestDebugger(tr)

	out := d.DeleteBreakpoint(99)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "No breakpoint number 99")
}

func TestToggleBreakpoint(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{Default: []string{`^done`}}
	d := newTestDebugger(tr)

	d.ToggleBreakpoint(2, true)
	d.ToggleBreakpoint(2, false)
	assert.Equal(t, []string{"enable breakpoints 2", "disable breakpoints 2"}, tr.Writes())
}

func TestReadMemoryFormats(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{Default: []string{`^done`}}
	d := newTestDebugger(tr)
	d.ctrl.Machine().Force(gdb.StateStopped)

	d.ReadMemory("0x401000", 64, MemoryHex)
	d.ReadMemory("0x401000", 64, MemoryString)
	d.ReadMemory("0x401000", 16, MemoryRaw)
	assert.Equal(t, []string{
		"hexdump 0x401000 64",
		"x/s 0x401000",
		"x/16b 0x401000",
	}, tr.Writes())
}

func TestExecuteRoutesInterrupt(t *testing.T) {
	tr := &gdbtest.ScriptedTransport{
		InterruptLines: []string{`*stopped,reason="signal-received"`},
	}
	d := newTestDebugger(tr)
	d.ctrl.Machine().Force(gdb.StateRunning)

	out := d.Execute("interrupt")
	assert.True(t, out.Success)
	assert.Equal(t, 1, tr.Interrupts())
	assert.Empty(t, tr.Writes(), "interrupt is a signal, not a command line")
	assert.Equal(t, gdb.StateStopped, out.State)
}
