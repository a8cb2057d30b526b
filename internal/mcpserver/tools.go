package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolSpec describes one exposed tool; the CLI "tools" command lists these.
type ToolSpec struct {
	Name        string
	Description string
}

// Tools enumerates every tool this server exposes.
func Tools() []ToolSpec {
	return []ToolSpec{
		{"execute", "Execute an arbitrary GDB/pwndbg command"},
		{"set_file", "Load a binary file for debugging (creates the session)"},
		{"target_remote", "Connect to a remote gdbserver (creates the session)"},
		{"set_poc_file", "Set the PoC file as the inferior argument (set args)"},
		{"run", "Run the loaded binary"},
		{"step_control", "Stepping commands: continue, next, step, nexti, stepi"},
		{"finish", "Run until the current function returns"},
		{"get_context", "Debugging context: all, regs, stack, disasm, code, backtrace"},
		{"set_breakpoint", "Set a breakpoint, optionally conditional"},
		{"list_breakpoints", "List all breakpoints"},
		{"delete_breakpoint", "Delete a breakpoint by number"},
		{"toggle_breakpoint", "Enable or disable a breakpoint by number"},
		{"get_memory", "Read memory at an address (hex, string or raw)"},
		{"disassemble", "Disassemble at an address"},
		{"interrupt", "Interrupt the running inferior"},
		{"get_session_info", "Current debugging session information"},
	}
}

func (s *Server) registerTools() {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		s.mcp.AddTool(tool, s.guard(h))
	}

	add(mcp.NewTool("execute",
		mcp.WithDescription("Execute an arbitrary GDB/pwndbg command and return its raw responses."),
		mcp.WithString("command", mcp.Required(), mcp.Description("GDB command to execute")),
	), s.handleExecute)

	add(mcp.NewTool("set_file",
		mcp.WithDescription("Load a binary file for debugging. Creates the debugging session on first use."),
		mcp.WithString("binary_path", mcp.Required(), mcp.Description("Path to the binary to load")),
	), s.handleSetFile)

	add(mcp.NewTool("target_remote",
		mcp.WithDescription("Connect to a remote gdbserver. Creates the debugging session on first use."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Remote target, e.g. localhost:1234")),
	), s.handleTargetRemote)

	add(mcp.NewTool("set_poc_file",
		mcp.WithDescription("Set the proof-of-concept file as the inferior argument (set args)."),
		mcp.WithString("poc_file_path", mcp.Required(), mcp.Description("Path to the PoC file")),
	), s.handleSetPocFile)

	add(mcp.NewTool("run",
		mcp.WithDescription("Run the loaded binary. With args, first break there and continue."),
		mcp.WithString("args", mcp.Description("Breakpoint location to run until")),
		mcp.WithBoolean("start", mcp.Description("Stop at program entry (like --start)")),
	), s.handleRun)

	add(mcp.NewTool("step_control",
		mcp.WithDescription("Execute a stepping command (continue, next, step, nexti, stepi or c/n/s/ni/si)."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Stepping command name or alias")),
	), s.handleStepControl)

	add(mcp.NewTool("finish",
		mcp.WithDescription("Run until the current function returns."),
	), s.handleFinish)

	add(mcp.NewTool("get_context",
		mcp.WithDescription("Get debugging context (registers, stack, disassembly, code, backtrace)."),
		mcp.WithString("context_type", mcp.Description("all, regs, stack, disasm, code or backtrace"),
			mcp.DefaultString("all")),
	), s.handleGetContext)

	add(mcp.NewTool("set_breakpoint",
		mcp.WithDescription("Set a breakpoint at the given location."),
		mcp.WithString("location", mcp.Required(), mcp.Description("Address or symbol")),
		mcp.WithString("condition", mcp.Description("Optional breakpoint condition")),
	), s.handleSetBreakpoint)

	add(mcp.NewTool("list_breakpoints",
		mcp.WithDescription("List all breakpoints."),
	), s.handleListBreakpoints)

	add(mcp.NewTool("delete_breakpoint",
		mcp.WithDescription("Delete a breakpoint by number."),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Breakpoint number")),
	), s.handleDeleteBreakpoint)

	add(mcp.NewTool("toggle_breakpoint",
		mcp.WithDescription("Enable or disable a breakpoint."),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Breakpoint number")),
		mcp.WithBoolean("enable", mcp.Required(), mcp.Description("New enabled state")),
	), s.handleToggleBreakpoint)

	add(mcp.NewTool("get_memory",
		mcp.WithDescription("Read memory at the given address."),
		mcp.WithString("address", mcp.Required(), mcp.Description("Memory address")),
		mcp.WithNumber("size", mcp.Description("Number of bytes to read"), mcp.DefaultNumber(64)),
		mcp.WithString("format", mcp.Description("Output format"),
			mcp.Enum("hex", "string", "raw"), mcp.DefaultString("hex")),
	), s.handleGetMemory)

	add(mcp.NewTool("disassemble",
		mcp.WithDescription("Disassemble the given address."),
		mcp.WithString("address", mcp.Required(), mcp.Description("Address to disassemble")),
	), s.handleDisassemble)

	add(mcp.NewTool("interrupt",
		mcp.WithDescription("Interrupt the running inferior."),
	), s.handleInterrupt)

	add(mcp.NewTool("get_session_info",
		mcp.WithDescription("Get current debugging session information."),
	), s.handleGetSessionInfo)
}
