package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcptools/gdbmcp/internal/debugger"
	"github.com/mcptools/gdbmcp/internal/gdb"
	"github.com/mcptools/gdbmcp/internal/session"
)

func (s *Server) handleExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.Execute(command))
}

func (s *Server) handleSetFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("binary_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// set_file establishes the session for unseen keys.
	sess, err := s.registry.GetOrCreate(s.sessionKey(ctx))
	if err != nil {
		s.log.Errorw("session spawn failed", "error", err)
		return jsonResult(toolError{Success: false, Error: err.Error(), Type: "SpawnError"})
	}
	return jsonResult(sess.SetFile(path))
}

func (s *Server) handleTargetRemote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.registry.GetOrCreate(s.sessionKey(ctx))
	if err != nil {
		s.log.Errorw("session spawn failed", "error", err)
		return jsonResult(toolError{Success: false, Error: err.Error(), Type: "SpawnError"})
	}
	return jsonResult(sess.TargetRemote(target))
}

func (s *Server) handleSetPocFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("poc_file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.SetArgs(path))
}

func (s *Server) handleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.Run(req.GetString("args", ""), req.GetBool("start", false)))
}

func (s *Server) handleStepControl(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.StepControl(command))
}

func (s *Server) handleFinish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.Finish())
}

func (s *Server) handleGetContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.Context(req.GetString("context_type", "all")))
}

func (s *Server) handleSetBreakpoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.SetBreakpoint(location, req.GetString("condition", "")))
}

func (s *Server) handleListBreakpoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.ListBreakpoints())
}

func (s *Server) handleDeleteBreakpoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := req.RequireInt("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.DeleteBreakpoint(number))
}

func (s *Server) handleToggleBreakpoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := req.RequireInt("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	enable, err := req.RequireBool("enable")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.ToggleBreakpoint(number, enable))
}

func (s *Server) handleGetMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := req.RequireString("address")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, ok := debugger.ParseMemoryFormat(req.GetString("format", "hex"))
	if !ok {
		return jsonResult(toolError{Success: false, Error: "format must be hex, string or raw", Type: "BadArgument"})
	}
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.ReadMemory(address, req.GetInt("size", 64), format))
}

func (s *Server) handleDisassemble(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := req.RequireString("address")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.Disassemble(address))
}

func (s *Server) handleInterrupt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sess.Interrupt())
}

// sessionInfoResult pairs the session snapshot with the live gdb state.
type sessionInfoResult struct {
	Session  session.Info `json:"session"`
	GDBState gdb.State    `json:"gdb_state"`
}

func (s *Server) handleGetSessionInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, failed, err := s.session(ctx)
	if failed != nil || err != nil {
		return failed, err
	}
	return jsonResult(sessionInfoResult{Session: sess.Info(), GDBState: sess.State()})
}
