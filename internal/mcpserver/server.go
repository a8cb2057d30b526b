// Package mcpserver exposes the debugging verbs as MCP tools. One tool per
// verb; the client session id keys the per-conversation debugger registry.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mcptools/gdbmcp/internal/session"
)

// Options configure the MCP server.
type Options struct {
	Registry *session.Registry // required
	Version  string
	Logger   *zap.SugaredLogger
	// SessionKey overrides how a tool call maps to a session key; tests
	// use it to pin the key.
	SessionKey func(ctx context.Context) string
}

// Server wires the tool handlers to the registry.
type Server struct {
	mcp        *server.MCPServer
	registry   *session.Registry
	log        *zap.SugaredLogger
	sessionKey func(ctx context.Context) string
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.SessionKey == nil {
		opts.SessionKey = clientSessionKey
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		registry:   opts.Registry,
		log:        opts.Logger,
		sessionKey: opts.SessionKey,
	}
	s.mcp = server.NewMCPServer("gdbmcp", opts.Version,
		server.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// clientSessionKey derives the registry key from the MCP client session.
// Without one (notably over plain stdio) every call shares one key.
func clientSessionKey(ctx context.Context) string {
	if cs := server.ClientSessionFromContext(ctx); cs != nil {
		return cs.SessionID()
	}
	return "default"
}

// toolError is the structured failure shape shared by every tool.
type toolError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
}

var errNoSession = toolError{
	Success: false,
	Error:   "Please set_file first.",
	Type:    "SessionNotFound",
}

// jsonResult marshals a tool result into a text content block.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// guard converts handler panics into the structured failure shape instead
// of killing the server.
func (s *Server) guard(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorw("tool panic", "tool", req.Params.Name, "panic", r)
				result, err = jsonResult(toolError{Success: false, Error: fmt.Sprint(r), Type: "panic"})
			}
		}()
		return h(ctx, req)
	}
}

// session resolves the caller's session, or returns the structured
// establish-a-session-first failure.
func (s *Server) session(ctx context.Context) (*session.Session, *mcp.CallToolResult, error) {
	key := s.sessionKey(ctx)
	sess, err := s.registry.Get(key)
	if err != nil {
		s.log.Debugw("no session for key", "key", key)
		result, rerr := jsonResult(errNoSession)
		return nil, result, rerr
	}
	return sess, nil, nil
}
