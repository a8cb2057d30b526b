package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
)

// ServeStdio serves the MCP protocol over stdin/stdout. Blocks until the
// client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ServeSSE serves the MCP protocol over HTTP server-sent events on addr.
func (s *Server) ServeSSE(ctx context.Context, addr, basePath, ssePath, messagePath string) error {
	sse := server.NewSSEServer(s.mcp,
		server.WithStaticBasePath(basePath),
		server.WithSSEEndpoint(ssePath),
		server.WithMessageEndpoint(messagePath),
	)
	errCh := make(chan error, 1)
	go func() { errCh <- sse.Start(addr) }()
	select {
	case <-ctx.Done():
		return sse.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// ServeStreamableHTTP serves the MCP streamable-HTTP transport on addr.
func (s *Server) ServeStreamableHTTP(ctx context.Context, addr, path string) error {
	httpSrv := server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath(path),
	)
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Start(addr) }()
	select {
	case <-ctx.Done():
		return httpSrv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
