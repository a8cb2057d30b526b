package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/mcptools/gdbmcp/internal/config"
	"github.com/mcptools/gdbmcp/internal/debugger"
	"github.com/mcptools/gdbmcp/internal/gdb"
	"github.com/mcptools/gdbmcp/internal/mcpserver"
	"github.com/mcptools/gdbmcp/internal/session"
)

// janitorInterval is how often idle sessions are swept.
const janitorInterval = time.Minute

// ServeCmd starts the MCP debugging server
type ServeCmd struct {
	Transport string `short:"t" enum:",stdio,sse,http" default:"" help:"MCP transport: stdio, sse or http (auto-detected when empty)"`
	Host      string `help:"Listen host for network transports (overrides config)"`
	Port      int    `help:"Listen port for network transports (overrides config)"`
	GDBPath   string `name:"gdb-path" help:"Debugger executable (overrides config)"`
}

// Run executes the serve command
func (c *ServeCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if c.GDBPath != "" {
		cfg.GDB.Path = c.GDBPath
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	transport := resolveTransport(c.Transport, os.Getenv, isatty.IsTerminal(os.Stdin.Fd()))
	globals.Debug("resolved transport: %s", transport)

	registry := session.NewRegistry(session.RegistryOptions{
		Factory: spawnFactory(cfg, globals),
		TTL:     config.Duration(cfg.GDB.SessionTTL, 30*time.Minute),
		Logger:  globals.Log,
	})
	defer registry.CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	registry.StartJanitor(ctx, janitorInterval)

	srv := mcpserver.New(mcpserver.Options{
		Registry: registry,
		Version:  globals.Version,
		Logger:   globals.Log,
	})

	switch transport {
	case "stdio":
		globals.Log.Infow("serving MCP over stdio")
		return srv.ServeStdio()
	case "sse":
		addr := cfg.Server.Addr()
		globals.Log.Infow("serving MCP over SSE", "addr", addr, "sse", cfg.Server.SSEPath)
		return srv.ServeSSE(ctx, addr, cfg.Server.MountPath, cfg.Server.SSEPath, cfg.Server.MessagePath)
	case "http":
		addr := cfg.Server.Addr()
		globals.Log.Infow("serving MCP over streamable HTTP", "addr", addr, "path", cfg.Server.HTTPPath)
		return srv.ServeStreamableHTTP(ctx, addr, cfg.Server.HTTPPath)
	default:
		return fmt.Errorf("unknown transport %q (want stdio, sse or http)", transport)
	}
}

// resolveTransport picks the MCP transport: explicit flag, then the
// MCP_TRANSPORT and TRANSPORT environment variables, then stdio when stdin
// is piped (an MCP client is attached), otherwise sse.
func resolveTransport(flag string, getenv func(string) string, stdinIsTTY bool) string {
	if flag != "" {
		return flag
	}
	if t := getenv("MCP_TRANSPORT"); t != "" {
		return t
	}
	if t := getenv("TRANSPORT"); t != "" {
		return t
	}
	if !stdinIsTTY {
		return "stdio"
	}
	return "sse"
}

// spawnFactory builds the per-session debugger stack: one subprocess, one
// dispatcher, one state machine.
func spawnFactory(cfg *config.Config, globals *Globals) session.Factory {
	return func() (*debugger.Debugger, error) {
		tr, err := gdb.Spawn(gdb.SpawnOptions{
			Path:      cfg.GDB.Path,
			ExtraArgs: cfg.GDB.ExtraArgs,
			Logger:    globals.Log,
		})
		if err != nil {
			return nil, err
		}
		ctrl := gdb.NewController(gdb.Options{
			Transport:        tr,
			CommandTimeout:   config.Duration(cfg.GDB.CommandTimeout, 5*time.Second),
			InterruptTimeout: config.Duration(cfg.GDB.InterruptTimeout, time.Second),
			Logger:           globals.Log,
		})
		return debugger.New(ctrl, globals.Log), nil
	}
}
