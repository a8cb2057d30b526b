// Package cli defines the gdbmcp command tree.
package cli

import (
	"io"

	"go.uber.org/zap"

	"github.com/mcptools/gdbmcp/internal/config"
)

// CLI is the root command tree parsed by kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable verbose debug logging on stderr"`
	Config  string `short:"c" type:"path" help:"Path to a config file (overrides the search paths)"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Start the MCP debugging server"`
	Tools   ToolsCmd   `cmd:"" help:"List the MCP tools this server exposes"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Globals carries shared state into command Run methods.
type Globals struct {
	Config  *config.Config
	Log     *zap.SugaredLogger
	Stdout  io.Writer
	Stderr  io.Writer
	Version string
}

// NewGlobalsWithConfig builds Globals from parsed flags and loaded config.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config, version string, stdout, stderr io.Writer) *Globals {
	verbose := c.Verbose || cfg.Verbose
	return &Globals{
		Config:  cfg,
		Log:     newLogger(verbose, stderr),
		Stdout:  stdout,
		Stderr:  stderr,
		Version: version,
	}
}

// Debug logs a formatted debug message when verbose logging is on.
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Log != nil {
		g.Log.Debugf(format, args...)
	}
}
