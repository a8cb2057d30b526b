package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mcptools/gdbmcp/internal/cli"
	"github.com/mcptools/gdbmcp/internal/config"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	var c cli.CLI

	ctx := kong.Parse(&c,
		kong.Name("gdbmcp"),
		kong.Description("gdbmcp: a GDB/pwndbg debugging server speaking the Model Context Protocol"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)

	// Load configuration from files/environment, or from the explicit path
	var cfg *config.Config
	var err error
	if c.Config != "" {
		cfg, err = config.LoadFromFile(c.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load config %s: %v\n", c.Config, err)
			os.Exit(1)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			cfg = config.Default()
		}
	}

	globals := cli.NewGlobalsWithConfig(&c, cfg, version, os.Stdout, os.Stderr)
	if err := ctx.Run(globals); err != nil {
		globals.Log.Errorw("fatal", "error", err)
		os.Exit(1)
	}
}
