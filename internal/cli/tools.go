package cli

import (
	"github.com/olekukonko/tablewriter"

	"github.com/mcptools/gdbmcp/internal/mcpserver"
)

// ToolsCmd lists the MCP tools this server exposes
type ToolsCmd struct{}

// Run executes the tools command
func (c *ToolsCmd) Run(globals *Globals) error {
	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("TOOL", "DESCRIPTION")
	for _, spec := range mcpserver.Tools() {
		if err := table.Append(spec.Name, spec.Description); err != nil {
			return err
		}
	}
	return table.Render()
}
