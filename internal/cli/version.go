package cli

import "fmt"

// VersionCmd prints version information
type VersionCmd struct{}

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	_, err := fmt.Fprintf(globals.Stdout, "gdbmcp %s\n", globals.Version)
	return err
}
