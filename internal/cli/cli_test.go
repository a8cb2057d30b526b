package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptools/gdbmcp/internal/config"
)

// testGlobals creates a Globals struct with captured stdout/stderr
func testGlobals() (*Globals, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Globals{
		Config:  config.Default(),
		Log:     newLogger(false, stderr),
		Stdout:  stdout,
		Stderr:  stderr,
		Version: "test",
	}, stdout, stderr
}

func TestResolveTransport(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(key string) string { return vars[key] }
	}

	tests := []struct {
		name       string
		flag       string
		vars       map[string]string
		stdinIsTTY bool
		want       string
	}{
		{"flag wins over everything", "http", map[string]string{"MCP_TRANSPORT": "sse"}, true, "http"},
		{"MCP_TRANSPORT beats TRANSPORT", "", map[string]string{"MCP_TRANSPORT": "sse", "TRANSPORT": "stdio"}, false, "sse"},
		{"TRANSPORT as fallback", "", map[string]string{"TRANSPORT": "http"}, true, "http"},
		{"piped stdin means stdio", "", nil, false, "stdio"},
		{"interactive terminal means sse", "", nil, true, "sse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveTransport(tt.flag, env(tt.vars), tt.stdinIsTTY)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToolsCmd_Run(t *testing.T) {
	globals, stdout, _ := testGlobals()
	cmd := &ToolsCmd{}

	err := cmd.Run(globals)
	require.NoError(t, err)

	output := stdout.String()
	for _, name := range []string{"execute", "set_file", "target_remote", "run", "get_context", "get_session_info"} {
		assert.Contains(t, output, name)
	}
}

func TestVersionCmd_Run(t *testing.T) {
	globals, stdout, _ := testGlobals()
	cmd := &VersionCmd{}

	err := cmd.Run(globals)
	require.NoError(t, err)
	assert.Equal(t, "gdbmcp test\n", stdout.String())
}

func TestNewGlobalsWithConfig(t *testing.T) {
	cfg := config.Default()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	globals := NewGlobalsWithConfig(&CLI{Verbose: true}, cfg, "1.2.3", stdout, stderr)

	require.NotNil(t, globals.Log)
	assert.Same(t, cfg, globals.Config)
	assert.Equal(t, "1.2.3", globals.Version)

	// Debug output lands on stderr, never stdout.
	globals.Debug("hello %s", "world")
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "hello world")
}
