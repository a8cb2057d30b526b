package session

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptools/gdbmcp/internal/debugger"
	"github.com/mcptools/gdbmcp/internal/gdb"
	"github.com/mcptools/gdbmcp/internal/gdb/gdbtest"
)

func scriptedFactory(transports *[]*gdbtest.ScriptedTransport) Factory {
	return func() (*debugger.Debugger, error) {
		tr := &gdbtest.ScriptedTransport{Default: []string{`^done`}}
		if transports != nil {
			*transports = append(*transports, tr)
		}
		ctrl := gdb.NewController(gdb.Options{
			Transport:        tr,
			CommandTimeout:   100 * time.Millisecond,
			InterruptTimeout: 20 * time.Millisecond,
		})
		return debugger.New(ctrl, nil), nil
	}
}

func TestRegistryGetUnknownKey(t *testing.T) {
	r := NewRegistry(RegistryOptions{Factory: scriptedFactory(nil)})

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryLazyCreation(t *testing.T) {
	r := NewRegistry(RegistryOptions{Factory: scriptedFactory(nil)})

	first, err := r.GetOrCreate("client-1")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	again, err := r.GetOrCreate("client-1")
	require.NoError(t, err)
	assert.Same(t, first, again, "same key must reuse the session")

	other, err := r.GetOrCreate("client-2")
	require.NoError(t, err)
	assert.NotSame(t, first, other, "sessions are isolated per key")
	assert.Equal(t, 2, r.Len())
}

func TestRegistryRemoveTerminatesSubprocess(t *testing.T) {
	var transports []*gdbtest.ScriptedTransport
	r := NewRegistry(RegistryOptions{Factory: scriptedFactory(&transports)})

	_, err := r.GetOrCreate("client-1")
	require.NoError(t, err)
	require.Len(t, transports, 1)

	r.Remove("client-1")
	assert.Zero(t, r.Len())
	assert.True(t, transports[0].Closed())

	_, err = r.Get("client-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistrySweepEvictsIdleSessions(t *testing.T) {
	var transports []*gdbtest.ScriptedTransport
	mock := clock.NewMock()
	r := NewRegistry(RegistryOptions{
		Factory: scriptedFactory(&transports),
		Clock:   mock,
		TTL:     30 * time.Minute,
	})

	stale, err := r.GetOrCreate("stale")
	require.NoError(t, err)
	_ = stale

	mock.Add(20 * time.Minute)
	fresh, err := r.GetOrCreate("fresh")
	require.NoError(t, err)
	fresh.Execute("info registers") // refreshes last-used

	mock.Add(15 * time.Minute) // stale is now 35m idle, fresh 15m

	evicted := r.Sweep()
	assert.Equal(t, []string{"stale"}, evicted)
	assert.Equal(t, 1, r.Len())
	assert.True(t, transports[0].Closed(), "evicted session's subprocess must be terminated")
	assert.False(t, transports[1].Closed())
}

func TestRegistrySweepDisabledWithoutTTL(t *testing.T) {
	mock := clock.NewMock()
	r := NewRegistry(RegistryOptions{Factory: scriptedFactory(nil), Clock: mock})

	_, err := r.GetOrCreate("forever")
	require.NoError(t, err)
	mock.Add(24 * time.Hour)

	assert.Empty(t, r.Sweep())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryCloseAll(t *testing.T) {
	var transports []*gdbtest.ScriptedTransport
	r := NewRegistry(RegistryOptions{Factory: scriptedFactory(&transports)})

	_, _ = r.GetOrCreate("a")
	_, _ = r.GetOrCreate("b")
	r.CloseAll()

	assert.Zero(t, r.Len())
	for _, tr := range transports {
		assert.True(t, tr.Closed())
	}
}
