package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mcptools/gdbmcp/internal/debugger"
)

// ErrSessionNotFound means no session exists for the key; the caller should
// establish one with set_file or target_remote first.
var ErrSessionNotFound = errors.New("session not found")

// Factory builds the debugger stack (subprocess included) for a new
// session.
type Factory func() (*debugger.Debugger, error)

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	Factory Factory // required
	Clock   clock.Clock
	// TTL is the idle lifetime after which Sweep reclaims a session.
	// Zero disables eviction.
	TTL    time.Duration
	Logger *zap.SugaredLogger
}

// Registry maps opaque client-session keys to isolated sessions. Creation
// is lazy; teardown is explicit (Remove/CloseAll) or idle-based (Sweep),
// so the map stays bounded.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
	clk      clock.Clock
	ttl      time.Duration
	log      *zap.SugaredLogger
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  opts.Factory,
		clk:      opts.Clock,
		ttl:      opts.TTL,
		log:      opts.Logger,
	}
}

// Get returns the session for key, or ErrSessionNotFound.
func (r *Registry) Get(key string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetOrCreate returns the session for key, spawning a fresh subprocess for
// a previously-unseen key.
func (r *Registry) GetOrCreate(key string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s, nil
	}
	dbg, err := r.factory()
	if err != nil {
		return nil, err
	}
	s := New(key, dbg, r.clk)
	r.sessions[key] = s
	r.log.Infow("session created", "key", key, "sessions", len(r.sessions))
	return s, nil
}

// Remove tears down the session for key: the entry is dropped and its
// subprocess terminated. Unknown keys are a no-op.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	s := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()
	if s != nil {
		if err := s.Close(); err != nil {
			r.log.Debugw("session close", "key", key, "error", err)
		}
		r.log.Infow("session removed", "key", key)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep reclaims sessions idle longer than the TTL and returns their keys.
func (r *Registry) Sweep() []string {
	if r.ttl <= 0 {
		return nil
	}
	cutoff := r.clk.Now().Add(-r.ttl)

	r.mu.Lock()
	expired := lo.PickBy(r.sessions, func(_ string, s *Session) bool {
		return s.LastUsed().Before(cutoff)
	})
	for key := range expired {
		delete(r.sessions, key)
	}
	r.mu.Unlock()

	for key, s := range expired {
		if err := s.Close(); err != nil {
			r.log.Debugw("session close", "key", key, "error", err)
		}
		r.log.Infow("idle session evicted", "key", key)
	}
	return lo.Keys(expired)
}

// StartJanitor sweeps on the given interval until ctx is cancelled.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := r.clk.Ticker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// CloseAll tears down every session; used at server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for key, s := range sessions {
		if err := s.Close(); err != nil {
			r.log.Debugw("session close", "key", key, "error", err)
		}
	}
}
