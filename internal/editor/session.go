// Package editor is an in-process state transition oracle: a deterministic
// interpreter for a subset of vim normal, insert and replace mode.
//
// Supported normal-mode keys are the motions h j k l 0 ^ $ w b e G gg (with
// counts), the operators d c y combined with those motions or doubled, and
// x X D C s S J ~ r p P i a I A o O R. Any other printable key is accepted and
// leaves the state unchanged; an unknown named key is an invalid response.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pdrpinto/vimgolf"
	"github.com/pdrpinto/vimgolf/cache"
)

// DefaultSnapshots is the number of replay snapshots a session keeps.
const DefaultSnapshots = 4096

var errClosed = errors.New("session closed")

var (
	_ vimgolf.Oracle        = (*Session)(nil)
	_ vimgolf.Fingerprinter = (*Session)(nil)
)

// Session replays command paths from a fixed initial state. It keeps machine
// snapshots keyed by path so that extending a recently applied path only
// replays the new suffix.
type Session struct {
	mu        sync.Mutex
	initial   *machine
	current   *machine
	snapshots *cache.LRU[*machine]
	closed    bool
}

// NewSession returns a session positioned at initial. snapshots bounds the
// replay cache; a non-positive value selects DefaultSnapshots.
func NewSession(initial vimgolf.EditorState, snapshots int) *Session {
	if snapshots <= 0 {
		snapshots = DefaultSnapshots
	}
	m := newMachine(initial)
	return &Session{
		initial:   m,
		current:   m,
		snapshots: cache.NewLRU[*machine](snapshots),
	}
}

// NewFactory returns an OracleFactory opening one Session per call.
func NewFactory(initial vimgolf.EditorState, snapshots int) vimgolf.OracleFactory {
	return func(ctx context.Context) (vimgolf.Oracle, error) {
		if err := ctx.Err(); err != nil {
			return nil, vimgolf.NewOracleError(vimgolf.OracleNotRunning, nil, err)
		}
		return NewSession(initial, snapshots), nil
	}
}

// Apply replays path on initial without keeping a session around.
func Apply(initial vimgolf.EditorState, path vimgolf.Path) (vimgolf.EditorState, error) {
	m := newMachine(initial)
	for _, cmd := range path {
		if err := m.feed(cmd); err != nil {
			return vimgolf.EditorState{}, vimgolf.NewOracleError(vimgolf.OracleInvalidResponse, path, err)
		}
	}
	return m.state(), nil
}

func (s *Session) ApplyCommands(ctx context.Context, path vimgolf.Path) (vimgolf.EditorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return vimgolf.EditorState{}, vimgolf.NewOracleError(vimgolf.OracleNotRunning, path, errClosed)
	}
	if err := ctx.Err(); err != nil {
		return vimgolf.EditorState{}, vimgolf.NewOracleError(vimgolf.OracleTimeout, path, err)
	}

	keys := prefixKeys(path)
	base, start := s.initial, 0
	for i := len(path); i > 0; i-- {
		if m, ok := s.snapshots.Get(keys[i]); ok {
			base, start = m, i
			break
		}
	}

	m := base.clone()
	for i := start; i < len(path); i++ {
		if err := m.feed(path[i]); err != nil {
			return vimgolf.EditorState{}, vimgolf.NewOracleError(vimgolf.OracleInvalidResponse, path, err)
		}
		// keep the parent so its other children replay one key
		if i == len(path)-2 && start < len(path)-1 {
			s.snapshots.Set(keys[i+1], m.clone())
		}
	}
	if start < len(path) {
		s.snapshots.Set(keys[len(path)], m)
	}
	s.current = m
	return m.state(), nil
}

func (s *Session) State(ctx context.Context) (vimgolf.EditorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return vimgolf.EditorState{}, vimgolf.NewOracleError(vimgolf.OracleNotRunning, nil, errClosed)
	}
	return s.current.state(), nil
}

// Fingerprint identifies the machine state left by the last ApplyCommands,
// including any pending count, operator and register contents.
func (s *Session) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.fingerprint()
}

// Close releases the snapshots; later calls fail with OracleNotRunning.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.snapshots.Clear()
	return nil
}

// prefixKeys returns the cache key of every prefix of path; keys[i] covers
// path[:i].
func prefixKeys(path vimgolf.Path) []string {
	keys := make([]string, len(path)+1)
	var b strings.Builder
	for i, cmd := range path {
		b.WriteString(cmd.String())
		keys[i+1] = b.String()
	}
	return keys
}
