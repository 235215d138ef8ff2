package cache

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/pdrpinto/vimgolf"
)

// Entry is one cached oracle answer.
type Entry struct {
	State vimgolf.EditorState
	// Fingerprint is the inner session's Fingerprint, or State.Key when the
	// inner session has none.
	Fingerprint string
}

// Oracle puts one shared LRU in front of every session opened through its
// factory. Concurrent misses for the same path are collapsed so only one
// session does the work; the others wait for its result.
type Oracle struct {
	store  *LRU[Entry]
	flight singleflight.Group
	next   vimgolf.OracleFactory
}

// NewOracle wraps next with a cache of the given capacity.
func NewOracle(next vimgolf.OracleFactory, capacity int) *Oracle {
	return &Oracle{
		store: NewLRU[Entry](capacity),
		next:  next,
	}
}

// Factory returns an OracleFactory whose sessions consult the cache first.
func (o *Oracle) Factory() vimgolf.OracleFactory {
	return func(ctx context.Context) (vimgolf.Oracle, error) {
		inner, err := o.next(ctx)
		if err != nil {
			return nil, err
		}
		return &session{parent: o, inner: inner}, nil
	}
}

// Store exposes the underlying LRU, mainly for Remove and Clear.
func (o *Oracle) Store() *LRU[Entry] { return o.store }

func (o *Oracle) Stats() Stats { return o.store.Stats() }

var _ vimgolf.Fingerprinter = (*session)(nil)

// session answers from the shared store when it can. A cached answer never
// reaches inner, so the session remembers the last answer itself and serves
// State and Fingerprint from it.
type session struct {
	parent *Oracle
	inner  vimgolf.Oracle

	mu      sync.Mutex
	last    Entry
	applied bool
}

func (s *session) ApplyCommands(ctx context.Context, path vimgolf.Path) (vimgolf.EditorState, error) {
	key := path.String()
	entry, ok := s.parent.store.Get(key)
	if !ok {
		v, err, _ := s.parent.flight.Do(key, func() (any, error) {
			state, err := s.inner.ApplyCommands(ctx, path)
			if err != nil {
				return nil, err
			}
			e := Entry{State: state, Fingerprint: state.Key()}
			if fp, ok := s.inner.(vimgolf.Fingerprinter); ok {
				e.Fingerprint = fp.Fingerprint()
			}
			s.parent.store.Set(key, e)
			return e, nil
		})
		if err != nil {
			return vimgolf.EditorState{}, err
		}
		entry = v.(Entry)
	}

	s.mu.Lock()
	s.last, s.applied = entry, true
	s.mu.Unlock()
	return entry.State, nil
}

// State is the state of the last successful ApplyCommands, or the inner
// session's state before the first one.
func (s *session) State(ctx context.Context) (vimgolf.EditorState, error) {
	s.mu.Lock()
	last, applied := s.last, s.applied
	s.mu.Unlock()
	if applied {
		return last.State, nil
	}
	return s.inner.State(ctx)
}

func (s *session) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied {
		return s.last.Fingerprint
	}
	if fp, ok := s.inner.(vimgolf.Fingerprinter); ok {
		return fp.Fingerprint()
	}
	return ""
}

func (s *session) Close() error {
	if closer, ok := s.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
