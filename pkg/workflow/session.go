package workflow

import (
	"context"
	"sync"

	"github.com/matzehuels/bracketeer/pkg/bracket"
)

// Session holds the one open match view of a client. Opening a match
// closes the previous view first, so at most one elapsed ticker is live.
type Session struct {
	backend Backend
	opts    []Option

	mu      sync.Mutex
	current *View
}

// NewSession creates a session whose views use b and opts.
func NewSession(b Backend, opts ...Option) *Session {
	return &Session{backend: b, opts: opts}
}

// Open closes the current view, if any, and opens m. When m cannot be
// opened the session is left without a view.
func (s *Session) Open(ctx context.Context, m bracket.Match) (*View, error) {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	v, err := Open(ctx, s.backend, m, s.opts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Close()
	}
	s.current = v
	return v, nil
}

// Current returns the open view or nil.
func (s *Session) Current() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close closes the open view.
func (s *Session) Close() error {
	s.mu.Lock()
	v := s.current
	s.current = nil
	s.mu.Unlock()
	if v != nil {
		return v.Close()
	}
	return nil
}
