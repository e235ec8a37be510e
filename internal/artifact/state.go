// Package artifact tracks the file the recorder is currently producing so the
// shutdown path can finish it.
package artifact

import (
	"errors"
	"sync"
)

// ErrSealed is returned by Set once the finalizer has taken over.
var ErrSealed = errors.New("artifact state sealed")

// State holds at most one path: the most recently started capture that has
// not yet been post-processed. The zero value is ready to use.
//
// The mutex only guards assignment and reads; it is never held across an
// external call.
type State struct {
	mu      sync.Mutex
	current string
	claimed bool
	sealed  bool
}

// Set records path as the current artifact, replacing any previous value.
func (s *State) Set(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return ErrSealed
	}
	s.current = path
	s.claimed = false
	return nil
}

// Current returns a snapshot of the tracked path.
func (s *State) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != ""
}

// Claim marks path as handled by the caller. It succeeds at most once per Set
// value and only while path is still current and the state is not sealed.
func (s *State) Claim(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed || s.claimed || path == "" || s.current != path {
		return false
	}
	s.claimed = true
	return true
}

// Seal stops further Set calls and returns the current path if nobody has
// claimed it yet. Only the first Seal can return a path.
func (s *State) Seal() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
	if s.current == "" || s.claimed {
		return "", false
	}
	s.claimed = true
	return s.current, true
}
