// Package driver orchestrates when the transform engine runs: once per
// still, per refresh tick for live preview, and frame-by-frame during a
// timed export pass.
package driver

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mkessel/retropix/internal/domain"
	"github.com/mkessel/retropix/internal/source"
)

// Session owns one piece of loaded media and the last produced output.
// Swapping in a new source releases the previous one, so decoded buffers
// never accumulate across loads.
type Session struct {
	ID string

	mu     sync.Mutex
	src    source.Source
	output *domain.Frame
	closed bool
}

// NewSession creates an empty media session.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// ReplaceSource swaps in a new source, closing the previous one first.
func (s *Session) ReplaceSource(src source.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src != nil {
		if err := s.src.Close(); err != nil {
			return err
		}
	}
	s.src = src
	s.output = nil
	return nil
}

// Source returns the current source, or nil when none is loaded.
func (s *Session) Source() source.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src
}

// SetOutput stores the most recently produced frame. Last writer wins.
func (s *Session) SetOutput(f *domain.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.output = f
}

// Output returns the most recently produced frame, or nil.
func (s *Session) Output() *domain.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Close releases the session's source. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.output = nil
	if s.src == nil {
		return nil
	}
	err := s.src.Close()
	s.src = nil
	return err
}
