package app

import (
	"sync"

	"github.com/ayusman/vrcpose/internal/landmark"
)

// Slot is a single-frame mailbox between producers and the pipeline. It only
// ever holds the most recent frame.
type Slot struct {
	mu    sync.Mutex
	frame *landmark.Frame
}

// NewSlot creates an empty Slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Put stores f and reports whether it replaced a frame that was never taken.
func (s *Slot) Put(f *landmark.Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := s.frame != nil
	s.frame = f
	return replaced
}

// Take removes and returns the stored frame.
func (s *Slot) Take() (*landmark.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.frame
	s.frame = nil
	return f, f != nil
}
