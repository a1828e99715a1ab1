// Package sensor runs the camera side of the installation: it reads frames,
// detects hands and publishes the latest reading for the frame tick to pick
// up.
package sensor

import (
	"sync/atomic"
	"time"

	"github.com/ayusman/beyondwords/internal/gesture"
)

// Slot is a single-value handoff between the sensor loop and the frame tick.
// Writers replace the value; readers never block and always see a whole
// snapshot.
type Slot struct {
	latest atomic.Pointer[gesture.Snapshot]
}

// NewSlot returns a slot holding an empty reading for vp.
func NewSlot(vp gesture.Viewport) *Slot {
	s := &Slot{}
	s.Store(gesture.Snapshot{Viewport: vp})
	return s
}

// Store replaces the current snapshot.
func (s *Slot) Store(snap gesture.Snapshot) {
	s.latest.Store(&snap)
}

// Load returns the current snapshot.
func (s *Slot) Load() gesture.Snapshot {
	if p := s.latest.Load(); p != nil {
		return *p
	}
	return gesture.Snapshot{}
}

// Latest returns the current snapshot, with its hands dropped if it was taken
// more than maxAge before now. A sensor that stops delivering therefore reads
// as nobody in front of the camera. maxAge <= 0 disables the check.
func (s *Slot) Latest(now time.Time, maxAge time.Duration) gesture.Snapshot {
	snap := s.Load()
	if maxAge > 0 && !snap.At.IsZero() && now.Sub(snap.At) > maxAge {
		snap.Hands = nil
	}
	return snap
}
