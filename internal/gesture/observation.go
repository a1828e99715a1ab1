// Package gesture turns raw hand landmarks into per-hand observations and
// decides, frame by frame, whether the current chapter's gesture is held.
package gesture

import (
	"time"
)

// Observation is one detected hand reduced to the features the narrative
// reacts to. X and Y are in viewport pixels with the horizontal axis
// mirrored, Depth is the calibrated hand size in [0,1].
type Observation struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Depth float64 `json:"depth"`
	Open  bool    `json:"open"`
}

// Viewport is the size of the presentation surface in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Center returns the middle of the viewport.
func (v Viewport) Center() (x, y float64) {
	return v.Width / 2, v.Height / 2
}

// Snapshot is the latest sensor reading: the hands seen in one camera frame,
// in detector order, and the viewport they were scaled to.
type Snapshot struct {
	Hands    []Observation `json:"hands"`
	Viewport Viewport      `json:"viewport"`
	At       time.Time     `json:"at"`
}

// Primary returns the first hand, which every chapter treats as the one
// performing the gesture.
func (s Snapshot) Primary() (Observation, bool) {
	if len(s.Hands) == 0 {
		return Observation{}, false
	}
	return s.Hands[0], true
}

// Detected reports whether any hand is in view.
func (s Snapshot) Detected() bool {
	return len(s.Hands) > 0
}
