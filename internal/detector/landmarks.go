// Package detector provides hand detection interfaces and landmark types.
package detector

import (
	"errors"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformedHand is returned when a detector reports a hand with the wrong
// number of landmarks or with non-finite coordinates.
var ErrMalformedHand = errors.New("malformed hand landmarks")

// Point3D is a landmark in normalized image coordinates.
// X and Y are in [0,1]; Z is the detector's relative depth and may be zero.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks reported for one hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Validate reports ErrMalformedHand if any coordinate is NaN or infinite.
func (h *HandLandmarks) Validate() error {
	if h == nil {
		return ErrMalformedHand
	}
	for _, p := range h.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return ErrMalformedHand
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Fingertips lists the tips compared against their knuckles for the open-hand
// test, thumb excluded.
var Fingertips = [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}

// Knuckles are the MCP joints paired with Fingertips.
var Knuckles = [4]int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP}

// ExtendedFingers counts fingertips that sit above their knuckle in image
// space (numerically smaller y).
func (h *HandLandmarks) ExtendedFingers() int {
	count := 0
	for i := range Fingertips {
		if h.Points[Fingertips[i]].Y < h.Points[Knuckles[i]].Y {
			count++
		}
	}
	return count
}
