package gesture

import (
	"math"
	"sync"

	"github.com/ayusman/beyondwords/internal/detector"
	"github.com/ayusman/beyondwords/internal/interp"
)

// Calibration bounds the wrist to middle-fingertip distance, in viewport
// pixels. A hand that small (Far) has depth 0, one that large (Near) depth 1.
type Calibration struct {
	Near float64 `toml:"near" env:"NEAR"`
	Far  float64 `toml:"far" env:"FAR"`
}

// DefaultCalibration matches a 640x480 webcam a little over an arm's length
// from the visitor.
func DefaultCalibration() Calibration {
	return Calibration{Near: 280, Far: 80}
}

// MinOpenFingers is how many of the four fingertips must sit above their
// knuckles for a hand to count as open.
const MinOpenFingers = 3

// Normalizer converts detector output into Observations. It is called from
// the sensor goroutine while the viewport is updated from the transport, so
// the viewport is guarded.
type Normalizer struct {
	mu  sync.RWMutex
	vp  Viewport
	cal Calibration
}

// NewNormalizer creates a Normalizer for the given viewport.
func NewNormalizer(vp Viewport, cal Calibration) *Normalizer {
	return &Normalizer{vp: vp, cal: cal}
}

// SetViewport changes the pixel scale used for new observations. Non-positive
// sizes are ignored.
func (n *Normalizer) SetViewport(vp Viewport) {
	if !vp.Valid() {
		return
	}
	n.mu.Lock()
	n.vp = vp
	n.mu.Unlock()
}

// Viewport returns the current viewport.
func (n *Normalizer) Viewport() Viewport {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.vp
}

// Normalize converts every well-formed hand, keeping detector order. Hands
// that fail validation are dropped for this frame.
func (n *Normalizer) Normalize(hands []detector.HandLandmarks) []Observation {
	vp := n.Viewport()
	out := make([]Observation, 0, len(hands))
	for i := range hands {
		if err := hands[i].Validate(); err != nil {
			continue
		}
		out = append(out, observe(&hands[i], vp, n.cal))
	}
	return out
}

// Snapshot normalizes hands and pairs them with the viewport they were
// scaled against.
func (n *Normalizer) Snapshot(hands []detector.HandLandmarks) Snapshot {
	return Snapshot{Hands: n.Normalize(hands), Viewport: n.Viewport()}
}

func observe(h *detector.HandLandmarks, vp Viewport, cal Calibration) Observation {
	palm := h.Points[detector.MiddleMCP]
	wrist := h.Points[detector.Wrist]
	tip := h.Points[detector.MiddleTip]

	size := math.Hypot((tip.X-wrist.X)*vp.Width, (tip.Y-wrist.Y)*vp.Height)

	return Observation{
		X:     (1 - palm.X) * vp.Width,
		Y:     palm.Y * vp.Height,
		Depth: interp.MapClamp(size, cal.Far, cal.Near, 0, 1),
		Open:  h.ExtendedFingers() >= MinOpenFingers,
	}
}
