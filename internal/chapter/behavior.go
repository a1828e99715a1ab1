package chapter

import (
	"fmt"
	"time"

	"github.com/ayusman/beyondwords/internal/audio"
	"github.com/ayusman/beyondwords/internal/gesture"
)

// Params are the smoothed control values a chapter hands to the renderer.
type Params map[string]float64

// Parameter names shared by more than one chapter.
const (
	ParamVignette = "vignette"
	ParamMessage  = "message_alpha"
	ParamGlow     = "glow"
)

// Input is what a chapter sees on one experience frame.
type Input struct {
	Viewport gesture.Viewport
	Hands    []gesture.Observation
	// Holding is true while the hold timer is running.
	Holding bool
	// Uptime is the time since the narrative started; slow oscillations are
	// phased against it.
	Uptime time.Duration
}

// Primary returns the hand the chapter responds to.
func (in Input) Primary() (gesture.Observation, bool) {
	if len(in.Hands) == 0 {
		return gesture.Observation{}, false
	}
	return in.Hands[0], true
}

// Behavior is everything chapter-specific. The narrative machine selects one
// by chapter index and never branches on the index itself.
type Behavior interface {
	Chapter() Chapter
	// Gesture is the predicate the hold timer is fed with.
	Gesture() gesture.Predicate
	// Background is the experience backdrop.
	Background() Color
	// Reset returns every smoothed value to its starting point.
	Reset(vp gesture.Viewport)
	// Step advances the smoothers one frame and returns the current values.
	Step(in Input) Params
	// Params returns the current values without advancing.
	Params() Params

	// Enter sets the soundscape up when the chapter begins.
	Enter(d *audio.Director)
	Title(d *audio.Director, elapsed time.Duration)
	// Cue plays the experience sounds for the values produced by the last Step.
	Cue(d *audio.Director, in Input)
	Reflection(d *audio.Director, elapsed time.Duration)
	// Depart plays while transitioning out of this chapter, p in [0,1].
	Depart(d *audio.Director, p float64)
}

// Options selects between the deployment variants.
type Options struct {
	// KomorebiGesture is "spread" or "raise".
	KomorebiGesture string `toml:"komorebi-gesture" env:"KOMOREBI_GESTURE"`
	// LightFloor is the minimum light target that counts as spreading.
	LightFloor float64 `toml:"light-floor" env:"LIGHT_FLOOR"`
}

// Komorebi gesture variants.
const (
	GestureSpread = "spread"
	GestureRaise  = "raise"
)

// DefaultOptions returns the finger-spread Komorebi gesture.
func DefaultOptions() Options {
	return Options{KomorebiGesture: GestureSpread, LightFloor: 0.4}
}

// Validate rejects unknown variants.
func (o Options) Validate() error {
	switch o.KomorebiGesture {
	case GestureSpread, GestureRaise:
	default:
		return fmt.Errorf("unknown komorebi gesture %q", o.KomorebiGesture)
	}
	if o.LightFloor < 0 || o.LightFloor > 1 {
		return fmt.Errorf("light floor %v outside [0,1]", o.LightFloor)
	}
	return nil
}

// Behaviors builds one Behavior per chapter, in journey order.
func Behaviors(opts Options) []Behavior {
	return []Behavior{
		newHygge(),
		newKomorebi(opts),
		newFernweh(),
	}
}

func hold(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

func progressOver(elapsed, window time.Duration) float64 {
	p := float64(elapsed) / float64(window)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
