package chapter

import (
	"math"
	"time"

	"github.com/ayusman/beyondwords/internal/audio"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/interp"
)

// Fernweh parameters.
const (
	ParamSpeed    = "speed"
	ParamDistance = "distance"
	ParamTier     = "message_tier"
	ParamFigure   = "figure_alpha"
)

// fernweh travels toward the horizon as the hand reaches for the camera or
// rises.
type fernweh struct {
	speed    interp.Smoother
	distance float64
}

func newFernweh() *fernweh {
	f := &fernweh{}
	f.Reset(gesture.Viewport{})
	return f
}

func (f *fernweh) Chapter() Chapter { return chapters[Fernweh] }

func (f *fernweh) Gesture() gesture.Predicate {
	return gesture.AnyOf(gesture.Nearer(0.3), gesture.Above(0.5))
}

func (f *fernweh) Background() Color { return Color{H: 270, S: 55, B: 5} }

func (f *fernweh) Reset(vp gesture.Viewport) {
	f.speed = interp.NewSmoother(0, 0.04)
	f.distance = 0
}

func (f *fernweh) Step(in Input) Params {
	target := 0.0
	if o, ok := in.Primary(); ok {
		rise := interp.MapClamp(o.Y, in.Viewport.Height, 0, 0, 0.3)
		target = math.Max(interp.Clamp01(o.Depth), rise)
	}
	s := f.speed.Step(target)
	f.distance += s * 5
	return f.Params()
}

func (f *fernweh) Params() Params {
	s := f.speed.Value
	msg, tier := 0.0, 0.0
	if s > 0.2 {
		msg = interp.MapClamp(s, 0.2, 0.8, 0, 65)
		switch {
		case s > 0.6:
			tier = 3
		case s > 0.4:
			tier = 2
		default:
			tier = 1
		}
	}
	return Params{
		ParamSpeed:    s,
		ParamDistance: f.distance,
		ParamGlow:     0.25 + s*0.75,
		ParamVignette: 0.55 - s*0.15,
		ParamMessage:  msg,
		ParamTier:     tier,
		ParamFigure:   40 + s*30,
	}
}

func (f *fernweh) Enter(d *audio.Director) {
	d.StopAll()
	d.Forget(audio.VoiceYearn)
}

// Title builds a low anticipatory drone.
func (f *fernweh) Title(d *audio.Director, elapsed time.Duration) {
	p := progressOver(elapsed, 3*time.Second)
	if p > 0.2 {
		d.Attack(audio.VoiceYearn, "A1", "E2")
	}
	d.Ramp(audio.FernwehDroneGain, interp.MapClamp(p, 0.2, 1, 0, 0.06), 0.8)
	d.Ramp(audio.FernwehFilter, 200, 1)
}

func (f *fernweh) Cue(d *audio.Director, in Input) {
	s := f.speed.Value

	// Dm7, unresolved. On above 0.1, off at 0.05.
	if s > 0.1 {
		d.Attack(audio.VoiceYearn, "D2", "A2", "F3", "C4")
	} else if s <= 0.05 {
		d.Release(audio.VoiceYearn)
	}

	gain := 0.0
	if s > 0.1 {
		gain = interp.Map(s, 0.1, 1, 0.03, 0.16)
	}
	d.Ramp(audio.FernwehDroneGain, gain, 0.8)
	d.Ramp(audio.FernwehFilter, interp.Map(s, 0, 1, 120, 700), 0.6)

	whistle := 0.0
	if s > 0.3 {
		whistle = interp.Map(s, 0.3, 1, 0, 0.035)
	}
	d.Ramp(audio.FernwehWhistleGain, whistle, 1)
	waver := math.Sin(float64(in.Uptime.Milliseconds())*0.001) * 200
	d.Ramp(audio.FernwehWhistleFilter, 900+waver*s, 0.3)

	if s > 0.5 && d.Chance(0.003) {
		d.Play(audio.VoiceChime, d.Pick("D4", "F4", "A4"), "1n", 0.15)
	}
}

func (f *fernweh) Reflection(d *audio.Director, elapsed time.Duration) {
	p := progressOver(elapsed, 2500*time.Millisecond)
	d.Ramp(audio.FernwehDroneGain, interp.MapClamp(p, 0, 1, 0.1, 0.03), 0.8)
	d.Ramp(audio.FernwehFilter, 150, 1)
}

// Depart is silent: nothing follows the last chapter.
func (f *fernweh) Depart(d *audio.Director, p float64) {}

// Finale plays the resolution once the journey is complete.
func Finale(d *audio.Director, elapsed time.Duration) {
	p := progressOver(elapsed, 5*time.Second)

	if elapsed < 500*time.Millisecond && d.Once("finale-chord") {
		d.Forget(audio.VoiceYearn)
		d.Attack(audio.VoiceYearn, "A2", "D3", "F#3", "A3")
	}

	d.Ramp(audio.FernwehDroneGain, interp.MapClamp(p, 0, 0.8, 0.1, 0.02), 1)

	if p > 0.2 && p < 0.5 && d.Chance(0.01) {
		d.Play(audio.VoiceChime, d.Pick("A4", "D5", "F#5"), "2n", 0.2)
	}

	d.Ramp(audio.FernwehFilter, 300, 2)
}
