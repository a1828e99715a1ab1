package chapter

import (
	"time"

	"github.com/ayusman/beyondwords/internal/audio"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/interp"
)

// Komorebi parameters.
const (
	ParamLight = "light"
	ParamHandY = "hand_y"
	ParamPool  = "pool"
)

var pentatonic = []string{"D5", "E5", "G5", "A5", "B5", "D6"}

// komorebi lets light through an open hand; the higher the hand, the more
// light.
type komorebi struct {
	gesture gesture.Predicate
	light   interp.Smoother
	handY   interp.Smoother
	open    bool
}

func newKomorebi(opts Options) *komorebi {
	k := &komorebi{}
	switch opts.KomorebiGesture {
	case GestureRaise:
		k.gesture = gesture.Above(0.5)
	default:
		floor := opts.LightFloor
		k.gesture = gesture.AllOf(gesture.Open, func(o gesture.Observation, vp gesture.Viewport) bool {
			return LightTarget(o, vp) >= floor
		})
	}
	k.Reset(gesture.Viewport{})
	return k
}

// LightTarget is the light level an open hand at o asks for: 0.4 at the
// bottom of the viewport up to 1 at the top.
func LightTarget(o gesture.Observation, vp gesture.Viewport) float64 {
	return interp.MapClamp(o.Y, vp.Height, 0, 0.4, 1)
}

func (k *komorebi) Chapter() Chapter           { return chapters[Komorebi] }
func (k *komorebi) Gesture() gesture.Predicate { return k.gesture }
func (k *komorebi) Background() Color          { return Color{H: 135, S: 45, B: 8} }

func (k *komorebi) Reset(vp gesture.Viewport) {
	k.light = interp.NewSmoother(0, 0.04)
	k.handY = interp.NewSmoother(0.5, 0.08)
	k.open = false
}

func (k *komorebi) Step(in Input) Params {
	target := 0.15
	k.open = false
	if o, ok := in.Primary(); ok {
		if in.Viewport.Height > 0 {
			k.handY.Step(o.Y / in.Viewport.Height)
		}
		if o.Open {
			target = LightTarget(o, in.Viewport)
			k.open = true
		} else {
			target = 0.2
		}
	}
	k.light.Step(target)
	return k.Params()
}

func (k *komorebi) Params() Params {
	l := k.light.Value
	msg, pool := 0.0, 0.0
	if l > 0.5 {
		msg = (l - 0.5) * 50
	}
	if k.open {
		pool = 250 * l
	}
	return Params{
		ParamLight:    l,
		ParamHandY:    k.handY.Value,
		ParamPool:     pool,
		ParamVignette: 0.5 - l*0.2,
		ParamMessage:  msg,
	}
}

func (k *komorebi) Enter(d *audio.Director) {
	d.StopAll()
	d.Forget(audio.VoicePad)
}

// Title scatters soft chimes like distant birds.
func (k *komorebi) Title(d *audio.Director, elapsed time.Duration) {
	p := progressOver(elapsed, 3*time.Second)
	if p > 0.3 && d.Chance(0.008) {
		d.Play(audio.VoiceChime, d.Pick("G5", "A5", "D6"), "4n", 0.15)
	}
}

func (k *komorebi) Cue(d *audio.Director, in Input) {
	l := k.light.Value

	if l > 0.35 && d.Chance(0.015*l) {
		d.Play(audio.VoiceChime, d.Pick(pentatonic...), "4n", interp.Map(l, 0.35, 1, 0.15, 0.5))
	}

	// The pad has hysteresis: on above 0.3, off at 0.2.
	if l > 0.3 {
		d.Attack(audio.VoicePad, "D4")
	} else if l <= 0.2 {
		d.Release(audio.VoicePad)
	}

	gain := 0.0
	if l > 0.4 {
		gain = interp.Map(l, 0.4, 1, 0, 0.05)
	}
	d.Ramp(audio.KomorebiDroneGain, gain, 0.8)
	d.Ramp(audio.KomorebiReverbWet, interp.Map(l, 0, 1, 0.7, 0.3), 0.5)
}

func (k *komorebi) Reflection(d *audio.Director, elapsed time.Duration) {
	p := progressOver(elapsed, 2500*time.Millisecond)
	if p < 0.2 && d.Chance(0.02) {
		d.Play(audio.VoiceChime, "D5", "2n", 0.25)
	}
	d.Ramp(audio.KomorebiDroneGain, interp.MapClamp(p, 0, 0.8, 0.03, 0), 0.5)
}

// Depart fades the forest and wakes the longing drone.
func (k *komorebi) Depart(d *audio.Director, p float64) {
	d.Ramp(audio.KomorebiDroneGain, interp.MapClamp(p, 0, 0.4, 0.04, 0), 0.5)

	if p > 0.3 && p < 0.35 && d.Chance(0.1) {
		d.Play(audio.VoiceChime, "A4", "2n", 0.3)
	}

	if p > 0.5 {
		d.Ramp(audio.FernwehDroneGain, interp.MapClamp(p, 0.5, 1, 0, 0.08), 0.8)
		if p > 0.6 {
			d.Attack(audio.VoiceYearn, "A1", "E2", "A2")
		}
		d.Ramp(audio.FernwehFilter, interp.MapClamp(p, 0.5, 1, 100, 400), 0.5)
	}

	if p > 0.8 {
		d.Ramp(audio.FernwehWhistleGain, interp.MapClamp(p, 0.8, 1, 0, 0.02), 0.5)
	}
}
