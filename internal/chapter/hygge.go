package chapter

import (
	"time"

	"github.com/ayusman/beyondwords/internal/audio"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/interp"
)

// Hygge parameters.
const (
	ParamWarmth  = "warmth"
	ParamCenterX = "center_x"
	ParamCenterY = "center_y"
)

// hygge gathers warmth around an open palm; the hearth follows the hand.
type hygge struct {
	warmth  interp.Smoother
	glow    interp.Smoother
	centerX interp.Smoother
	centerY interp.Smoother
	holding bool
}

func newHygge() *hygge {
	h := &hygge{}
	h.Reset(gesture.Viewport{})
	return h
}

func (h *hygge) Chapter() Chapter           { return chapters[Hygge] }
func (h *hygge) Gesture() gesture.Predicate { return gesture.Open }
func (h *hygge) Background() Color          { return Color{H: 15, S: 40, B: 6} }

func (h *hygge) Reset(vp gesture.Viewport) {
	cx, cy := vp.Center()
	h.warmth = interp.NewSmoother(0, 0.05)
	h.glow = interp.NewSmoother(0, 0.03)
	h.centerX = interp.NewSmoother(cx, 0.05)
	h.centerY = interp.NewSmoother(cy, 0.05)
	h.holding = false
}

func (h *hygge) Step(in Input) Params {
	target := 0.0
	tx, ty := in.Viewport.Center()
	if o, ok := in.Primary(); ok {
		tx, ty = o.X, o.Y
		if o.Open {
			target = 0.8
		} else {
			target = 0.3
		}
	}

	w := h.warmth.Step(target)
	h.centerX.Step(tx)
	h.centerY.Step(ty)
	h.glow.Step(w * 400)
	h.holding = in.Holding
	return h.Params()
}

func (h *hygge) Params() Params {
	w := h.warmth.Value
	msg := 0.0
	if w > 0.5 {
		msg = (w - 0.5) * 40
	}
	return Params{
		ParamWarmth:   w,
		ParamGlow:     h.glow.Value,
		ParamCenterX:  h.centerX.Value,
		ParamCenterY:  h.centerY.Value,
		ParamVignette: 0.6 - w*0.3,
		ParamMessage:  msg,
		"holding":     hold(h.holding),
	}
}

func (h *hygge) Enter(d *audio.Director) {
	d.StopAll()
	d.Ramp(audio.HyggeWindFilter, 600, 0.5)
}

// Title keeps the cold wind present before warmth arrives.
func (h *hygge) Title(d *audio.Director, elapsed time.Duration) {
	d.Ramp(audio.HyggeWindFilter, 500, 0.5)
}

func (h *hygge) Cue(d *audio.Director, in Input) {
	w := h.warmth.Value

	d.Ramp(audio.HyggeWindFilter, interp.Map(w, 0, 1, 600, 80), 0.5)

	hum := 0.0
	if w > 0.4 {
		hum = interp.Map(w, 0.4, 1, 0, 0.15)
	}
	d.Ramp(audio.HyggeHumGain, hum, 0.4)
	d.Ramp(audio.HyggeHumFilter, interp.Map(w, 0, 1, 120, 350), 0.4)

	// crackle
	if w > 0.5 && d.Chance(0.008) {
		d.Ramp(audio.HyggeHumModulation, d.Uniform(3, 8), 0.1)
		d.RampAfter(0.1, audio.HyggeHumModulation, 2, 0.3)
	}
}

func (h *hygge) Reflection(d *audio.Director, elapsed time.Duration) {
	p := progressOver(elapsed, 2500*time.Millisecond)
	d.Ramp(audio.HyggeHumGain, interp.MapClamp(p, 0, 1, 0.08, 0.02), 0.5)
	d.Ramp(audio.HyggeWindFilter, 100, 1)
}

// Depart lets the fire die, the wind return through the open door and the
// forest begin.
func (h *hygge) Depart(d *audio.Director, p float64) {
	d.Ramp(audio.HyggeHumGain, interp.MapClamp(p, 0, 0.4, 0.1, 0), 0.3)
	d.Ramp(audio.HyggeWindFilter, interp.MapClamp(p, 0.2, 0.5, 100, 500), 0.5)

	if p > 0.5 && p < 0.7 && d.Chance(0.03) {
		d.Play(audio.VoiceChime, d.Pick("E5", "G5", "A5"), "8n", 0.2)
	}

	if p > 0.6 {
		d.Ramp(audio.KomorebiDroneGain, interp.MapClamp(p, 0.6, 1, 0, 0.04), 0.5)
		if p > 0.7 {
			d.Attack(audio.VoicePad, "D4")
		}
	}
}
