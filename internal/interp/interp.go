// Package interp holds the small numeric helpers that turn noisy sensor
// values into slow, continuous control values.
package interp

import (
	"math"
	"time"
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Lerp blends from a to b by t. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Map re-maps v from [inLo, inHi] to [outLo, outHi] without clamping.
// Either range may be reversed.
func Map(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	return Lerp(outLo, outHi, (v-inLo)/(inHi-inLo))
}

// MapClamp is Map with the result held inside the output range.
func MapClamp(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		if v >= inHi {
			return outHi
		}
		return outLo
	}
	return Lerp(outLo, outHi, Clamp01((v-inLo)/(inHi-inLo)))
}

// Smoothstep eases p in [0,1] as p²(3-2p). p is clamped first.
func Smoothstep(p float64) float64 {
	p = Clamp01(p)
	return p * p * (3 - 2*p)
}

// Arc is sin(πp): 0 at both ends of a window, 1 in the middle.
func Arc(p float64) float64 {
	return math.Sin(math.Pi * Clamp01(p))
}

// Smoother is a first-order IIR filter: each Step moves Value a fixed
// fraction Alpha of the way toward the target.
type Smoother struct {
	Value float64
	Alpha float64
}

// NewSmoother returns a Smoother starting at initial.
func NewSmoother(initial, alpha float64) Smoother {
	return Smoother{Value: initial, Alpha: alpha}
}

// Step advances one tick toward target and returns the new value.
// Alpha is clamped to [0,1], so the value never overshoots a fixed target.
func (s *Smoother) Step(target float64) float64 {
	s.Value += (target - s.Value) * Clamp01(s.Alpha)
	return s.Value
}

// Reset jumps straight to v.
func (s *Smoother) Reset(v float64) {
	s.Value = v
}

// Fade is a time-windowed ramp: From until Start, To after End, linear in
// between.
type Fade struct {
	Start time.Duration
	End   time.Duration
	From  float64
	To    float64
}

// At evaluates the ramp at elapsed time since the window's origin.
func (f Fade) At(elapsed time.Duration) float64 {
	return MapClamp(float64(elapsed), float64(f.Start), float64(f.End), f.From, f.To)
}

// Ms is shorthand for building durations from the millisecond constants the
// reveal and script tables are written in.
func Ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
