// Package scene lays out the particles and landscape a chapter starts from.
// The renderer animates them; the layout is sent once when a chapter resets.
package scene

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/ayusman/beyondwords/internal/chapter"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/interp"
)

// Particle is a traveller that drifts through every chapter.
type Particle struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
	Hue  float64 `json:"hue"`
}

// Ember rises from the Hygge hearth.
type Ember struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
	Hue  float64 `json:"hue"`
	Life float64 `json:"life"`
}

// Ray is a shaft of Komorebi light.
type Ray struct {
	X          float64 `json:"x"`
	Width      float64 `json:"width"`
	Brightness float64 `json:"brightness"`
	Phase      float64 `json:"phase"`
}

// Leaf falls through the Komorebi canopy.
type Leaf struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Size      float64 `json:"size"`
	Rotation  float64 `json:"rotation"`
	FallSpeed float64 `json:"fall_speed"`
}

// Star is a point in the Fernweh sky; Z is its distance.
type Star struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Size       float64 `json:"size"`
	Brightness float64 `json:"brightness"`
	Twinkle    float64 `json:"twinkle"`
}

// Mist is a band of haze near the horizon.
type Mist struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Speed float64 `json:"speed"`
	Alpha float64 `json:"alpha"`
}

// Memory is the silhouette of a place never visited.
type Memory struct {
	X     float64 `json:"x"`
	Kind  string  `json:"kind"`
	Size  float64 `json:"size"`
	Phase float64 `json:"phase"`
	Speed float64 `json:"speed"`
}

// Ridge is one mountain layer: a y value every Step pixels across the
// viewport.
type Ridge struct {
	Step float64       `json:"step"`
	Fill chapter.Color `json:"fill"`
	Y    []float64     `json:"y"`
}

// Layout is the starting state for one chapter's visuals.
type Layout struct {
	Chapter    int              `json:"chapter"`
	Viewport   gesture.Viewport `json:"viewport"`
	Travellers []Particle       `json:"travellers"`
	Embers     []Ember          `json:"embers,omitempty"`
	Rays       []Ray            `json:"rays,omitempty"`
	Leaves     []Leaf           `json:"leaves,omitempty"`
	Stars      []Star           `json:"stars,omitempty"`
	Mist       []Mist           `json:"mist,omitempty"`
	Memories   []Memory         `json:"memories,omitempty"`
	Ridges     []Ridge          `json:"ridges,omitempty"`
}

// Population sizes.
const (
	NumTravellers = 30
	NumEmbers     = 200
	NumRays       = 12
	NumLeaves     = 25
	NumStars      = 400
	NumMist       = 8
	NumMemories   = 6
)

// HorizonFraction places the Fernweh horizon this far down the viewport.
const HorizonFraction = 0.42

var memoryKinds = []string{"spire", "dome", "tower", "arch", "tree"}

type ridgeSpec struct {
	step, base, amp, freq, offset float64
	fill                          chapter.Color
}

// far to near
var ridgeSpecs = []ridgeSpec{
	{step: 25, base: 20, amp: 80, freq: 0.003, offset: 100, fill: chapter.Color{H: 270, S: 35, B: 14}},
	{step: 20, base: 50, amp: 70, freq: 0.005, offset: 50, fill: chapter.Color{H: 265, S: 30, B: 10}},
	{step: 15, base: 80, amp: 50, freq: 0.008, offset: 0, fill: chapter.Color{H: 260, S: 25, B: 7}},
}

// Generate builds the layout for chapter idx. The same seed and viewport
// always give the same layout.
func Generate(idx int, vp gesture.Viewport, seed int64) Layout {
	r := rand.New(rand.NewSource(seed))
	g := gen{r: r, w: vp.Width, h: vp.Height}

	l := Layout{Chapter: idx, Viewport: vp, Travellers: g.travellers(chapter.Get(idx).Color.H)}
	switch idx {
	case chapter.Hygge:
		l.Embers = g.embers()
	case chapter.Komorebi:
		l.Rays = g.rays()
		l.Leaves = g.leaves()
	case chapter.Fernweh:
		l.Stars = g.stars()
		l.Mist = g.mist()
		l.Memories = g.memories()
		l.Ridges = ridges(vp, seed)
	}
	return l
}

type gen struct {
	r    *rand.Rand
	w, h float64
}

func (g gen) between(lo, hi float64) float64 {
	return lo + g.r.Float64()*(hi-lo)
}

func (g gen) travellers(hue float64) []Particle {
	out := make([]Particle, NumTravellers)
	for i := range out {
		out[i] = Particle{
			X:    g.between(0, g.w),
			Y:    g.between(0, g.h),
			Size: g.between(3, 8),
			Hue:  hue,
		}
	}
	return out
}

func (g gen) embers() []Ember {
	out := make([]Ember, NumEmbers)
	for i := range out {
		out[i] = Ember{
			X:    g.between(0, g.w),
			Y:    g.between(0, g.h),
			Size: g.between(3, 10),
			Hue:  g.between(20, 45),
			Life: g.between(0, 200),
		}
	}
	return out
}

func (g gen) rays() []Ray {
	out := make([]Ray, NumRays)
	for i := range out {
		out[i] = Ray{
			X:          g.between(0, g.w),
			Width:      g.between(80, 200),
			Brightness: g.between(50, 90),
			Phase:      g.between(0, 2*math.Pi),
		}
	}
	return out
}

func (g gen) leaves() []Leaf {
	out := make([]Leaf, NumLeaves)
	for i := range out {
		out[i] = Leaf{
			X:         g.between(0, g.w),
			Y:         g.between(-100, g.h),
			Size:      g.between(45, 95),
			Rotation:  g.between(0, 2*math.Pi),
			FallSpeed: g.between(0.4, 1.0),
		}
	}
	return out
}

func (g gen) stars() []Star {
	out := make([]Star, NumStars)
	for i := range out {
		out[i] = Star{
			X:          g.between(-g.w, g.w*2),
			Y:          g.between(-g.h, g.h*0.6),
			Z:          g.between(1, 15),
			Size:       g.between(1, 4),
			Brightness: g.between(40, 100),
			Twinkle:    g.between(0, 2*math.Pi),
		}
	}
	return out
}

func (g gen) mist() []Mist {
	out := make([]Mist, NumMist)
	for i := range out {
		out[i] = Mist{
			X:     g.between(0, g.w),
			Y:     g.between(g.h*0.35, g.h*0.65),
			W:     g.between(300, 600),
			H:     g.between(50, 120),
			Speed: g.between(0.1, 0.4),
			Alpha: g.between(20, 50),
		}
	}
	return out
}

func (g gen) memories() []Memory {
	out := make([]Memory, NumMemories)
	for i := range out {
		out[i] = Memory{
			X:     g.between(g.w*0.1, g.w*0.9),
			Kind:  memoryKinds[g.r.Intn(len(memoryKinds))],
			Size:  g.between(30, 70),
			Phase: g.between(0, 2*math.Pi),
			Speed: g.between(0.002, 0.005),
		}
	}
	return out
}

// ridges samples one perlin generator per layer so each layer has its own
// silhouette.
func ridges(vp gesture.Viewport, seed int64) []Ridge {
	horizon := vp.Height * HorizonFraction
	out := make([]Ridge, 0, len(ridgeSpecs))
	for i, s := range ridgeSpecs {
		noise := perlin.NewPerlin(2, 2, 3, seed+int64(i))
		n := int(vp.Width/s.step) + 1
		ys := make([]float64, n)
		for j := range ys {
			x := float64(j) * s.step
			v := interp.Clamp01((noise.Noise1D(x*s.freq+s.offset) + 1) / 2)
			ys[j] = horizon + s.base - v*s.amp
		}
		out = append(out, Ridge{Step: s.step, Fill: s.fill, Y: ys})
	}
	return out
}
