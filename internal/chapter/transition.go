package chapter

import (
	"time"

	"github.com/ayusman/beyondwords/internal/interp"
)

// Transition styles.
const (
	StyleScripted = "scripted"
	StyleSimple   = "simple"
)

// SimpleDuration is the length of every transition in the simple style.
const SimpleDuration = 3 * time.Second

// revealWindow is how long before the end of a scripted transition the next
// word starts to appear.
const revealWindow = 3 * time.Second

// Line is one sentence of a transition, shown from At for For.
type Line struct {
	Text string
	At   time.Duration
	For  time.Duration
	Size float64
}

// Script is the timed sequence played between two chapters.
type Script struct {
	Total time.Duration
	Lines []Line
	// Eased blends colours with smoothstep instead of linearly and reveals
	// the next word at the end.
	Eased bool
}

var scripts = []Script{
	{ // from safety to wonder
		Total: 15000 * time.Millisecond,
		Eased: true,
		Lines: []Line{
			{Text: "The fire dims.", At: interp.Ms(0), For: interp.Ms(3500), Size: 36},
			{Text: "Something stirs within you.", At: interp.Ms(3000), For: interp.Ms(3500), Size: 32},
			{Text: "A door opens.", At: interp.Ms(6000), For: interp.Ms(3000), Size: 38},
			{Text: "Outside, the world is waiting.", At: interp.Ms(8500), For: interp.Ms(3500), Size: 30},
			{Text: "You step into the light...", At: interp.Ms(11500), For: interp.Ms(3500), Size: 34},
		},
	},
	{ // from wonder to longing
		Total: 16500 * time.Millisecond,
		Eased: true,
		Lines: []Line{
			{Text: "The light fades.", At: interp.Ms(0), For: interp.Ms(3500), Size: 36},
			{Text: "But its warmth lingers\nin your chest.", At: interp.Ms(3000), For: interp.Ms(4000), Size: 30},
			{Text: "You look to the horizon.", At: interp.Ms(6500), For: interp.Ms(3500), Size: 34},
			{Text: "There are places\nyou have never been.", At: interp.Ms(9500), For: interp.Ms(4000), Size: 32},
			{Text: "They call to you now...", At: interp.Ms(13000), For: interp.Ms(3500), Size: 36},
		},
	},
}

// ScriptFor returns the script that leaves chapter from. Chapters without a
// script of their own reuse the first one.
func ScriptFor(from int, style string) Script {
	if style == StyleSimple {
		return Script{Total: SimpleDuration}
	}
	if from < 0 || from >= len(scripts) {
		return scripts[0]
	}
	return scripts[from]
}

// VisibleLine is a line on screen at some instant.
type VisibleLine struct {
	Text  string  `json:"text"`
	Size  float64 `json:"size"`
	Alpha float64 `json:"alpha"`
}

// Preview is the next chapter's word fading in at the end of a transition.
type Preview struct {
	Word         string  `json:"word"`
	Native       string  `json:"native"`
	Meaning      string  `json:"meaning"`
	Color        Color   `json:"color"`
	Alpha        float64 `json:"alpha"`
	NativeAlpha  float64 `json:"native_alpha"`
	MeaningAlpha float64 `json:"meaning_alpha"`
}

// TransitionView is what the renderer needs on one transition frame.
type TransitionView struct {
	From           int           `json:"from"`
	To             int           `json:"to"`
	Progress       float64       `json:"progress"`
	Eased          float64       `json:"eased"`
	Background     Color         `json:"background"`
	Letterbox      float64       `json:"letterbox"`
	TravellerAlpha float64       `json:"traveller_alpha"`
	TravellerHue   float64       `json:"traveller_hue"`
	Lines          []VisibleLine `json:"lines,omitempty"`
	Preview        *Preview      `json:"preview,omitempty"`
}

// Progress returns elapsed/Total clamped to [0,1] and its eased form.
func (s Script) Progress(elapsed time.Duration) (p, eased float64) {
	p = interp.Clamp01(float64(elapsed) / float64(s.Total))
	if s.Eased {
		return p, interp.Smoothstep(p)
	}
	return p, p
}

// View renders the script at elapsed for the move from one chapter to the
// next.
func (s Script) View(elapsed time.Duration, from, to int) TransitionView {
	a, b := Get(from), Get(to)
	p, e := s.Progress(elapsed)

	v := TransitionView{
		From:     from,
		To:       to,
		Progress: p,
		Eased:    e,
		Background: Color{
			H: interp.Lerp(a.Color.H, b.Color.H, e),
			S: interp.Lerp(a.Color.S, b.Color.S, e) * 0.1,
			B: interp.Lerp(5, 4, interp.Arc(p)),
		},
		TravellerHue:   interp.Lerp(a.Color.H, b.Color.H, e),
		TravellerAlpha: 0.2 + interp.Arc(p)*0.3,
	}
	if !s.Eased {
		return v
	}

	v.Letterbox = interp.Arc(p) * 70
	for _, l := range s.Lines {
		if alpha, ok := l.Alpha(elapsed); ok {
			v.Lines = append(v.Lines, VisibleLine{Text: l.Text, Size: l.Size, Alpha: alpha})
		}
	}

	if elapsed > s.Total-revealWindow {
		rp := interp.MapClamp(float64(elapsed), float64(s.Total-revealWindow), float64(s.Total), 0, 1)
		alpha := rp * rp * 80
		pv := &Preview{
			Word:        b.Word,
			Native:      b.Native,
			Meaning:     b.Meaning,
			Color:       b.Color,
			Alpha:       alpha,
			NativeAlpha: alpha * 0.5,
		}
		if rp > 0.4 {
			pv.MeaningAlpha = interp.MapClamp(rp, 0.4, 1, 0, 60)
		}
		v.Preview = pv
	}
	return v
}

// Alpha returns the line's opacity at elapsed: a fade in over the first
// quarter, full at 90, a fade out over the last quarter. ok is false outside
// the line's window.
func (l Line) Alpha(elapsed time.Duration) (alpha float64, ok bool) {
	lp := float64(elapsed-l.At) / float64(l.For)
	if lp <= 0 || lp >= 1 {
		return 0, false
	}
	switch {
	case lp < 0.25:
		return interp.Map(lp, 0, 0.25, 0, 90), true
	case lp > 0.75:
		return interp.Map(lp, 0.75, 1, 90, 0), true
	default:
		return 90, true
	}
}
