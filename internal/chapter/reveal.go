package chapter

import (
	"math"
	"time"

	"github.com/ayusman/beyondwords/internal/interp"
)

// Cue fades one text element in over a window of the phase.
type Cue struct {
	Name string
	Fade interp.Fade
}

// Schedule is the staggered reveal of a phase's text.
type Schedule []Cue

func cue(name string, startMs, endMs int, to float64) Cue {
	return Cue{Name: name, Fade: interp.Fade{Start: interp.Ms(startMs), End: interp.Ms(endMs), To: to}}
}

var (
	TitleReveal = Schedule{
		cue("label", 0, 500, 50),
		cue("word", 300, 1000, 100),
		cue("native", 500, 1100, 70),
		cue("sub", 700, 1300, 55),
		cue("meaning", 900, 1500, 90),
		cue("narrative", 1200, 1800, 70),
		cue("instruction", 1800, 2400, 65),
	}

	ReflectionReveal = Schedule{
		cue("label", 0, 600, 50),
		cue("word", 300, 900, 100),
		cue("native", 400, 1000, 65),
		cue("meaning", 600, 1200, 80),
		cue("method", 900, 1500, 50),
	}

	CompleteReveal = Schedule{
		cue("title", 0, 800, 100),
		cue("words", 500, 1500, 80),
		cue("sub", 800, 1800, 60),
		cue("question", 1500, 2500, 90),
		cue("method", 2000, 3000, 50),
	}
)

// Alphas evaluates every cue at elapsed.
func (s Schedule) Alphas(elapsed time.Duration) map[string]float64 {
	out := make(map[string]float64, len(s)+1)
	for _, c := range s {
		out[c.Name] = c.Fade.At(elapsed)
	}
	return out
}

// Prompt is the pulsing "show your hand" invitation. It is hidden until
// after has passed, then breathes around base.
func Prompt(elapsed, after time.Duration, base float64) float64 {
	if elapsed <= after {
		return 0
	}
	return math.Sin(float64(elapsed.Milliseconds())*0.004)*20 + base
}
