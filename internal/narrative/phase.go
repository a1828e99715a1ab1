// Package narrative owns the journey: which chapter the visitor is in, which
// phase of it, and what the renderer and soundscape should do this frame.
package narrative

import (
	"fmt"
	"time"

	"github.com/ayusman/beyondwords/internal/chapter"
)

// Phase is the stage within a chapter.
type Phase int

const (
	PhaseTitle Phase = iota
	PhaseExperience
	PhaseReflection
	PhaseTransition
	PhaseComplete
)

var phaseNames = [...]string{"title", "experience", "reflection", "transition", "complete"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for i, n := range phaseNames {
		if n == s {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// Timing holds the durations that gate phase changes.
type Timing struct {
	// TitleMin is how long a title shows before a hand can start the chapter.
	TitleMin time.Duration `toml:"title-min" env:"TITLE_MIN"`
	// ReflectionMin is how long the reflection shows before a hand moves on.
	ReflectionMin time.Duration `toml:"reflection-min" env:"REFLECTION_MIN"`
	// Hold is how long the gesture must be held.
	Hold time.Duration `toml:"hold" env:"HOLD"`
	// Grace tolerates gaps in the gesture shorter than this. Zero means a
	// single missed frame restarts the hold.
	Grace time.Duration `toml:"grace" env:"GRACE"`
	// CompletionPrompt is when the final screen starts inviting a hand.
	CompletionPrompt time.Duration `toml:"completion-prompt" env:"COMPLETION_PROMPT"`
	// CompletionDelay is the earliest a hand can fire the completion signal.
	CompletionDelay time.Duration `toml:"completion-delay" env:"COMPLETION_DELAY"`
	// TransitionStyle is "scripted" or "simple".
	TransitionStyle string `toml:"transition-style" env:"TRANSITION_STYLE"`
}

// DefaultTiming returns the installation's timings.
func DefaultTiming() Timing {
	return Timing{
		TitleMin:         2500 * time.Millisecond,
		ReflectionMin:    2000 * time.Millisecond,
		Hold:             5 * time.Second,
		Grace:            0,
		CompletionPrompt: 3500 * time.Millisecond,
		CompletionDelay:  4000 * time.Millisecond,
		TransitionStyle:  chapter.StyleScripted,
	}
}

// Validate rejects timings the machine cannot run with.
func (t Timing) Validate() error {
	for name, d := range map[string]time.Duration{
		"title-min":         t.TitleMin,
		"reflection-min":    t.ReflectionMin,
		"hold":              t.Hold,
		"completion-prompt": t.CompletionPrompt,
		"completion-delay":  t.CompletionDelay,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	if t.Grace < 0 {
		return fmt.Errorf("grace must not be negative, got %v", t.Grace)
	}
	if t.Grace >= t.Hold {
		return fmt.Errorf("grace %v must be shorter than hold %v", t.Grace, t.Hold)
	}
	switch t.TransitionStyle {
	case chapter.StyleScripted, chapter.StyleSimple:
	default:
		return fmt.Errorf("unknown transition style %q", t.TransitionStyle)
	}
	return nil
}
