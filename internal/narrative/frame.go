package narrative

import (
	"time"

	"github.com/ayusman/beyondwords/internal/chapter"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/scene"
)

// Frame is everything the presentation side needs for one tick.
type Frame struct {
	Seq     uint64          `json:"seq"`
	At      time.Time       `json:"at"`
	Phase   Phase           `json:"phase"`
	Chapter int             `json:"chapter"`
	Text    chapter.Chapter `json:"text"`
	// Elapsed is the time since the current phase was entered.
	Elapsed  time.Duration    `json:"elapsed"`
	Viewport gesture.Viewport `json:"viewport"`

	HandDetected  bool                  `json:"hand_detected"`
	Hands         []gesture.Observation `json:"hands"`
	GestureActive bool                  `json:"gesture_active"`
	Progress      float64               `json:"progress"`
	SecondsLeft   int                   `json:"seconds_left"`

	Params         chapter.Params          `json:"params,omitempty"`
	Alphas         map[string]float64      `json:"alphas,omitempty"`
	Background     chapter.Color           `json:"background"`
	TravellerAlpha float64                 `json:"traveller_alpha"`
	Transition     *chapter.TransitionView `json:"transition,omitempty"`

	Signals Signals `json:"signals"`
}

// Signals are the discrete events raised on this frame.
type Signals struct {
	// Started is set on the first frame of a journey, including after a
	// restart.
	Started bool `json:"started,omitempty"`
	// PhaseChanged is set on the first frame of a new phase.
	PhaseChanged bool `json:"phase_changed,omitempty"`
	// ResetChapter carries the fresh layout when a chapter's visuals restart.
	ResetChapter *ChapterReset `json:"reset_chapter,omitempty"`
	// StopAmbient asks for every chapter layer to fade out.
	StopAmbient bool `json:"stop_ambient,omitempty"`
	// Completion fires once per journey, when a hand returns to the final
	// screen.
	Completion bool `json:"completion,omitempty"`
}

// ChapterReset announces that a chapter starts from a new layout. The layout
// is large and travels separately from the frame.
type ChapterReset struct {
	Chapter int          `json:"chapter"`
	Scene   scene.Layout `json:"-"`
}

// Any reports whether any signal is raised.
func (s Signals) Any() bool {
	return s.Started || s.PhaseChanged || s.ResetChapter != nil || s.StopAmbient || s.Completion
}
