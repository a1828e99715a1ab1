package narrative

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/audio"
	"github.com/ayusman/beyondwords/internal/chapter"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/metrics"
	"github.com/ayusman/beyondwords/internal/scene"
)

// Backdrops for the phases that do not use the chapter's own.
var completeBackground = chapter.Color{H: 260, S: 35, B: 6}

// Traveller opacity outside transitions.
const (
	titleTravellers      = 0.3
	experienceTravellers = 0.5
	reflectionTravellers = 0.4
	completeTravellers   = 0.3
)

// Machine advances the journey one tick at a time. It is not safe for
// concurrent use: a single goroutine owns it and feeds it snapshots.
type Machine struct {
	timing    Timing
	behaviors []chapter.Behavior
	director  *audio.Director
	hold      *gesture.HoldTimer
	rng       *rand.Rand
	logger    zerolog.Logger

	started   bool
	startedAt time.Time
	phase     Phase
	chapter   int
	enteredAt time.Time
	completed bool
	seq       uint64
	params    chapter.Params
}

// NewMachine builds a machine over one behavior per chapter. rng seeds the
// scene layouts; director receives every audio cue.
func NewMachine(timing Timing, behaviors []chapter.Behavior, director *audio.Director, rng *rand.Rand, logger zerolog.Logger) *Machine {
	if len(behaviors) != chapter.Count {
		panic("narrative: need one behavior per chapter")
	}
	return &Machine{
		timing:    timing,
		behaviors: behaviors,
		director:  director,
		hold:      gesture.NewHoldTimer(timing.Hold, timing.Grace),
		rng:       rng,
		logger:    logger.With().Str("component", "narrative").Logger(),
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Chapter returns the current chapter index.
func (m *Machine) Chapter() int {
	return m.chapter
}

// Restart sends the journey back to the first chapter title on the next
// Step.
func (m *Machine) Restart() {
	m.started = false
}

// Step advances the machine to now with the latest hand snapshot and returns
// the frame to present. now must not go backwards between calls.
func (m *Machine) Step(now time.Time, snap gesture.Snapshot) Frame {
	metrics.FramesTicked.Inc()
	m.seq++
	f := Frame{Seq: m.seq, At: now}

	if !m.started {
		m.begin(&f, now, snap.Viewport)
	}

	detected := snap.Detected()
	elapsed := now.Sub(m.enteredAt)
	b := m.behaviors[m.chapter]
	d := m.director

	switch m.phase {
	case PhaseTitle:
		b.Title(d, elapsed)
		if elapsed > m.timing.TitleMin && detected {
			m.hold.Reset()
			m.enter(&f, PhaseExperience, now)
		}

	case PhaseExperience:
		active := gesture.Classify(b.Gesture(), snap.Hands, snap.Viewport)
		was := m.hold.Active()
		_, done := m.hold.Update(active, now)
		if m.hold.Active() != was {
			m.logger.Debug().Bool("holding", m.hold.Active()).Int("chapter", m.chapter).Msg("gesture changed")
		}
		in := chapter.Input{
			Viewport: snap.Viewport,
			Hands:    snap.Hands,
			Holding:  m.hold.Active(),
			Uptime:   now.Sub(m.startedAt),
		}
		m.params = b.Step(in)
		b.Cue(d, in)
		if done {
			metrics.HoldsCompleted.WithLabelValues(b.Chapter().Word).Inc()
			m.hold.Reset()
			d.StopAll()
			f.Signals.StopAmbient = true
			m.enter(&f, PhaseReflection, now)
		}

	case PhaseReflection:
		b.Reflection(d, elapsed)
		if elapsed > m.timing.ReflectionMin && detected {
			if m.chapter < chapter.Count-1 {
				m.enter(&f, PhaseTransition, now)
			} else {
				m.enter(&f, PhaseComplete, now)
			}
		}

	case PhaseTransition:
		script := chapter.ScriptFor(m.chapter, m.timing.TransitionStyle)
		p, _ := script.Progress(elapsed)
		b.Depart(d, p)
		if elapsed > script.Total {
			m.chapter++
			m.hold.Reset()
			m.enterChapter(&f, snap.Viewport)
			m.enter(&f, PhaseTitle, now)
		}

	case PhaseComplete:
		chapter.Finale(d, elapsed)
		if !m.completed && detected && elapsed > m.timing.CompletionDelay {
			m.completed = true
			f.Signals.Completion = true
			metrics.NarrativesCompleted.Inc()
			m.logger.Info().Msg("journey completed")
		}
	}

	m.compose(&f, now, snap)
	d.Flush()
	return f
}

// begin starts the journey from the first chapter title.
func (m *Machine) begin(f *Frame, now time.Time, vp gesture.Viewport) {
	m.started = true
	m.startedAt = now
	f.Signals.Started = true
	m.chapter = chapter.Hygge
	m.completed = false
	m.hold.Reset()
	m.director.Reset()
	m.enterChapter(f, vp)
	m.enter(f, PhaseTitle, now)
}

func (m *Machine) enterChapter(f *Frame, vp gesture.Viewport) {
	b := m.behaviors[m.chapter]
	b.Reset(vp)
	b.Enter(m.director)
	m.params = b.Params()
	f.Signals.ResetChapter = &ChapterReset{
		Chapter: m.chapter,
		Scene:   scene.Generate(m.chapter, vp, m.rng.Int63()),
	}
}

func (m *Machine) enter(f *Frame, p Phase, now time.Time) {
	from := m.phase
	var spent time.Duration
	if !m.enteredAt.IsZero() {
		spent = now.Sub(m.enteredAt)
	}
	m.phase = p
	m.enteredAt = now
	f.Signals.PhaseChanged = true
	metrics.PhaseTransitions.WithLabelValues(p.String(), m.behaviors[m.chapter].Chapter().Word).Inc()
	m.logger.Info().
		Stringer("from", from).
		Stringer("phase", p).
		Int("chapter", m.chapter).
		Int64("elapsed_ms", spent.Milliseconds()).
		Msg("phase entered")
}

// compose fills the presentation fields for the phase the machine ended up
// in this tick.
func (m *Machine) compose(f *Frame, now time.Time, snap gesture.Snapshot) {
	b := m.behaviors[m.chapter]
	elapsed := now.Sub(m.enteredAt)

	f.Phase = m.phase
	f.Chapter = m.chapter
	f.Text = b.Chapter()
	f.Elapsed = elapsed
	f.Viewport = snap.Viewport
	f.HandDetected = snap.Detected()
	f.Hands = snap.Hands

	if m.phase == PhaseExperience {
		f.GestureActive = m.hold.Active()
		f.Progress = m.hold.Progress(now)
		f.SecondsLeft = m.hold.SecondsLeft(now)
	}

	color := b.Chapter().Color
	switch m.phase {
	case PhaseTitle:
		f.Params = m.params
		f.Alphas = chapter.TitleReveal.Alphas(elapsed)
		f.Alphas["prompt"] = chapter.Prompt(elapsed, m.timing.TitleMin, 50)
		f.Background = chapter.Color{H: color.H, S: color.S * 0.2, B: 5}
		f.TravellerAlpha = titleTravellers
	case PhaseExperience:
		f.Params = m.params
		f.Background = b.Background()
		f.TravellerAlpha = experienceTravellers
	case PhaseReflection:
		f.Params = m.params
		f.Alphas = chapter.ReflectionReveal.Alphas(elapsed)
		f.Alphas["prompt"] = chapter.Prompt(elapsed, m.timing.ReflectionMin, 45)
		f.Background = chapter.Color{H: color.H, S: color.S * 0.15, B: 5}
		f.TravellerAlpha = reflectionTravellers
	case PhaseTransition:
		script := chapter.ScriptFor(m.chapter, m.timing.TransitionStyle)
		view := script.View(elapsed, m.chapter, m.chapter+1)
		f.Transition = &view
		f.Background = view.Background
		f.TravellerAlpha = view.TravellerAlpha
	case PhaseComplete:
		f.Alphas = chapter.CompleteReveal.Alphas(elapsed)
		f.Alphas["prompt"] = chapter.Prompt(elapsed, m.timing.CompletionPrompt, 50)
		f.Background = completeBackground
		f.TravellerAlpha = completeTravellers
	}
}
