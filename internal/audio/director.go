package audio

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/metrics"
)

// Director buffers one frame of commands and owns the state the original
// sketch kept on the synth objects themselves: which sustained voices are
// sounding and which one-shot cues have already played.
//
// A Director is used only from the frame tick and is not safe for concurrent
// use.
type Director struct {
	engine  Engine
	rng     *rand.Rand
	logger  zerolog.Logger
	pending []Command
	voices  map[string]bool
	latches map[string]bool
}

// NewDirector creates a Director. rng supplies the per-frame draws for
// stochastic cues.
func NewDirector(engine Engine, rng *rand.Rand, logger zerolog.Logger) *Director {
	if engine == nil {
		engine = Noop{}
	}
	return &Director{
		engine:  engine,
		rng:     rng,
		logger:  logger.With().Str("component", "audio").Logger(),
		voices:  make(map[string]bool),
		latches: make(map[string]bool),
	}
}

// Live reports whether the engine can currently make sound. While it cannot,
// every cue is skipped without touching voice state or drawing randomness.
func (d *Director) Live() bool {
	return d.engine.Ready()
}

// Chance makes an independent draw for this frame and reports whether an
// event with probability p fires.
func (d *Director) Chance(p float64) bool {
	if !d.Live() || p <= 0 {
		return false
	}
	return d.rng.Float64() < p
}

// Uniform returns a value in [lo, hi).
func (d *Director) Uniform(lo, hi float64) float64 {
	return lo + d.rng.Float64()*(hi-lo)
}

// Pick returns one of notes at random.
func (d *Director) Pick(notes ...string) string {
	return notes[d.rng.Intn(len(notes))]
}

// Ramp moves a parameter to value over seconds.
func (d *Director) Ramp(target string, value, seconds float64) {
	d.push(Command{Op: OpRamp, Target: target, Value: value, Seconds: seconds})
}

// RampAfter is Ramp applied delay seconds from now.
func (d *Director) RampAfter(delay float64, target string, value, seconds float64) {
	d.push(Command{Op: OpRamp, Target: target, Value: value, Seconds: seconds, Delay: delay})
}

// Play triggers a one-shot note.
func (d *Director) Play(voice, note, duration string, velocity float64) {
	d.push(Command{Op: OpPlay, Target: voice, Notes: []string{note}, Duration: duration, Velocity: velocity})
}

// Attack starts a sustained voice unless it is already sounding. It reports
// whether an attack was sent.
func (d *Director) Attack(voice string, notes ...string) bool {
	if !d.Live() || d.voices[voice] {
		return false
	}
	d.voices[voice] = true
	d.push(Command{Op: OpAttack, Target: voice, Notes: notes})
	return true
}

// Release stops a sustained voice if it is sounding.
func (d *Director) Release(voice string) bool {
	if !d.Live() || !d.voices[voice] {
		return false
	}
	delete(d.voices, voice)
	d.push(Command{Op: OpRelease, Target: voice})
	return true
}

// Sounding reports whether voice is in the active set.
func (d *Director) Sounding(voice string) bool {
	return d.voices[voice]
}

// Forget drops voice from the active set without releasing it, so the next
// Attack retriggers it.
func (d *Director) Forget(voice string) {
	delete(d.voices, voice)
}

// Once reports true the first time it is called with name and false after,
// until ClearLatches.
func (d *Director) Once(name string) bool {
	if !d.Live() || d.latches[name] {
		return false
	}
	d.latches[name] = true
	return true
}

// ClearLatches re-arms every one-shot cue.
func (d *Director) ClearLatches() {
	clear(d.latches)
}

// StopAll fades every chapter layer out over 1.5 s and empties the active
// voice set.
func (d *Director) StopAll() {
	if !d.Live() {
		return
	}
	d.Ramp(HyggeHumGain, 0, 1.5)
	d.Ramp(HyggeWindFilter, 100, 1)
	d.Ramp(KomorebiDroneGain, 0, 1.5)
	d.Ramp(FernwehDroneGain, 0, 1.5)
	d.Ramp(FernwehWhistleGain, 0, 1.5)
	clear(d.voices)
}

// Reset clears voices, latches and anything not yet flushed.
func (d *Director) Reset() {
	clear(d.voices)
	clear(d.latches)
	d.pending = d.pending[:0]
}

// Flush sends the commands buffered this frame. Engine failures are logged
// and counted, never returned: audio is an enhancement and must not stall
// the narrative.
func (d *Director) Flush() {
	if len(d.pending) == 0 {
		return
	}
	cmds := d.pending
	d.pending = nil
	if !d.Live() {
		return
	}
	if err := d.engine.Send(cmds); err != nil {
		metrics.AdapterErrors.WithLabelValues(metrics.AdapterAudio).Inc()
		d.logger.Warn().Err(err).Int("commands", len(cmds)).Msg("audio send failed")
	}
}

// Pending returns the commands buffered since the last Flush.
func (d *Director) Pending() []Command {
	return d.pending
}

func (d *Director) push(c Command) {
	if !d.Live() {
		return
	}
	d.pending = append(d.pending, c)
}
