// Package sink defines where narrative frames go once the machine has
// produced them.
package sink

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/metrics"
	"github.com/ayusman/beyondwords/internal/narrative"
)

// Sink receives every frame. Present must not block the frame tick for
// long; slow consumers buffer or drop on their own side.
type Sink interface {
	Present(f *narrative.Frame) error
}

// Func adapts a function to Sink.
type Func func(f *narrative.Frame) error

// Present calls fn(f).
func (fn Func) Present(f *narrative.Frame) error {
	return fn(f)
}

// Multi fans a frame out to several sinks. A failing sink is logged and
// counted; the others still receive the frame.
type Multi struct {
	sinks  []Sink
	logger zerolog.Logger
}

// NewMulti returns a fan-out over sinks, skipping nils.
func NewMulti(logger zerolog.Logger, sinks ...Sink) *Multi {
	m := &Multi{logger: logger.With().Str("component", "sink").Logger()}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Add appends s to the fan-out.
func (m *Multi) Add(s Sink) {
	m.sinks = append(m.sinks, s)
}

// Present delivers f to every sink and never fails.
func (m *Multi) Present(f *narrative.Frame) error {
	for _, s := range m.sinks {
		if err := s.Present(f); err != nil {
			metrics.AdapterErrors.WithLabelValues(metrics.AdapterSink).Inc()
			m.logger.Warn().Err(err).Uint64("seq", f.Seq).Msg("present frame")
		}
	}
	return nil
}

// Log writes phase changes and signals to a logger. Ordinary frames are
// ignored.
type Log struct {
	logger zerolog.Logger
}

// NewLog returns a logging sink.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "presenter").Logger()}
}

// Present logs f if anything notable happened on it.
func (l *Log) Present(f *narrative.Frame) error {
	if !f.Signals.Any() {
		return nil
	}
	ev := l.logger.Debug().
		Uint64("seq", f.Seq).
		Stringer("phase", f.Phase).
		Int("chapter", f.Chapter).
		Bool("hand", f.HandDetected)
	if f.Signals.ResetChapter != nil {
		ev = ev.Str("scene", f.Text.Word)
	}
	ev.Bool("stop_ambient", f.Signals.StopAmbient).
		Bool("completion", f.Signals.Completion).
		Msg("frame signals")
	return nil
}

// Recorder keeps a copy of every frame. Tests use it to inspect what
// reached the presentation side.
type Recorder struct {
	mu     sync.Mutex
	frames []narrative.Frame
	err    error
}

// Present records f.
func (r *Recorder) Present(f *narrative.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, *f)
	return r.err
}

// SetError makes later calls to Present fail with err after recording.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Frames returns the recorded frames.
func (r *Recorder) Frames() []narrative.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]narrative.Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Len returns how many frames were recorded.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}
