// Package journal records each journey and the phases it went through. It is
// a presentation sink: frames arrive on the tick goroutine and are written to
// the store from a goroutine of its own, so a slow disk never stalls the
// narrative.
package journal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/metrics"
	"github.com/ayusman/beyondwords/internal/narrative"
	"github.com/ayusman/beyondwords/internal/store"
)

// DefaultBuffer is the number of writes that may queue up before new ones
// are dropped.
const DefaultBuffer = 64

// Repository is the part of the store the journal writes to.
type Repository interface {
	Create(sess *store.Session) error
	RecordEvent(e *store.PhaseEvent) error
	Complete(id string, at time.Time) error
	End(id string, at time.Time) error
}

type job func(Repository) error

// Journal turns frame signals into session rows.
type Journal struct {
	repo   Repository
	style  string
	jobs   chan job
	logger zerolog.Logger

	mu      sync.Mutex
	session string
}

// New creates a journal writing to repo. style is recorded on every session.
func New(repo Repository, style string, buffer int, logger zerolog.Logger) *Journal {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Journal{
		repo:   repo,
		style:  style,
		jobs:   make(chan job, buffer),
		logger: logger.With().Str("component", "journal").Logger(),
	}
}

// Session returns the id of the journey in progress, or "" before the first
// frame.
func (j *Journal) Session() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.session
}

// Present queues whatever f records. It never blocks and never fails; writes
// that do not fit in the buffer are dropped and counted.
func (j *Journal) Present(f *narrative.Frame) error {
	if f.Signals.Started {
		j.begin(f.At)
	}
	id := j.Session()
	if id == "" {
		return nil
	}

	if f.Signals.PhaseChanged {
		e := &store.PhaseEvent{
			SessionID: id,
			Seq:       f.Seq,
			Phase:     f.Phase.String(),
			Chapter:   f.Chapter,
			Hand:      f.HandDetected,
			EnteredAt: f.At,
		}
		j.enqueue(func(r Repository) error { return r.RecordEvent(e) })
	}
	if f.Signals.Completion {
		at := f.At
		j.enqueue(func(r Repository) error { return r.Complete(id, at) })
	}
	return nil
}

func (j *Journal) begin(at time.Time) {
	j.mu.Lock()
	prev := j.session
	j.session = uuid.NewString()
	sess := &store.Session{ID: j.session, TransitionStyle: j.style, StartedAt: at}
	j.mu.Unlock()

	if prev != "" {
		j.enqueue(func(r Repository) error { return r.End(prev, at) })
	}
	j.enqueue(func(r Repository) error { return r.Create(sess) })
	j.logger.Info().Str("session", sess.ID).Msg("journey started")
}

func (j *Journal) enqueue(fn job) {
	select {
	case j.jobs <- fn:
	default:
		metrics.JournalDropped.Inc()
	}
}

// Run writes queued jobs until ctx is cancelled, then flushes what is left
// and ends the open session.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case fn := <-j.jobs:
			j.write(fn)
		case <-ctx.Done():
			j.drain()
			if id := j.Session(); id != "" {
				j.write(func(r Repository) error { return r.End(id, time.Now()) })
			}
			return
		}
	}
}

func (j *Journal) drain() {
	for {
		select {
		case fn := <-j.jobs:
			j.write(fn)
		default:
			return
		}
	}
}

func (j *Journal) write(fn job) {
	if err := fn(j.repo); err != nil {
		metrics.AdapterErrors.WithLabelValues(metrics.AdapterJournal).Inc()
		j.logger.Warn().Err(err).Msg("journal write")
	}
}
