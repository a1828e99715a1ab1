package plugin

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/chapter"
	"github.com/ayusman/beyondwords/internal/metrics"
	"github.com/ayusman/beyondwords/internal/narrative"
)

// Runner is the presentation sink that fires hooks. Frames arrive on the
// tick goroutine; hooks run one at a time on Run's goroutine.
type Runner struct {
	manager  *Manager
	executor *Executor
	session  func() string
	jobs     chan *Request
	logger   zerolog.Logger
}

// NewRunner creates a Runner. session names the journey in progress and may
// be nil.
func NewRunner(manager *Manager, executor *Executor, session func() string, logger zerolog.Logger) *Runner {
	if session == nil {
		session = func() string { return "" }
	}
	return &Runner{
		manager:  manager,
		executor: executor,
		session:  session,
		jobs:     make(chan *Request, 8),
		logger:   logger.With().Str("component", "hooks").Logger(),
	}
}

// Present queues a hook request for the milestones f raises. It never
// blocks.
func (r *Runner) Present(f *narrative.Frame) error {
	if f.Signals.Started {
		r.enqueue(r.request(EventStart, f))
	}
	if f.Signals.Completion {
		r.enqueue(r.request(EventComplete, f))
	}
	return nil
}

func (r *Runner) request(event string, f *narrative.Frame) *Request {
	req := &Request{
		Event:   event,
		Session: r.session(),
		Chapter: f.Chapter,
		At:      f.At,
	}
	if event == EventComplete {
		for _, c := range chapter.All() {
			req.Words = append(req.Words, c.Word)
		}
	}
	return req
}

func (r *Runner) enqueue(req *Request) {
	select {
	case r.jobs <- req:
	default:
		metrics.AdapterErrors.WithLabelValues(metrics.AdapterHook).Inc()
		r.logger.Warn().Str("event", req.Event).Msg("hook queue full, dropping event")
	}
}

// Run executes queued requests until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	for {
		select {
		case req := <-r.jobs:
			r.Fire(ctx, req)
		case <-ctx.Done():
			return
		}
	}
}

// Fire runs every hook subscribed to req.Event and returns how many
// succeeded.
func (r *Runner) Fire(ctx context.Context, req *Request) int {
	ok := 0
	for _, p := range r.manager.For(req.Event) {
		start := time.Now()
		log := r.logger.With().Str("hook", p.Manifest.Name).Str("event", req.Event).Logger()

		resp, err := r.executor.Execute(ctx, p, req)
		if err != nil {
			metrics.AdapterErrors.WithLabelValues(metrics.AdapterHook).Inc()
			log.Warn().Err(err).Msg("hook failed")
			continue
		}
		if !resp.Success {
			metrics.AdapterErrors.WithLabelValues(metrics.AdapterHook).Inc()
			log.Warn().Str("error", resp.Error).Msg("hook reported failure")
			continue
		}
		ok++
		log.Info().Dur("took", time.Since(start)).Msg("hook ran")
	}
	return ok
}
