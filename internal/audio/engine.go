package audio

import "sync"

// Engine is the synthesis boundary. Ready is false until the engine can make
// sound; commands sent before that are dropped by the Director.
type Engine interface {
	Ready() bool
	Send(cmds []Command) error
}

// Noop is the engine used when audio is unavailable.
type Noop struct{}

// Ready is always false.
func (Noop) Ready() bool {
	return false
}

// Send discards cmds.
func (Noop) Send(cmds []Command) error {
	return nil
}

// Recorder keeps every batch it receives. It is always ready.
type Recorder struct {
	mu      sync.Mutex
	batches [][]Command
	err     error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Ready is always true.
func (r *Recorder) Ready() bool {
	return true
}

// Send records cmds and returns the error set by SetError, if any.
func (r *Recorder) Send(cmds []Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]Command, len(cmds))
	copy(batch, cmds)
	r.batches = append(r.batches, batch)
	return r.err
}

// SetError makes later sends fail with err.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Commands returns all recorded commands in order.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Command
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

// Batches returns how many sends were recorded.
func (r *Recorder) Batches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
}
