package gesture

import (
	"math"
	"time"
)

// DefaultHoldDuration is how long a gesture must be held to complete a chapter.
const DefaultHoldDuration = 5 * time.Second

// HoldTimer tracks how long the classifier has reported the gesture without
// interruption. It is either idle or holding; start is set only while
// holding.
//
// With a zero grace window a single negative frame drops back to idle. A
// positive grace keeps the hold alive through short gaps in detection; the
// clock keeps running through the gap but completion needs a positive frame.
type HoldTimer struct {
	duration time.Duration
	grace    time.Duration

	active bool
	start  time.Time
	lostAt time.Time
	fired  bool
}

// NewHoldTimer creates an idle timer. A non-positive duration falls back to
// DefaultHoldDuration and a negative grace to zero.
func NewHoldTimer(duration, grace time.Duration) *HoldTimer {
	if duration <= 0 {
		duration = DefaultHoldDuration
	}
	if grace < 0 {
		grace = 0
	}
	return &HoldTimer{duration: duration, grace: grace}
}

// Update feeds one frame of classifier output. It returns progress in
// [0,100] and reports completion on the first frame where the hold reaches
// the duration, and never again until the timer goes idle.
func (h *HoldTimer) Update(detected bool, now time.Time) (progress float64, completed bool) {
	if !detected {
		if !h.active {
			return 0, false
		}
		if h.grace == 0 {
			h.Reset()
			return 0, false
		}
		if h.lostAt.IsZero() {
			h.lostAt = now
		}
		if now.Sub(h.lostAt) > h.grace {
			h.Reset()
			return 0, false
		}
		return h.Progress(now), false
	}

	h.lostAt = time.Time{}
	if !h.active {
		h.active = true
		h.start = now
		h.fired = false
	}

	progress = h.Progress(now)
	if !h.fired && now.Sub(h.start) >= h.duration {
		h.fired = true
		return progress, true
	}
	return progress, false
}

// Reset returns the timer to idle.
func (h *HoldTimer) Reset() {
	h.active = false
	h.start = time.Time{}
	h.lostAt = time.Time{}
	h.fired = false
}

// Active reports whether a hold is in progress.
func (h *HoldTimer) Active() bool {
	return h.active
}

// StartedAt returns when the current hold began, or false when idle.
func (h *HoldTimer) StartedAt() (time.Time, bool) {
	return h.start, h.active
}

// Duration returns the hold length needed for completion.
func (h *HoldTimer) Duration() time.Duration {
	return h.duration
}

// Progress returns the hold progress at now in [0,100], 0 when idle.
func (h *HoldTimer) Progress(now time.Time) float64 {
	if !h.active {
		return 0
	}
	p := float64(now.Sub(h.start)) / float64(h.duration)
	return math.Max(0, math.Min(1, p)) * 100
}

// SecondsLeft returns the whole seconds remaining, rounded up, for the
// countdown shown under the progress bar. It is 0 when idle.
func (h *HoldTimer) SecondsLeft(now time.Time) int {
	if !h.active {
		return 0
	}
	left := h.duration - now.Sub(h.start)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}
