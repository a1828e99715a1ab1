package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/capture"
	"github.com/ayusman/beyondwords/internal/detector"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/metrics"
)

// DefaultMaxAge is how old a reading may get before the frame tick treats it
// as empty.
const DefaultMaxAge = 750 * time.Millisecond

// Loop reads the camera at its frame rate and publishes one snapshot per
// frame.
type Loop struct {
	camera     capture.Camera
	detector   detector.Detector
	normalizer *gesture.Normalizer
	slot       *Slot
	logger     zerolog.Logger
	now        func() time.Time
}

// NewLoop wires a camera and detector to slot.
func NewLoop(camera capture.Camera, det detector.Detector, normalizer *gesture.Normalizer, slot *Slot, logger zerolog.Logger) *Loop {
	logger = logger.With().Str("component", "sensor").Logger()
	return &Loop{
		camera:     camera,
		detector:   det,
		normalizer: normalizer,
		slot:       slot,
		// A failing camera fails on every frame.
		logger: logger.Sample(&zerolog.BurstSampler{Burst: 3, Period: 30 * time.Second}),
		now:    time.Now,
	}
}

// Run opens the camera and processes frames until ctx is cancelled. The
// camera is closed on return; the detector belongs to the caller.
func (l *Loop) Run(ctx context.Context) error {
	if !l.camera.IsOpen() {
		if err := l.camera.Open(); err != nil {
			return fmt.Errorf("start sensor: %w", err)
		}
	}
	defer func() {
		if err := l.camera.Close(); err != nil {
			l.logger.Warn().Err(err).Msg("close camera")
		}
	}()

	fps := l.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	l.logger.Info().Int("fps", fps).Msg("sensor started")
	for {
		select {
		case <-ctx.Done():
			l.slot.Store(gesture.Snapshot{Viewport: l.normalizer.Viewport(), At: l.now()})
			l.logger.Info().Msg("sensor stopped")
			return nil
		case <-ticker.C:
			l.step()
		}
	}
}

// step processes one camera frame. Any failure publishes an empty reading so
// the narrative sees no hand rather than a stale one.
func (l *Loop) step() {
	frame, err := l.camera.ReadFrame()
	if err != nil {
		metrics.AdapterErrors.WithLabelValues(metrics.AdapterCamera).Inc()
		l.logger.Warn().Err(err).Msg("read frame")
		l.publish(nil)
		return
	}

	start := time.Now()
	hands, err := l.detector.Detect(frame)
	frame.Close()
	metrics.DetectLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AdapterErrors.WithLabelValues(metrics.AdapterDetector).Inc()
		l.logger.Warn().Err(err).Msg("detect hands")
		l.publish(nil)
		return
	}
	l.publish(hands)
}

func (l *Loop) publish(hands []detector.HandLandmarks) {
	snap := l.normalizer.Snapshot(hands)
	snap.At = l.now()
	metrics.HandsDetected.Set(float64(len(snap.Hands)))
	l.slot.Store(snap)
}
