package sensor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/capture"
	"github.com/ayusman/beyondwords/internal/detector"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/metrics"
)

var testViewport = gesture.Viewport{Width: 1000, Height: 500}

func newTestLoop(cam capture.Camera, det detector.Detector) (*Loop, *Slot) {
	slot := NewSlot(testViewport)
	norm := gesture.NewNormalizer(testViewport, gesture.DefaultCalibration())
	return NewLoop(cam, det, norm, slot, zerolog.Nop()), slot
}

func TestSlot(t *testing.T) {
	slot := NewSlot(testViewport)
	if got := slot.Load(); got.Viewport != testViewport || got.Detected() {
		t.Fatalf("initial Load() = %+v, want empty reading for the viewport", got)
	}

	at := time.Unix(100, 0)
	slot.Store(gesture.Snapshot{
		Hands:    []gesture.Observation{{X: 1, Y: 2, Open: true}},
		Viewport: testViewport,
		At:       at,
	})

	tests := []struct {
		name   string
		now    time.Time
		maxAge time.Duration
		want   bool
	}{
		{"fresh", at.Add(100 * time.Millisecond), DefaultMaxAge, true},
		{"exactly max age", at.Add(DefaultMaxAge), DefaultMaxAge, true},
		{"stale", at.Add(time.Second), DefaultMaxAge, false},
		{"check disabled", at.Add(time.Hour), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slot.Latest(tt.now, tt.maxAge).Detected(); got != tt.want {
				t.Errorf("Latest().Detected() = %v, want %v", got, tt.want)
			}
		})
	}

	if !slot.Load().Detected() {
		t.Error("Latest() modified the stored snapshot")
	}
}

func TestSlot_ConcurrentAccess(t *testing.T) {
	slot := NewSlot(testViewport)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			slot.Store(gesture.Snapshot{Hands: []gesture.Observation{{X: float64(i), Y: float64(i)}}})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := slot.Load()
			if len(snap.Hands) == 1 && snap.Hands[0].X != snap.Hands[0].Y {
				t.Errorf("torn read: %+v", snap.Hands[0])
				return
			}
		}
	}()
	wg.Wait()
}

func TestLoop_Step(t *testing.T) {
	t.Run("publishes normalized hands", func(t *testing.T) {
		cam := capture.NewBlankCamera(64, 48)
		if err := cam.Open(); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		det := detector.NewMockDetector()
		det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
		loop, slot := newTestLoop(cam, det)
		at := time.Unix(200, 0)
		loop.now = func() time.Time { return at }

		loop.step()

		snap := slot.Load()
		if len(snap.Hands) != 1 {
			t.Fatalf("published %d hands, want 1", len(snap.Hands))
		}
		if h := snap.Hands[0]; math.Abs(h.X-500) > 1e-9 || math.Abs(h.Y-330) > 1e-9 || !h.Open {
			t.Errorf("hand = %+v, want open at (500, 330)", h)
		}
		if !snap.At.Equal(at) {
			t.Errorf("At = %v, want %v", snap.At, at)
		}
		if det.Calls() != 1 {
			t.Errorf("detector calls = %d, want 1", det.Calls())
		}
		if got := testutil.ToFloat64(metrics.HandsDetected); got != 1 {
			t.Errorf("HandsDetected = %v, want 1", got)
		}
	})

	t.Run("malformed hands are dropped", func(t *testing.T) {
		cam := capture.NewBlankCamera(64, 48)
		cam.Open()
		bad := detector.OpenPalmLandmarks()
		bad.Points[detector.IndexTip].X = math.NaN()
		det := detector.NewMockDetector()
		det.SetHands([]detector.HandLandmarks{bad, detector.FistLandmarks()})
		loop, slot := newTestLoop(cam, det)

		loop.step()

		snap := slot.Load()
		if len(snap.Hands) != 1 || snap.Hands[0].Open {
			t.Errorf("hands = %+v, want only the fist", snap.Hands)
		}
	})

	t.Run("detector failure reads as no hand", func(t *testing.T) {
		cam := capture.NewBlankCamera(64, 48)
		cam.Open()
		det := detector.NewMockDetector()
		det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
		loop, slot := newTestLoop(cam, det)
		loop.step()

		before := testutil.ToFloat64(metrics.AdapterErrors.WithLabelValues(metrics.AdapterDetector))
		det.SetError(errors.New("inference crashed"))
		loop.step()

		if slot.Load().Detected() {
			t.Error("stale hand kept after detector failure")
		}
		after := testutil.ToFloat64(metrics.AdapterErrors.WithLabelValues(metrics.AdapterDetector))
		if after-before != 1 {
			t.Errorf("detector errors delta = %v, want 1", after-before)
		}
	})

	t.Run("camera failure reads as no hand", func(t *testing.T) {
		cam := capture.NewBlankCamera(64, 48)
		det := detector.NewMockDetector()
		det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
		loop, slot := newTestLoop(cam, det)

		before := testutil.ToFloat64(metrics.AdapterErrors.WithLabelValues(metrics.AdapterCamera))
		loop.step()

		if slot.Load().Detected() {
			t.Error("hand published without a frame")
		}
		if det.Calls() != 0 {
			t.Errorf("detector called %d times without a frame", det.Calls())
		}
		after := testutil.ToFloat64(metrics.AdapterErrors.WithLabelValues(metrics.AdapterCamera))
		if after-before != 1 {
			t.Errorf("camera errors delta = %v, want 1", after-before)
		}
	})
}

func TestLoop_Run(t *testing.T) {
	cam := capture.NewBlankCamera(64, 48)
	cam.SetFPS(200)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	loop, slot := newTestLoop(cam, det)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for cam.Reads() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("camera read %d frames before the deadline, want 3", cam.Reads())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !slot.Load().Detected() {
		t.Error("no hand published while running")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if cam.IsOpen() {
		t.Error("camera still open after Run returned")
	}
	if slot.Load().Detected() {
		t.Error("hand still published after the sensor stopped")
	}
}
