package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks in the
	// detector's reported order. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to track (default: 2).
	MaxHands int `toml:"max-hands" env:"MAX_HANDS"`

	// ModelComplexity selects the landmark model quality (0 or 1).
	ModelComplexity int `toml:"model-complexity" env:"MODEL_COMPLEXITY"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `toml:"min-detection-confidence" env:"MIN_DETECTION_CONFIDENCE"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `toml:"min-tracking-confidence" env:"MIN_TRACKING_CONFIDENCE"`

	// Script overrides the location of mediapipe_service.py.
	Script string `toml:"script" env:"SCRIPT"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		ModelComplexity: 1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
