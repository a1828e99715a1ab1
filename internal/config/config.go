// Package config holds the installation's settings: defaults, a TOML file
// and BEYONDWORDS_* environment overrides, applied in that order.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/capture"
	"github.com/ayusman/beyondwords/internal/chapter"
	"github.com/ayusman/beyondwords/internal/detector"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/narrative"
	"github.com/ayusman/beyondwords/internal/sensor"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BEYONDWORDS_"

// Config is the complete runtime configuration.
type Config struct {
	// Addr is the HTTP listen address for the renderer, API and metrics.
	Addr string `toml:"addr" env:"ADDR"`
	// FrameRate is the narrative tick rate in Hz.
	FrameRate int `toml:"frame-rate" env:"FRAME_RATE"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `toml:"seed" env:"SEED"`
	// Simulate replaces the webcam and detector with mocks.
	Simulate bool `toml:"simulate" env:"SIMULATE"`
	// Tray shows the operator menu in the system tray.
	Tray bool `toml:"tray" env:"TRAY"`
	// StaticDir is served at / when set; it holds the browser renderer.
	StaticDir string `toml:"static-dir" env:"STATIC_DIR"`
	// DBPath is the session journal database. Empty disables journaling.
	DBPath string `toml:"db" env:"DB"`
	// HooksDir holds completion hooks.
	HooksDir string `toml:"hooks-dir" env:"HOOKS_DIR"`
	// HookTimeout bounds each hook run.
	HookTimeout time.Duration `toml:"hook-timeout" env:"HOOK_TIMEOUT"`
	// SensorMaxAge is how old a hand reading may be before it is ignored.
	SensorMaxAge time.Duration `toml:"sensor-max-age" env:"SENSOR_MAX_AGE"`

	Log         LogConfig           `toml:"log" envPrefix:"LOG_"`
	Viewport    ViewportConfig      `toml:"viewport" envPrefix:"VIEWPORT_"`
	Narrative   narrative.Timing    `toml:"narrative" envPrefix:"NARRATIVE_"`
	Chapters    chapter.Options     `toml:"chapters" envPrefix:"CHAPTERS_"`
	Calibration gesture.Calibration `toml:"calibration" envPrefix:"CALIBRATION_"`
	Camera      capture.Config      `toml:"camera" envPrefix:"CAMERA_"`
	Detector    detector.Config     `toml:"detector" envPrefix:"DETECTOR_"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
	// Format is "console", "json" or "auto" (console on a terminal).
	Format string `toml:"format" env:"FORMAT"`
}

// ViewportConfig is the presentation size assumed until a renderer reports
// its own.
type ViewportConfig struct {
	Width  float64 `toml:"width" env:"WIDTH"`
	Height float64 `toml:"height" env:"HEIGHT"`
}

// Size returns the viewport as the gesture package uses it.
func (v ViewportConfig) Size() gesture.Viewport {
	return gesture.Viewport{Width: v.Width, Height: v.Height}
}

// Defaults returns the canonical configuration.
func Defaults() Config {
	return Config{
		Addr:         ":8080",
		FrameRate:    60,
		DBPath:       DefaultDBPath(),
		HooksDir:     DefaultHooksDir(),
		HookTimeout:  5 * time.Second,
		SensorMaxAge: sensor.DefaultMaxAge,
		Log:          LogConfig{Level: "info", Format: "auto"},
		Viewport:     ViewportConfig{Width: 1280, Height: 720},
		Narrative:    narrative.DefaultTiming(),
		Chapters:     chapter.DefaultOptions(),
		Calibration:  gesture.DefaultCalibration(),
		Camera:       capture.DefaultConfig(),
		Detector:     detector.DefaultConfig(),
	}
}

// Validate reports every problem it finds, joined.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if c.FrameRate <= 0 || c.FrameRate > 240 {
		errs = append(errs, fmt.Errorf("frame-rate %d outside 1..240", c.FrameRate))
	}
	if c.HookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("hook-timeout must be positive, got %v", c.HookTimeout))
	}
	if c.SensorMaxAge < 0 {
		errs = append(errs, fmt.Errorf("sensor-max-age must not be negative, got %v", c.SensorMaxAge))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "auto", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not auto, console or json", c.Log.Format))
	}
	if !c.Viewport.Size().Valid() {
		errs = append(errs, fmt.Errorf("viewport %vx%v must be positive", c.Viewport.Width, c.Viewport.Height))
	}
	if err := c.Narrative.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("narrative: %w", err))
	}
	if err := c.Chapters.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chapters: %w", err))
	}
	if c.Calibration.Near <= c.Calibration.Far || c.Calibration.Far < 0 {
		errs = append(errs, fmt.Errorf("calibration: near %v must exceed far %v", c.Calibration.Near, c.Calibration.Far))
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 || c.Camera.FPS <= 0 {
		errs = append(errs, fmt.Errorf("camera: %dx%d@%d must be positive", c.Camera.Width, c.Camera.Height, c.Camera.FPS))
	}
	if c.Detector.MaxHands < 1 {
		errs = append(errs, fmt.Errorf("detector: max-hands %d must be at least 1", c.Detector.MaxHands))
	}
	if c.Detector.ModelComplexity != 0 && c.Detector.ModelComplexity != 1 {
		errs = append(errs, fmt.Errorf("detector: model-complexity %d must be 0 or 1", c.Detector.ModelComplexity))
	}
	for name, v := range map[string]float64{
		"min-detection-confidence": c.Detector.MinConfidence,
		"min-tracking-confidence":  c.Detector.MinTrackingConf,
	} {
		if v <= 0 || v >= 1 {
			errs = append(errs, fmt.Errorf("detector: %s %v outside (0,1)", name, v))
		}
	}
	return errors.Join(errs...)
}

// TickInterval is the time between narrative frames.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}
