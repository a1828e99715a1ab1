// Package app wires the installation together: camera and detector feed the
// sensor loop, the narrative machine ticks on its own clock and every frame
// fans out to the renderers, the journal, the hooks and the tray.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/audio"
	"github.com/ayusman/beyondwords/internal/capture"
	"github.com/ayusman/beyondwords/internal/chapter"
	"github.com/ayusman/beyondwords/internal/config"
	"github.com/ayusman/beyondwords/internal/detector"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/journal"
	"github.com/ayusman/beyondwords/internal/narrative"
	"github.com/ayusman/beyondwords/internal/plugin"
	"github.com/ayusman/beyondwords/internal/sensor"
	"github.com/ayusman/beyondwords/internal/server"
	"github.com/ayusman/beyondwords/internal/sink"
	"github.com/ayusman/beyondwords/internal/store"
	"github.com/ayusman/beyondwords/internal/tray"
)

// App is the running installation.
type App struct {
	config config.Config
	logger zerolog.Logger

	camera     capture.Camera
	detector   detector.Detector
	normalizer *gesture.Normalizer
	slot       *sensor.Slot
	sensor     *sensor.Loop

	hub      *server.Hub
	director *audio.Director
	machine  *narrative.Machine
	sinks    *sink.Multi

	store   *store.Store
	journal *journal.Journal
	hooks   *plugin.Runner
	tray    *tray.Tray
	server  *server.Server

	restart chan struct{}
	status  atomic.Pointer[server.Status]
}

// New builds every component from cfg. Nothing runs until Run.
func New(cfg config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{
		config:  cfg,
		logger:  logger.With().Str("component", "app").Logger(),
		restart: make(chan struct{}, 1),
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a.logger.Debug().Int64("seed", seed).Msg("random source seeded")

	a.camera, a.detector = a.sensors(cfg)
	a.normalizer = gesture.NewNormalizer(cfg.Viewport.Size(), cfg.Calibration)
	a.slot = sensor.NewSlot(cfg.Viewport.Size())
	a.sensor = sensor.NewLoop(a.camera, a.detector, a.normalizer, a.slot, logger)

	a.hub = server.NewHub(logger, a.normalizer.SetViewport)
	a.director = audio.NewDirector(a.hub, rand.New(rand.NewSource(seed+1)), logger)
	a.machine = narrative.NewMachine(cfg.Narrative, chapter.Behaviors(cfg.Chapters), a.director, rand.New(rand.NewSource(seed)), logger)

	// Order matters: the journal opens a session before the hooks ask for
	// its id.
	a.sinks = sink.NewMulti(logger, a.hub, sink.NewLog(logger))

	if cfg.DBPath != "" {
		st, err := store.New(cfg.DBPath)
		if err != nil {
			a.closeSensors()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		a.store = st
		a.journal = journal.New(st.Sessions(), cfg.Narrative.TransitionStyle, journal.DefaultBuffer, logger)
		a.sinks.Add(a.journal)
	}

	if cfg.HooksDir != "" {
		manager := plugin.NewManager(cfg.HooksDir, logger)
		if err := manager.Discover(); err != nil {
			a.logger.Warn().Err(err).Str("dir", cfg.HooksDir).Msg("hook discovery failed")
		}
		if n := len(manager.List()); n > 0 {
			var session func() string
			if a.journal != nil {
				session = a.journal.Session
			}
			a.hooks = plugin.NewRunner(manager, plugin.NewExecutor(cfg.HookTimeout), session, logger)
			a.sinks.Add(a.hooks)
			a.logger.Info().Int("hooks", n).Str("dir", cfg.HooksDir).Msg("hooks loaded")
		}
	}

	if cfg.Tray {
		a.tray = tray.New()
		a.tray.OnRestart(a.Restart)
		a.sinks.Add(a.tray)
	}

	a.server = server.New(server.Config{
		StaticDir: cfg.StaticDir,
		Store:     a.store,
		Hub:       a.hub,
		Status:    a.Status,
		Restart:   a.Restart,
		Logger:    logger,
	})

	a.status.Store(&server.Status{Phase: narrative.PhaseTitle.String(), Word: chapter.Get(0).Word})
	return a, nil
}

// sensors picks the camera and detector. Simulation uses a blank camera and
// a visitor holding a raised open palm; otherwise MediaPipe is tried first
// and the mock detector stands in when it is unavailable.
func (a *App) sensors(cfg config.Config) (capture.Camera, detector.Detector) {
	if cfg.Simulate {
		a.logger.Info().Msg("simulating camera and visitor")
		return capture.NewBlankCamera(cfg.Camera.Width, cfg.Camera.Height), SimulatedVisitor()
	}

	cam := capture.NewCamera(cfg.Camera)
	mp, err := detector.NewMediaPipeDetector(cfg.Detector)
	if err != nil {
		a.logger.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
		return cam, detector.NewMockDetector()
	}
	a.logger.Info().Msg("using MediaPipe hand detection")
	return cam, mp
}

// SimulatedVisitor is a detector that always sees one open palm held high,
// which satisfies every chapter's gesture.
func SimulatedVisitor() *detector.MockDetector {
	m := detector.NewMockDetector()
	m.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks().Shift(0, -0.25)})
	return m
}

// Restart asks the tick goroutine to begin the journey again. It is safe to
// call from any goroutine; requests made before the next tick collapse into
// one.
func (a *App) Restart() {
	select {
	case a.restart <- struct{}{}:
	default:
	}
}

// Status returns the latest journey status.
func (a *App) Status() server.Status {
	return *a.status.Load()
}

// Tray returns the operator tray, or nil when it is disabled.
func (a *App) Tray() *tray.Tray {
	return a.tray
}

// Handler returns the HTTP handler serving renderers and the API.
func (a *App) Handler() *server.Server {
	return a.server
}

// Run starts every goroutine and blocks until ctx is cancelled or the HTTP
// server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.sensor.Run(ctx); err != nil {
			// The journey keeps ticking without a hand rather than stopping
			// the installation.
			a.logger.Error().Err(err).Msg("sensor stopped")
		}
	}()

	if a.journal != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.journal.Run(ctx)
		}()
	}

	if a.hooks != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.hooks.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.server.Run(ctx, a.config.Addr); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
			cancel()
		}
	}()

	a.logger.Info().
		Str("addr", a.config.Addr).
		Int("fps", a.config.FrameRate).
		Str("transition", a.config.Narrative.TransitionStyle).
		Msg("installation running")

	a.runTicks(ctx)
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// Close releases the store, camera and detector.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeSensors() {
	if err := a.detector.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close detector")
	}
}
