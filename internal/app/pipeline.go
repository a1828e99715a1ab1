package app

import (
	"context"
	"time"

	"github.com/ayusman/beyondwords/internal/narrative"
	"github.com/ayusman/beyondwords/internal/server"
)

// runTicks drives the narrative at the configured frame rate until ctx is
// cancelled. It is the only goroutine that touches the machine.
//
// Each tick:
//  1. honour a pending restart
//  2. read the newest hand snapshot, ignoring one that has gone stale
//  3. step the machine and present the frame to every sink
//  4. publish the status the API and tray read
func (a *App) runTicks(ctx context.Context) {
	ticker := time.NewTicker(a.config.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.Tick(now)
		}
	}
}

// Tick advances the journey once at now and returns the frame it presented.
func (a *App) Tick(now time.Time) narrative.Frame {
	select {
	case <-a.restart:
		a.machine.Restart()
		a.logger.Info().Msg("journey restarted")
	default:
	}

	snap := a.slot.Latest(now, a.config.SensorMaxAge)
	f := a.machine.Step(now, snap)
	// Sinks log and count their own failures.
	_ = a.sinks.Present(&f)

	st := server.Status{
		Phase:      f.Phase.String(),
		Chapter:    f.Chapter,
		Word:       f.Text.Word,
		Hand:       f.HandDetected,
		Renderers:  a.hub.Clients(),
		AudioReady: a.hub.Ready(),
	}
	if a.journal != nil {
		st.Session = a.journal.Session()
	}
	a.status.Store(&st)
	return f
}
