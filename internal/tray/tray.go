// Package tray provides the operator's system tray menu: where the journey
// is, a way to start it over and a way out.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/beyondwords/internal/narrative"
)

// Tray represents the system tray application.
type Tray struct {
	onRestart func()
	onOpen    func()
	onQuit    func()
	label     string
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
}

// New creates a new Tray showing the opening status.
func New() *Tray {
	return &Tray{
		label: Label(0, narrative.PhaseTitle),
	}
}

// Label formats the status line for a chapter index and phase.
func Label(chapter int, phase narrative.Phase) string {
	return fmt.Sprintf("Chapter %d · %s", chapter+1, phase)
}

// OnRestart sets the callback for the "Restart journey" item.
func (t *Tray) OnRestart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRestart = fn
}

// OnOpen sets the callback for the "Open renderer" item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called and must be called
// from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop closes the tray from any goroutine.
func (t *Tray) Stop() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Beyond Words")
	systray.SetTooltip("Meaning Beyond Language")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.label, "Where the journey is")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuRestart := systray.AddMenuItem("Restart journey", "Start again from the first word")
	menuOpen := systray.AddMenuItem("Open renderer...", "Open the renderer in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Stop the installation")

	go func() {
		for {
			select {
			case <-menuRestart.ClickedCh:
				t.handle(func(t *Tray) func() { return t.onRestart })
			case <-menuOpen.ClickedCh:
				t.handle(func(t *Tray) func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handle(func(t *Tray) func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handle calls the callback chosen by pick outside the lock.
func (t *Tray) handle(pick func(*Tray) func()) {
	t.mu.RLock()
	callback := pick(t)
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Present updates the status line when the phase changes.
func (t *Tray) Present(f *narrative.Frame) error {
	if !f.Signals.PhaseChanged {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.label = Label(f.Chapter, f.Phase)
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(t.label)
	}
	return nil
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.label
}
