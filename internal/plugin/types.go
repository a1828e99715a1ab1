// Package plugin runs external hooks when the journey reaches a milestone.
// A hook is an executable in its own directory next to a plugin.json
// manifest; it receives a Request on stdin and answers with a Response on
// stdout.
package plugin

import (
	"encoding/json"
	"slices"
	"time"
)

// Events a hook can subscribe to.
const (
	EventStart    = "start"
	EventComplete = "complete"
)

// Manifest describes a hook and the events it wants.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Request is sent to a hook on stdin.
type Request struct {
	Event   string          `json:"event"`
	Session string          `json:"session"`
	Chapter int             `json:"chapter"`
	Words   []string        `json:"words,omitempty"`
	At      time.Time       `json:"at"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response is what a hook writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered hook with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribed to event. A manifest without
// events only hears completion.
func (p *Plugin) Handles(event string) bool {
	if len(p.Manifest.Events) == 0 {
		return event == EventComplete
	}
	return slices.Contains(p.Manifest.Events, event)
}
