// Package audio drives the external synthesis engine. The engine is a black
// box that accepts parameter ramps and note events; everything stateful about
// the soundscape lives on this side of the boundary.
package audio

// Op is the kind of audio command.
type Op string

const (
	// OpRamp moves a continuous parameter to Value over Seconds.
	OpRamp Op = "ramp"
	// OpAttack starts a sustained voice on Notes.
	OpAttack Op = "attack"
	// OpRelease lets a sustained voice decay.
	OpRelease Op = "release"
	// OpPlay triggers a one-shot note on a voice.
	OpPlay Op = "play"
)

// Command is one instruction for the engine. Delay postpones it by that many
// seconds on the engine side.
type Command struct {
	Op       Op       `json:"op"`
	Target   string   `json:"target"`
	Value    float64  `json:"value,omitempty"`
	Seconds  float64  `json:"seconds,omitempty"`
	Delay    float64  `json:"delay,omitempty"`
	Notes    []string `json:"notes,omitempty"`
	Duration string   `json:"duration,omitempty"`
	Velocity float64  `json:"velocity,omitempty"`
}

// Continuous parameters understood by the engine.
const (
	HyggeWindFilter      = "hygge.wind.filter"
	HyggeHumGain         = "hygge.hum.gain"
	HyggeHumFilter       = "hygge.hum.filter"
	HyggeHumModulation   = "hygge.hum.modulation"
	KomorebiDroneGain    = "komorebi.drone.gain"
	KomorebiReverbWet    = "komorebi.reverb.wet"
	FernwehDroneGain     = "fernweh.drone.gain"
	FernwehFilter        = "fernweh.filter"
	FernwehWhistleGain   = "fernweh.whistle.gain"
	FernwehWhistleFilter = "fernweh.whistle.filter"
)

// Voices understood by the engine.
const (
	VoiceHum   = "hygge.hum"
	VoiceChime = "komorebi.chime"
	VoicePad   = "komorebi.drone"
	VoiceYearn = "fernweh.drone"
)
