// Package main is a start hook that puts the output volume back to a fixed
// level, so one visitor turning the speakers down does not silence the next.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the hook runner.
type Request struct {
	Event  string          `json:"event"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the hook runner.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is read from the manifest.
type Config struct {
	Level int `json:"level"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	cfg := Config{Level: 60}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}
	if cfg.Level < 0 || cfg.Level > 100 {
		writeErrorResponse(fmt.Sprintf("level must be within 0-100, got %d", cfg.Level))
		return
	}

	if err := setVolume(cfg.Level); err != nil {
		writeErrorResponse(fmt.Sprintf("set volume failed: %v", err))
		return
	}

	data, _ := json.Marshal(map[string]int{"level": cfg.Level})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

func setVolume(level int) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("osascript", "-e", fmt.Sprintf("set volume output volume %d", level))
	case "linux":
		cmd = exec.Command("amixer", "-q", "sset", "Master", strconv.Itoa(level)+"%")
	default:
		return fmt.Errorf("volume control not supported on %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}
