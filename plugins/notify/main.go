// Package main is a completion hook that posts a desktop notification so the
// gallery attendant knows a visitor has reached the end.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request represents the input from the hook runner.
type Request struct {
	Event   string   `json:"event"`
	Session string   `json:"session"`
	Chapter int      `json:"chapter"`
	Words   []string `json:"words"`
}

// Response represents the output to the hook runner.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	if req.Event != "complete" {
		writeResponse(fmt.Errorf("unexpected event: %s", req.Event))
		return
	}

	title := "Meaning Beyond Language"
	body := "A visitor completed the journey"
	if len(req.Words) > 0 {
		body += ": " + strings.Join(req.Words, " · ")
	}
	writeResponse(notify(title, body))
}

// notify shows a notification with the platform's own tool.
func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, body, title)
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		cmd = exec.Command("notify-send", title, body)
	default:
		return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
