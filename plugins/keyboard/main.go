// Package main is a plugin that turns mudra buttons into macOS key presses.
// It drives System Events through osascript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Request is the JSON read from stdin.
type Request struct {
	Action string          `json:"action"`
	Button string          `json:"button"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response is the JSON written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeyParams selects the key to send. When Key is empty the pressed button's
// default key is used, so a binding for "left" needs no params.
type KeyParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
}

// TypeParams holds literal text for the type action.
type TypeParams struct {
	Text string `json:"text"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	script, err := buildScript(req)
	if err != nil {
		writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	if err := runAppleScript(script); err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}
	writeResponse(Response{Success: true})
}

// buildScript converts a request into an AppleScript statement.
func buildScript(req Request) (string, error) {
	switch req.Action {
	case "key":
		p := KeyParams{}
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return "", fmt.Errorf("failed to parse params: %w", err)
			}
		} else {
			p.Key = buttonKeys[req.Button]
		}
		if p.Key == "" {
			return "", fmt.Errorf("key is required")
		}
		return keyScript(p.Key, p.Modifiers), nil

	case "type":
		var p TypeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
		if p.Text == "" {
			return "", fmt.Errorf("text is required")
		}
		return fmt.Sprintf(`tell application "System Events" to keystroke %s`, quote(p.Text)), nil
	}
	return "", fmt.Errorf("unknown action: %s", req.Action)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
