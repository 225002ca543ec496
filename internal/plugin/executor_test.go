package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// scriptPlugin writes a shell script into a temp dir and returns a Plugin that runs it.
func scriptPlugin(t *testing.T, script string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping shell plugin test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest:   Manifest{Name: "script", Executable: "run.sh", Actions: []string{"press"}},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	p := scriptPlugin(t, `echo '{"success":true,"data":{"message":"pressed"}}'`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{
		Action: "press",
		Button: "ok",
		Params: json.RawMessage(`{"key":"return"}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("unexpected response: %+v", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal data: %v", err)
	}
	if data["message"] != "pressed" {
		t.Errorf("message = %q", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	// Echo stdin back inside the data field.
	p := scriptPlugin(t, `input=$(cat)
printf '{"success":true,"data":%s}' "$input"
`)

	req := &Request{
		Action: "press",
		Button: "left",
		Config: json.RawMessage(`{"layout":"us"}`),
		Params: json.RawMessage(`{"key":"left"}`),
	}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got Request
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if got.Action != "press" || got.Button != "left" {
		t.Errorf("echoed request = %+v", got)
	}
	if string(got.Params) != `{"key":"left"}` {
		t.Errorf("echoed params = %s", got.Params)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	p := scriptPlugin(t, "sleep 10\necho '{\"success\":true}'\n")

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), p, &Request{Action: "press"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestExecutor_ContextCanceled(t *testing.T) {
	p := scriptPlugin(t, "sleep 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(5*time.Second).Execute(ctx, p, &Request{Action: "press"})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if errors.Is(err, ErrTimeout) {
		t.Errorf("cancellation should not be reported as timeout: %v", err)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{"invalid json", "echo 'not json'\n", "failed to parse plugin response"},
		{"non-zero exit", "echo 'boom' >&2\nexit 1\n", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scriptPlugin(t, tt.script)
			_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: "press"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	p := scriptPlugin(t, `echo '{"success":false,"error":"unknown key"}'`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: "press"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "unknown key" {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("zero timeout: got %v, want %v", got, DefaultTimeout)
	}
	if got := NewExecutor(250 * time.Millisecond).Timeout(); got != 250*time.Millisecond {
		t.Errorf("Timeout() = %v", got)
	}
}
