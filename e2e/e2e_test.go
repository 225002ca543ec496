package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

type stateResponse struct {
	Buttons   map[string]bool `json:"buttons"`
	Indicator string          `json:"indicator"`
	Enabled   bool            `json:"enabled"`
}

func getState(t *testing.T, client *http.Client, url string) stateResponse {
	t.Helper()

	resp, err := client.Get(url + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state error = %v", err)
	}
	defer resp.Body.Close()

	var st stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

// writeRecorderPlugin installs a plugin that saves its request to out.
func writeRecorderPlugin(t *testing.T, pluginDir, out string) {
	t.Helper()

	dir := filepath.Join(pluginDir, "recorder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name":"recorder","version":"1.0.0","executable":"run.sh","actions":["record"]}`
	os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(manifest), 0644)
	script := "#!/bin/sh\ncat > " + out + "\necho '{\"success\":true}'\n"
	os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0755)
}

func TestE2E_TapToPlugin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("shell plugin")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	pluginDir := filepath.Join(tmpDir, "plugins")
	requestFile := filepath.Join(tmpDir, "request.json")
	writeRecorderPlugin(t, pluginDir, requestFile)

	src := sensor.NewMockSource()
	dumps := server.NewDumpHandler()
	application := app.New(app.Config{
		Store:      s,
		Source:     src,
		PluginDir:  pluginDir,
		ManualPoll: true,
		DebugSink:  dumps,
	})
	if err := application.DiscoverPlugins(); err != nil {
		t.Fatal(err)
	}
	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer application.Stop()

	ts := httptest.NewServer(server.New(server.Config{
		Store:   s,
		Engine:  application,
		Plugins: application.PluginManager(),
		Debug:   dumps,
	}))
	defer ts.Close()
	client := ts.Client()

	t.Run("BindConfirm", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/bindings", "application/json",
			strings.NewReader(`{"button":"ok","plugin_name":"recorder","action_name":"record","params":{"key":"return"}}`))
		if err != nil {
			t.Fatalf("POST /api/bindings error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	t.Run("EnableDebugDump", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings", strings.NewReader(`{"displayDebugDump":true}`))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PUT /api/settings error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/debug", nil)
	if err != nil {
		t.Fatalf("dial /api/debug: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for dumps.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("debug client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("TapPressesOK", func(t *testing.T) {
		src.Push(sensor.TapFrame())

		// The dump arrives once the frame has been classified.
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read dump: %v", err)
		}
		if !strings.Contains(string(msg), "Frame Info:") {
			t.Errorf("unexpected dump %q", msg)
		}

		application.Poll()

		st := getState(t, client, ts.URL)
		if !st.Buttons["ok"] || st.Indicator != "◯" {
			t.Errorf("unexpected state after tap: %+v", st)
		}
	})

	t.Run("PluginReceivedButton", func(t *testing.T) {
		application.Wait()

		data, err := os.ReadFile(requestFile)
		if err != nil {
			t.Fatalf("plugin did not run: %v", err)
		}
		var req struct {
			Action string `json:"action"`
			Button string `json:"button"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			t.Fatalf("bad request %q: %v", data, err)
		}
		if req.Action != "record" || req.Button != "ok" {
			t.Errorf("unexpected plugin request: %+v", req)
		}
	})

	t.Run("TapReleases", func(t *testing.T) {
		application.Poll()

		st := getState(t, client, ts.URL)
		if st.Buttons["ok"] || st.Indicator != "" {
			t.Errorf("expected ok released, got %+v", st)
		}
	})
}

func TestE2E_DisabledIgnoresFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	application := app.New(app.Config{ManualPoll: true})
	ts := httptest.NewServer(server.New(server.Config{Engine: application}))
	defer ts.Close()
	client := ts.Client()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/state", strings.NewReader(`{"enabled":false}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	application.HandleFrame(sensor.PointingFrame(sensor.RightHand, 0.9, 0))
	application.Poll()

	st := getState(t, client, ts.URL)
	if st.Enabled || st.Buttons["right"] {
		t.Errorf("disabled engine reacted to a frame: %+v", st)
	}
}
