package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeManifest creates dir/name/plugin.json from m.
func writeManifest(t *testing.T, dir, name string, m Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writeManifest(t, tmpDir, "keys", Manifest{
		Name:        "keys",
		Version:     "1.0.0",
		Description: "Sends key presses",
		Executable:  "keys-bin",
		Actions:     []string{"key", "type"},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	p, err := manager.Get("keys")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Path != pluginDir {
		t.Errorf("Path = %q, want %q", p.Path, pluginDir)
	}
	if p.Executable != filepath.Join(pluginDir, "keys-bin") {
		t.Errorf("Executable = %q", p.Executable)
	}
	if len(p.Manifest.Actions) != 2 {
		t.Errorf("expected 2 actions, got %v", p.Manifest.Actions)
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	writeManifest(t, tmpDir, "good", Manifest{Name: "good", Executable: "run"})
	writeManifest(t, tmpDir, "nameless", Manifest{Executable: "run"})
	writeManifest(t, tmpDir, "no-exec", Manifest{Name: "no-exec"})
	writeManifest(t, tmpDir, "escape", Manifest{Name: "escape", Executable: "../../bin/sh"})
	writeManifest(t, tmpDir, "dup", Manifest{Name: "good", Executable: "run"})

	bad := filepath.Join(tmpDir, "broken")
	os.MkdirAll(bad, 0755)
	os.WriteFile(filepath.Join(bad, ManifestFile), []byte("not valid json"), 0644)

	os.MkdirAll(filepath.Join(tmpDir, "empty"), 0755)
	os.WriteFile(filepath.Join(tmpDir, "stray.txt"), []byte("x"), 0644)

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 || plugins[0].Manifest.Name != "good" {
		t.Fatalf("expected only the good plugin, got %d", len(plugins))
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writeManifest(t, tmpDir, "a", Manifest{Name: "a", Executable: "run"})

	manager := NewManager(tmpDir)
	manager.Discover()
	if len(manager.List()) != 1 {
		t.Fatal("expected one plugin")
	}

	os.RemoveAll(pluginDir)
	writeManifest(t, tmpDir, "b", Manifest{Name: "b", Executable: "run"})
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if _, err := manager.Get("a"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected a to be gone, got %v", err)
	}
	if _, err := manager.Get("b"); err != nil {
		t.Errorf("expected b after rescan, got %v", err)
	}
}

func TestManager_List_Sorted(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		writeManifest(t, tmpDir, name, Manifest{Name: name, Executable: "run"})
	}

	manager := NewManager(tmpDir)
	manager.Discover()

	var names []string
	for _, p := range manager.List() {
		names = append(names, p.Manifest.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if i >= len(names) || names[i] != want[i] {
			t.Fatalf("List() order = %v, want %v", names, want)
		}
	}
}

func TestManager_Resolve(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "keys", Manifest{Name: "keys", Executable: "run", Actions: []string{"key"}})

	manager := NewManager(tmpDir)
	manager.Discover()

	tests := []struct {
		name    string
		plugin  string
		action  string
		wantErr error
	}{
		{"declared action", "keys", "key", nil},
		{"undeclared action", "keys", "shutdown", ErrActionNotFound},
		{"unknown plugin", "nope", "key", ErrPluginNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Resolve(tt.plugin, tt.action)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing"))

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Fatal("expected no plugins")
	}
}

func TestManager_PluginDir(t *testing.T) {
	manager := NewManager("/path/to/plugins")
	if manager.PluginDir() != "/path/to/plugins" {
		t.Errorf("PluginDir() = %q", manager.PluginDir())
	}
}
