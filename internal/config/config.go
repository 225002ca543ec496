// Package config loads the mudra runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/store"
)

// Sensor source kinds.
const (
	SourceLeap   = "leap"
	SourceCamera = "camera"
	SourceNone   = "none"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root configuration. Fields omitted from a config file keep
// their Default values.
type Config struct {
	Addr      string `json:"addr"`
	DataDir   string `json:"data_dir"`
	PluginDir string `json:"plugin_dir"`
	Tray      bool   `json:"tray"`

	Source  string                `json:"source"`
	LeapURL string                `json:"leap_url"`
	Camera  capture.CameraConfig  `json:"camera"`
	Service capture.ServiceConfig `json:"landmark_service"`

	// PollHz is how often buttons are refreshed when the host does not poll itself.
	PollHz        int    `json:"poll_hz"`
	PluginTimeout string `json:"plugin_timeout"` // duration string like "5s"

	Gesture gesture.Config       `json:"gesture"`
	Display store.DisplayOptions `json:"display"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := ".mudra"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".mudra")
	}

	return &Config{
		Addr:          "127.0.0.1:8080",
		DataDir:       dataDir,
		PluginDir:     filepath.Join(dataDir, "plugins"),
		Source:        SourceLeap,
		LeapURL:       sensor.DefaultLeapURL,
		Camera:        capture.DefaultCameraConfig(),
		Service:       capture.DefaultServiceConfig(),
		PollHz:        60,
		PluginTimeout: "5s",
		Gesture:       gesture.DefaultConfig(),
		Display:       store.DisplayOptions{DisplayBoneHand: true},
	}
}

// Load reads a JSON config file on top of Default and validates the result.
// The file must have a .json extension and be at most 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	// plugin_dir follows data_dir unless the file sets it
	cfg.PluginDir = ""
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}

	switch c.Source {
	case SourceLeap:
		u, err := url.Parse(c.LeapURL)
		if err != nil {
			return fmt.Errorf("invalid leap_url %q: %w", c.LeapURL, err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("leap_url must use ws or wss, got %q", u.Scheme)
		}
	case SourceCamera:
		if c.Camera.DeviceID < 0 {
			return fmt.Errorf("camera.device_id must be non-negative, got %d", c.Camera.DeviceID)
		}
	case SourceNone:
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}

	if c.PollHz < 1 || c.PollHz > 1000 {
		return fmt.Errorf("poll_hz must be between 1 and 1000, got %d", c.PollHz)
	}

	d, err := time.ParseDuration(c.PluginTimeout)
	if err != nil {
		return fmt.Errorf("invalid plugin_timeout '%s': %w", c.PluginTimeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("plugin_timeout must be positive, got %s", d)
	}

	for name, th := range map[string]gesture.Thresholds{
		"right_hand": c.Gesture.RightHand,
		"left_hand":  c.Gesture.LeftHand,
	} {
		if th.Positive <= 0 || th.Positive >= 1 {
			return fmt.Errorf("gesture.%s.positive must be in (0, 1), got %f", name, th.Positive)
		}
		if th.Negative >= 0 || th.Negative <= -1 {
			return fmt.Errorf("gesture.%s.negative must be in (-1, 0), got %f", name, th.Negative)
		}
	}
	if c.Gesture.MinCircleRadius < 0 {
		return fmt.Errorf("gesture.min_circle_radius must be non-negative, got %f", c.Gesture.MinCircleRadius)
	}

	return nil
}

// PollInterval returns the period between polls.
func (c *Config) PollInterval() time.Duration {
	if c.PollHz <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.PollHz)
}

// GetPluginTimeout parses PluginTimeout, falling back to 5s.
func (c *Config) GetPluginTimeout() time.Duration {
	d, err := time.ParseDuration(c.PluginTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// DBPath returns the sqlite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}
