// Package app wires a sensor source through gesture classification into sticky buttons
// and dispatches button presses to plugins.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/signal"
	"github.com/ayusman/mudra/internal/store"
)

// DefaultPollInterval refreshes buttons at 60 Hz.
const DefaultPollInterval = time.Second / 60

// DebugSink receives the diagnostic dump of every classified frame while
// displayDebugDump is on.
type DebugSink interface {
	Publish(dump string)
}

// ChangeFunc is called after a poll that changed a button or the indicator.
type ChangeFunc func(changes []input.Change, indicator string)

// Config holds configuration options for the application.
type Config struct {
	// Store persists display options and button bindings. Optional.
	Store *store.Store
	// Source produces frames. Optional; without it the App only polls.
	Source        sensor.Source
	PluginDir     string
	PluginTimeout time.Duration
	Gesture       gesture.Config
	// PollInterval is the period of the internal poll loop.
	PollInterval time.Duration
	// ManualPoll disables the internal poll loop; the host calls Poll itself.
	ManualPoll bool
	// Display is used when the store has no saved options.
	Display   store.DisplayOptions
	DebugSink DebugSink
}

// State is a point-in-time view of the consumer side.
type State struct {
	Buttons   map[input.Button]bool `json:"buttons"`
	Indicator string                `json:"indicator"`
	Enabled   bool                  `json:"enabled"`
	Dropped   int64                 `json:"dropped"`
}

// App owns one signal engine. Several Apps may run side by side.
type App struct {
	config     Config
	aggregator *signal.Aggregator
	classifier *gesture.Classifier
	bridge     *input.Bridge
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	mu        sync.RWMutex
	enabled   bool
	display   store.DisplayOptions
	indicator string
	callbacks []ChangeFunc
	cancel    context.CancelFunc

	loops sync.WaitGroup
	runs  sync.WaitGroup
}

// New creates an App. Detection starts enabled.
func New(config Config) *App {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Gesture == (gesture.Config{}) {
		config.Gesture = gesture.DefaultConfig()
	}

	a := &App{
		config:     config,
		aggregator: signal.NewAggregator(),
		classifier: gesture.NewClassifier(config.Gesture),
		bridge:     input.NewBridge(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(config.PluginTimeout),
		enabled:    true,
		display:    config.Display,
	}

	if config.Store != nil {
		opts, err := config.Store.Settings().DisplayOptions(config.Display)
		if err != nil {
			log.Printf("Failed to load display options: %v", err)
		} else {
			a.display = opts
		}
	}

	return a
}

// SetEnabled enables or disables classification. While disabled frames are
// ignored, so held buttons release on the following polls.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether classification is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// DisplayOptions returns the current display options.
func (a *App) DisplayOptions() store.DisplayOptions {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.display
}

// SetDisplayOptions applies opts and persists them when a store is configured.
func (a *App) SetDisplayOptions(opts store.DisplayOptions) error {
	if a.config.Store != nil {
		if err := a.config.Store.Settings().SaveDisplayOptions(opts); err != nil {
			return fmt.Errorf("save display options: %w", err)
		}
	}

	a.mu.Lock()
	a.display = opts
	a.mu.Unlock()
	return nil
}

// OnChange registers fn to run after polls that change something.
func (a *App) OnChange(fn ChangeFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, fn)
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start subscribes to the source and, unless ManualPoll is set, starts polling.
// It returns the source's subscription error. Starting twice is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)

	if a.config.Source != nil {
		frames, err := a.config.Source.Subscribe(ctx)
		if err != nil {
			cancel()
			return fmt.Errorf("subscribe sensor: %w", err)
		}
		a.loops.Add(1)
		go a.consume(frames)
	}

	if !a.config.ManualPoll {
		a.loops.Add(1)
		go a.pollLoop(ctx)
	}

	a.cancel = cancel
	log.Println("Signal engine started")
	return nil
}

// Stop cancels the source and the poll loop and waits for running plugins.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	a.loops.Wait()
	a.runs.Wait()
	log.Println("Signal engine stopped")
}

// State returns the buttons, the indicator glyph, the enabled flag and the
// source's drop count.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return State{
		Buttons:   a.bridge.Snapshot(),
		Indicator: a.indicator,
		Enabled:   a.enabled,
		Dropped:   a.Dropped(),
	}
}

// Dropped returns how many frames the source discarded, or 0 when the source
// does not count drops.
func (a *App) Dropped() int64 {
	if dc, ok := a.config.Source.(sensor.DropCounter); ok {
		return dc.Dropped()
	}
	return 0
}

// Aggregator returns the signal aggregator for consumers reading raw signals.
func (a *App) Aggregator() *signal.Aggregator {
	return a.aggregator
}

// Bridge returns the button bridge.
func (a *App) Bridge() *input.Bridge {
	return a.bridge
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
