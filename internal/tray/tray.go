// Package tray shows the mudra status glyph in the system tray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

const appName = "mudra"

// Tray is the system tray menu: current glyph in the title, an enable toggle,
// the debug dump switch, the last pressed button and quit.
type Tray struct {
	onToggle    func(enabled bool)
	onDebugDump func(on bool)
	onSettings  func()
	onQuit      func()
	enabled     bool
	debugDump   bool
	indicator   string
	mu          sync.RWMutex

	menuToggle    *systray.MenuItem
	menuDebugDump *systray.MenuItem
	menuLast      *systray.MenuItem
}

// New creates a Tray in the enabled state.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback for the enable toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDebugDump sets the callback for the debug dump switch.
func (t *Tray) OnDebugDump(fn func(on bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDebugDump = fn
}

// OnSettings sets the callback for the settings item.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// SetDebugDump sets the initial switch state. Call before Run.
func (t *Tray) SetDebugDump(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.debugDump = on
}

// Run starts the tray. It blocks until Quit is chosen.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	t.mu.Lock()
	systray.SetTitle(title(t.indicator, t.enabled))
	systray.SetTooltip("mudra gesture input")

	t.menuToggle = systray.AddMenuItem(toggleLabel(t.enabled), "Toggle gesture input")
	t.menuDebugDump = systray.AddMenuItemCheckbox("Debug dump", "Stream frame dumps to /api/debug", t.debugDump)
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastLabel(""), "Last pressed button")
	t.menuLast.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	menuQuit := systray.AddMenuItem("Quit", "Quit mudra")
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuDebugDump.ClickedCh:
				t.handleDebugDump()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(toggleLabel(enabled))
	systray.SetTitle(title(t.indicator, enabled))
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleDebugDump() {
	t.mu.Lock()
	t.debugDump = !t.debugDump
	on := t.debugDump
	if on {
		t.menuDebugDump.Check()
	} else {
		t.menuDebugDump.Uncheck()
	}
	callback := t.onDebugDump
	t.mu.Unlock()

	if callback != nil {
		callback(on)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetIndicator shows glyph next to the app name. Safe to call before Run.
func (t *Tray) SetIndicator(glyph string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.indicator = glyph
	if t.menuToggle != nil {
		systray.SetTitle(title(glyph, t.enabled))
	}
}

// SetLastPressed shows the most recently pressed button.
func (t *Tray) SetLastPressed(button string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLast != nil {
		t.menuLast.SetTitle(lastLabel(button))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func title(indicator string, enabled bool) string {
	if !enabled {
		return appName + " (off)"
	}
	if indicator == "" {
		return appName
	}
	return appName + " " + indicator
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastLabel(button string) string {
	if button == "" {
		return "Last: none"
	}
	return "Last: " + button
}
