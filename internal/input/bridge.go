// Package input exposes gesture signals as sticky digital buttons for a polling consumer.
package input

import (
	"sync"

	"github.com/ayusman/mudra/internal/signal"
)

// Button is a consumer-facing digital input.
type Button string

const (
	Left   Button = "left"
	Right  Button = "right"
	Up     Button = "up"
	Down   Button = "down"
	OK     Button = "ok"
	Cancel Button = "cancel"
)

// Buttons lists every button in a stable order.
var Buttons = []Button{Left, Right, Up, Down, OK, Cancel}

// sources maps each button to the raw signals that drive it.
var sources = map[Button][]signal.Name{
	Left:   {signal.Left},
	Right:  {signal.Right},
	Up:     {signal.Up},
	Down:   {signal.Down},
	OK:     {signal.ScreenTap, signal.Clockwise},
	Cancel: {signal.CounterClockwise},
}

// Change records a button whose pressed state changed during a poll.
type Change struct {
	Button  Button
	Pressed bool
}

// Bridge holds the sticky button states.
//
// A button is pressed while any of its signals is active and released when one of
// them stops. With neither kind of evidence it keeps its value, which rides out
// single-frame tracking dropouts. If one signal is active while another stops in the
// same poll, the press wins.
type Bridge struct {
	mu       sync.RWMutex
	pressed  map[Button]bool
	previous map[Button]bool
}

// NewBridge creates a Bridge with every button released.
func NewBridge() *Bridge {
	return &Bridge{
		pressed:  make(map[Button]bool),
		previous: make(map[Button]bool),
	}
}

// Apply updates the buttons from one tick of signal state and returns the buttons
// whose state changed, in Buttons order.
func (b *Bridge) Apply(st signal.State) []Change {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make(map[Button]bool, len(b.pressed))
	for k, v := range b.pressed {
		next[k] = v
	}

	var changes []Change
	for _, btn := range Buttons {
		var active, stopped bool
		for _, name := range sources[btn] {
			active = active || st.IsActive(name)
			stopped = stopped || st.IsStopped(name)
		}

		switch {
		case active:
			next[btn] = true
		case stopped:
			next[btn] = false
		}

		if next[btn] != b.pressed[btn] {
			changes = append(changes, Change{Button: btn, Pressed: next[btn]})
		}
	}

	b.previous = b.pressed
	b.pressed = next
	return changes
}

// IsPressed reports whether btn is currently held.
func (b *Bridge) IsPressed(btn Button) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pressed[btn]
}

// IsTriggered reports whether btn became pressed on the last poll.
func (b *Bridge) IsTriggered(btn Button) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.previous[btn] && b.pressed[btn]
}

// IsReleased reports whether btn was let go on the last poll.
func (b *Bridge) IsReleased(btn Button) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.previous[btn] && !b.pressed[btn]
}

// Snapshot returns the pressed state of every button.
func (b *Bridge) Snapshot() map[Button]bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[Button]bool, len(Buttons))
	for _, btn := range Buttons {
		out[btn] = b.pressed[btn]
	}
	return out
}

// Reset releases every button.
func (b *Bridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = make(map[Button]bool)
	b.previous = make(map[Button]bool)
}
