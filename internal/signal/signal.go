// Package signal provides the edge detector that turns per-tick boolean snapshots
// of gesture candidates into active, started and stopped queries.
package signal

import "sync"

// Name identifies a raw signal candidate produced by the gesture classifiers.
type Name string

// Raw signal names.
const (
	Left             Name = "left"
	Right            Name = "right"
	Up               Name = "up"
	Down             Name = "down"
	ScreenTap        Name = "screenTap"
	Clockwise        Name = "clockwise"
	CounterClockwise Name = "counterClockwise"
)

// Directions lists the four level-triggered direction signals.
var Directions = []Name{Left, Right, Down, Up}

// Names lists every raw signal name.
var Names = []Name{Left, Right, Up, Down, ScreenTap, Clockwise, CounterClockwise}

// Snapshot maps signal names to their value for one tick.
// An absent key is equivalent to false.
type Snapshot map[Name]bool

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// State is a read-only view of the current and previous snapshots.
type State struct {
	current  Snapshot
	previous Snapshot
}

// NewState builds a State from explicit snapshots. Nil snapshots read as empty.
func NewState(current, previous Snapshot) State {
	return State{current: current, previous: previous}
}

// IsActive reports whether name is true in the current tick.
func (s State) IsActive(name Name) bool {
	return s.current[name]
}

// IsStarted reports a false to true transition this tick.
func (s State) IsStarted(name Name) bool {
	return !s.previous[name] && s.current[name]
}

// IsStopped reports a true to false transition this tick.
func (s State) IsStopped(name Name) bool {
	return s.previous[name] && !s.current[name]
}

// Current returns a copy of the current snapshot.
func (s State) Current() Snapshot {
	return s.current.Clone()
}

// Previous returns a copy of the previous snapshot.
func (s State) Previous() Snapshot {
	return s.previous.Clone()
}

// Aggregator holds the current and previous snapshots.
//
// Writers (the sensor loop) fill current through Write. The consumer poll reads
// and advances through Tick, which is mutually exclusive with Write. Any number of
// sensor frames may land between two ticks: a candidate that goes true, false and
// true again inside that window is observed once, and a pulse that starts and ends
// between polls can be missed entirely.
type Aggregator struct {
	mu       sync.Mutex
	current  Snapshot
	previous Snapshot
}

// NewAggregator creates an Aggregator with both snapshots empty.
func NewAggregator() *Aggregator {
	return &Aggregator{
		current:  make(Snapshot),
		previous: make(Snapshot),
	}
}

// Write applies fn to the current snapshot under the lock.
func (a *Aggregator) Write(fn func(Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.current)
}

// Set writes a single value into the current snapshot.
func (a *Aggregator) Set(name Name, value bool) {
	a.Write(func(s Snapshot) { s[name] = value })
}

// IsActive reports whether name is true in the current snapshot.
func (a *Aggregator) IsActive(name Name) bool {
	return a.State().IsActive(name)
}

// IsStarted reports whether name went from false to true this tick.
func (a *Aggregator) IsStarted(name Name) bool {
	return a.State().IsStarted(name)
}

// IsStopped reports whether name went from true to false this tick.
func (a *Aggregator) IsStopped(name Name) bool {
	return a.State().IsStopped(name)
}

// State returns a copy of both snapshots.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{current: a.current.Clone(), previous: a.previous.Clone()}
}

// Advance freezes current as previous and starts a new empty current.
func (a *Aggregator) Advance() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.advanceLocked()
}

// Tick hands the snapshots to fn and then advances, all under one lock.
// fn must not call back into the Aggregator.
func (a *Aggregator) Tick(fn func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if fn != nil {
		fn(State{current: a.current, previous: a.previous})
	}
	a.advanceLocked()
}

func (a *Aggregator) advanceLocked() {
	a.previous = a.current
	a.current = make(Snapshot)
}
