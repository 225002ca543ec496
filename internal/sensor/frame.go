// Package sensor defines the hand-tracking frame model and the sources that produce frames.
package sensor

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Handedness identifies which hand was tracked.
type Handedness string

const (
	LeftHand  Handedness = "left"
	RightHand Handedness = "right"
)

// Finger identifies the anatomical finger of a pointable, following the Leap Motion numbering.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// Pointable is a tracked finger or tool.
type Pointable struct {
	ID        int
	HandID    int
	Finger    Finger
	Tool      bool
	Direction mgl64.Vec3
}

// Hand is a tracked hand.
type Hand struct {
	ID   int
	Type Handedness
	// IndexFinger is the unit direction of the index finger, nil when it is not tracked.
	IndexFinger *mgl64.Vec3
}

// IsRight reports whether the hand is a right hand.
func (h Hand) IsRight() bool {
	return h.Type == RightHand
}

// Frame is one sensor sample.
type Frame struct {
	ID         int64
	Timestamp  int64 // microseconds, device clock
	Hands      []Hand
	Pointables []Pointable
	Gestures   []Gesture
}

// Pointable resolves a pointable by id.
func (f *Frame) Pointable(id int) (Pointable, bool) {
	if f == nil {
		return Pointable{}, false
	}
	for _, p := range f.Pointables {
		if p.ID == id {
			return p, true
		}
	}
	return Pointable{}, false
}

// Dump returns a human-readable description of the frame for the debug sink.
func (f *Frame) Dump() string {
	if f == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Frame Info:\n")
	fmt.Fprintf(&b, "  ID: %d\n", f.ID)
	fmt.Fprintf(&b, "  Timestamp: %d\n", f.Timestamp)
	fmt.Fprintf(&b, "  Hands: %d\n", len(f.Hands))
	fmt.Fprintf(&b, "  Pointables: %d\n", len(f.Pointables))
	fmt.Fprintf(&b, "  Gestures: %d\n", len(f.Gestures))

	for _, h := range f.Hands {
		if h.IndexFinger != nil {
			d := *h.IndexFinger
			fmt.Fprintf(&b, "Hand %d (%s): index (%.3f, %.3f, %.3f)\n", h.ID, h.Type, d.X(), d.Y(), d.Z())
		} else {
			fmt.Fprintf(&b, "Hand %d (%s): no index finger\n", h.ID, h.Type)
		}
	}

	for _, g := range f.Gestures {
		fmt.Fprintf(&b, "Gesture %s\n", describeGesture(g))
	}

	return b.String()
}
